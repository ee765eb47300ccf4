package fingerprint

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestPrefix_EqualForSharedPrefix(t *testing.T) {
	dir := t.TempDir()

	// identical first 8 bytes, divergent afterwards
	a := writeFile(t, dir, "a", []byte("prefix--AAAAAAAA"))
	b := writeFile(t, dir, "b", []byte("prefix--BBBBBBBB"))

	ha, err := Prefix(a, 8)
	require.NoError(t, err)
	hb, err := Prefix(b, 8)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	// full-width prefix sees the divergence
	ha, err = Prefix(a, 16)
	require.NoError(t, err)
	hb, err = Prefix(b, 16)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestPrefix_FileShorterThanPrefix(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a", []byte("tiny"))
	b := writeFile(t, dir, "b", []byte("tiny"))

	ha, err := Prefix(a, DefaultPrefixBytes)
	require.NoError(t, err)
	hb, err := Prefix(b, DefaultPrefixBytes)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestPrefix_MissingFile(t *testing.T) {
	_, err := Prefix(filepath.Join(t.TempDir(), "nope"), 8)
	assert.Error(t, err)
}

func TestFull_DigestAndByteCount(t *testing.T) {
	dir := t.TempDir()

	content := bytes.Repeat([]byte("0123456789abcdef"), 8192) // 128 KiB, spans several blocks
	a := writeFile(t, dir, "a", content)
	b := writeFile(t, dir, "b", content)
	c := writeFile(t, dir, "c", append(bytes.Clone(content), 'x'))

	da, na, err := Full(a)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), na)

	db, _, err := Full(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)

	dc, _, err := Full(c)
	require.NoError(t, err)
	assert.NotEqual(t, da, dc)
}

func TestEqual(t *testing.T) {
	dir := t.TempDir()

	content := bytes.Repeat([]byte("z"), blockSize*2+17)
	a := writeFile(t, dir, "a", content)
	b := writeFile(t, dir, "b", content)

	divergent := bytes.Clone(content)
	divergent[len(divergent)-1] = 'q'
	c := writeFile(t, dir, "c", divergent)

	same, err := Equal(a, b)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = Equal(a, c)
	require.NoError(t, err)
	assert.False(t, same)
}

func TestEqual_EmptyFiles(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a", nil)
	b := writeFile(t, dir, "b", nil)

	same, err := Equal(a, b)
	require.NoError(t, err)
	assert.True(t, same)
}

func TestEqual_LengthMismatch(t *testing.T) {
	dir := t.TempDir()

	a := writeFile(t, dir, "a", []byte("abc"))
	b := writeFile(t, dir, "b", []byte("abcd"))

	same, err := Equal(a, b)
	require.NoError(t, err)
	assert.False(t, same)
}
