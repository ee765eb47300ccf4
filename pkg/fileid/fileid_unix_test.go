//go:build unix

package fileid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat_HardLinksShareID(t *testing.T) {
	dir := t.TempDir()

	original := filepath.Join(dir, "original")
	require.NoError(t, os.WriteFile(original, []byte("content"), 0o644))

	alias := filepath.Join(dir, "alias")
	require.NoError(t, os.Link(original, alias))

	idA, nlinkA, err := Stat(original)
	require.NoError(t, err)
	idB, nlinkB, err := Stat(alias)
	require.NoError(t, err)

	assert.True(t, idA.Equal(idB))
	assert.Equal(t, uint64(2), nlinkA)
	assert.Equal(t, uint64(2), nlinkB)
}

func TestStat_DistinctFilesDiffer(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("x"), 0o644))

	idA, _, err := Stat(a)
	require.NoError(t, err)
	idB, _, err := Stat(b)
	require.NoError(t, err)

	assert.False(t, idA.Equal(idB))
}

func TestFromFileInfo_MatchesStat(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	idInfo, nlinkInfo, ok := FromFileInfo(info)
	require.True(t, ok)

	idStat, nlinkStat, err := Stat(path)
	require.NoError(t, err)

	assert.Equal(t, idStat, idInfo)
	assert.Equal(t, nlinkStat, nlinkInfo)
}

func TestStat_Missing(t *testing.T) {
	_, _, err := Stat(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
