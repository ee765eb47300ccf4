package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func entryPaths(entries []FileEntry) []string {
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return paths
}

func TestScan_InvalidRoot(t *testing.T) {
	ctx := context.Background()

	_, err := Scan(ctx, Options{Root: filepath.Join(t.TempDir(), "missing")})
	var invalidErr *InvalidInputError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "no such directory", invalidErr.Reason)

	file := writeFile(t, t.TempDir(), "plainfile", "x")
	_, err = Scan(ctx, Options{Root: file})
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "not a directory", invalidErr.Reason)
}

func TestScan_FlatIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top", "a")
	writeFile(t, dir, "sub/nested", "b")

	res, err := Scan(context.Background(), Options{Root: dir})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "top")}, entryPaths(res.Entries))
}

func TestScan_RecursiveFindsNested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top", "a")
	writeFile(t, dir, "sub/nested", "b")
	writeFile(t, dir, "sub/deeper/leaf", "c")

	res, err := Scan(context.Background(), Options{Root: dir, Recursive: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "top"),
		filepath.Join(dir, "sub", "nested"),
		filepath.Join(dir, "sub", "deeper", "leaf"),
	}, entryPaths(res.Entries))
}

func TestScan_EntriesSortedByPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta", "1")
	writeFile(t, dir, "alpha", "2")
	writeFile(t, dir, "mid/beta", "3")

	res, err := Scan(context.Background(), Options{Root: dir, Recursive: true})
	require.NoError(t, err)

	paths := entryPaths(res.Entries)
	assert.True(t, sort.StringsAreSorted(paths), "entries not sorted: %v", paths)
}

func TestScan_DeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c/d", "c/e", "f/g/h"} {
		writeFile(t, dir, name, name)
	}

	first, err := Scan(context.Background(), Options{Root: dir, Recursive: true, Workers: 4})
	require.NoError(t, err)
	second, err := Scan(context.Background(), Options{Root: dir, Recursive: true, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, entryPaths(first.Entries), entryPaths(second.Entries))
}

func TestScan_SymlinkEntry(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "target", "data")

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	res, err := Scan(context.Background(), Options{Root: dir})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	var symlink *FileEntry
	for i := range res.Entries {
		if res.Entries[i].Kind == KindSymlink {
			symlink = &res.Entries[i]
		}
	}
	require.NotNil(t, symlink, "no symlink entry found")
	assert.Equal(t, link, symlink.Path)
	assert.Equal(t, target, symlink.LinkTarget)
}

func TestScan_ExcludedBasenames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep", "a")
	writeFile(t, dir, "skipfile", "b")
	writeFile(t, dir, "skipdir/inner", "c")

	res, err := Scan(context.Background(), Options{
		Root:      dir,
		Recursive: true,
		Excludes:  []string{"skipfile", "skipdir"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "keep")}, entryPaths(res.Entries))
}

func TestScan_MinSizeMarksIneligible(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small", "ab")
	writeFile(t, dir, "large", "abcdefghij")

	res, err := Scan(context.Background(), Options{Root: dir, MinSize: 5})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	for _, e := range res.Entries {
		if filepath.Base(e.Path) == "small" {
			assert.False(t, e.Eligible)
		} else {
			assert.True(t, e.Eligible)
		}
	}
}

func TestScan_HardLinksShareFileID(t *testing.T) {
	dir := t.TempDir()
	original := writeFile(t, dir, "original", "content")

	alias := filepath.Join(dir, "alias")
	require.NoError(t, os.Link(original, alias))

	res, err := Scan(context.Background(), Options{Root: dir})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	assert.True(t, res.Entries[0].ID.Equal(res.Entries[1].ID))
	assert.Equal(t, uint64(2), res.Entries[0].Nlink)
}

func TestScan_UnreadableSubdirectoryRecorded(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	dir := t.TempDir()
	writeFile(t, dir, "readable", "a")
	writeFile(t, dir, "locked/hidden", "b")

	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res, err := Scan(context.Background(), Options{Root: dir, Recursive: true})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "readable")}, entryPaths(res.Entries))
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, locked, res.Errors[0].Path)
	assert.False(t, res.Errors[0].Root)
}

func TestScan_UnreadableRootFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	_, err := Scan(context.Background(), Options{Root: locked})
	var accessErr *AccessError
	require.ErrorAs(t, err, &accessErr)
	assert.True(t, accessErr.Root)
}

func TestScan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, Options{Root: dir})
	assert.ErrorIs(t, err, context.Canceled)
}
