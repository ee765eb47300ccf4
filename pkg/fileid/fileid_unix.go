//go:build unix

package fileid

import (
	"fmt"
	"os"
	"syscall"
)

// Stat returns the FileID and hard-link count for the file at path.
// This uses direct syscall.Stat() instead of os.Stat() for better performance.
func Stat(path string) (FileID, uint64, error) {
	var stat syscall.Stat_t
	err := syscall.Stat(path, &stat)
	if err != nil {
		return FileID{}, 0, fmt.Errorf("stat file: %w", err)
	}

	return FileID{
		Device: uint64(stat.Dev),
		Inode:  uint64(stat.Ino),
	}, uint64(stat.Nlink), nil
}

// FromFileInfo extracts the FileID and hard-link count from an already
// obtained os.FileInfo, avoiding a second stat. The boolean is false when
// the platform does not expose the underlying Stat_t.
func FromFileInfo(info os.FileInfo) (FileID, uint64, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return FileID{}, 0, false
	}

	return FileID{
		Device: uint64(stat.Dev),
		Inode:  uint64(stat.Ino),
	}, uint64(stat.Nlink), true
}
