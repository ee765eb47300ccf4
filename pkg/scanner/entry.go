package scanner

import (
	"time"

	"github.com/dmkrr/dupfind/pkg/fileid"
)

// Kind classifies a scanned filesystem object.
type Kind int

const (
	// KindRegular is an ordinary file, a candidate for duplicate comparison.
	KindRegular Kind = iota
	// KindSymlink is a symbolic link. Symlinks are reported, never
	// content-compared.
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// FileEntry is one filesystem object yielded by a scan. Directories are
// never emitted.
type FileEntry struct {
	Path         string
	Size         int64
	ModifiedTime time.Time
	Kind         Kind

	// LinkTarget is set for symlinks only.
	LinkTarget string

	// ID and Nlink are set for regular files only.
	ID    fileid.FileID
	Nlink uint64

	// Eligible is false when the entry is excluded from duplicate
	// comparison (below the minimum size). Hard-link identity is still
	// tracked for ineligible entries.
	Eligible bool
}
