package engine

import (
	"sort"
	"time"
)

// DuplicateGroup is a set of two or more independent files confirmed
// content-identical. Every member has exactly Size bytes.
type DuplicateGroup struct {
	Size  int64    `json:"size"`
	Paths []string `json:"paths"`
}

// LinkGroup is a set of paths sharing one (device, inode) pair. Aliasing
// is identity, not duplication, so link groups are reported separately.
type LinkGroup struct {
	Device uint64   `json:"device"`
	Inode  uint64   `json:"inode"`
	Paths  []string `json:"paths"`
}

// SymlinkNotice records a symbolic link encountered during traversal.
// Symlinks are never content-compared.
type SymlinkNotice struct {
	Path   string `json:"path"`
	Target string `json:"target"`
}

// ScanError is a non-fatal error accumulated during the run.
type ScanError struct {
	Path    string `json:"path"`
	Op      string `json:"op"` // "list" or "read"
	Message string `json:"error"`
}

// Summary carries the statistics the presentation layer surfaces.
type Summary struct {
	// FilesScanned is the number of filesystem objects enumerated
	// (regular files and symlinks; directories are not counted).
	FilesScanned int64 `json:"files_scanned"`
	// BytesScanned is the number of bytes read computing fingerprints.
	BytesScanned int64 `json:"bytes_scanned"`
	// DuplicateFiles counts redundant copies: for each group, every
	// member beyond the first.
	DuplicateFiles int64 `json:"duplicate_files"`
	// ReclaimableBytes is the space freed if each group kept one copy.
	ReclaimableBytes int64 `json:"reclaimable_bytes"`
	HardLinkGroups   int   `json:"hard_link_groups"`
	Symlinks         int   `json:"symlinks"`
	Errors           int   `json:"errors"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// Report is the immutable result of one scan.
type Report struct {
	Root      string           `json:"root"`
	Recursive bool             `json:"recursive"`
	Groups    []DuplicateGroup `json:"groups"`
	HardLinks []LinkGroup      `json:"hard_links,omitempty"`
	Symlinks  []SymlinkNotice  `json:"symlinks,omitempty"`
	Errors    []ScanError      `json:"errors,omitempty"`
	Summary   Summary          `json:"summary"`
}

// finalize sorts every section into the documented presentation order:
// duplicate groups by descending size then ascending first path, all other
// sections by path. Runs on an unchanged tree produce identical reports.
func (r *Report) finalize() {
	for i := range r.Groups {
		sort.Strings(r.Groups[i].Paths)
	}
	sort.Slice(r.Groups, func(i, j int) bool {
		if r.Groups[i].Size != r.Groups[j].Size {
			return r.Groups[i].Size > r.Groups[j].Size
		}
		return r.Groups[i].Paths[0] < r.Groups[j].Paths[0]
	})

	sort.Slice(r.HardLinks, func(i, j int) bool {
		return r.HardLinks[i].Paths[0] < r.HardLinks[j].Paths[0]
	})
	sort.Slice(r.Symlinks, func(i, j int) bool {
		return r.Symlinks[i].Path < r.Symlinks[j].Path
	})
	sort.Slice(r.Errors, func(i, j int) bool {
		if r.Errors[i].Path != r.Errors[j].Path {
			return r.Errors[i].Path < r.Errors[j].Path
		}
		return r.Errors[i].Op < r.Errors[j].Op
	})

	for _, g := range r.Groups {
		members := int64(len(g.Paths))
		r.Summary.DuplicateFiles += members - 1
		r.Summary.ReclaimableBytes += (members - 1) * g.Size
	}
	r.Summary.HardLinkGroups = len(r.HardLinks)
	r.Summary.Symlinks = len(r.Symlinks)
	r.Summary.Errors = len(r.Errors)
}
