package linkmap

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/dmkrr/dupfind/pkg/fileid"
	"github.com/dmkrr/dupfind/pkg/logger"
)

// Registry maps each (device, inode) pair observed during a scan to the
// paths that reference it. The first registered path becomes the inode's
// representative; later paths are aliases of it, not new content.
//
// A Registry belongs to a single scan and is not safe for concurrent use;
// the engine serializes classification.
type Registry struct {
	linkMap map[fileid.FileID][]string
	log     *logrus.Entry
}

// Group is one inode referenced by two or more scanned paths.
type Group struct {
	ID    fileid.FileID
	Paths []string
}

func New() *Registry {
	return &Registry{
		linkMap: make(map[fileid.FileID][]string),
		log:     logger.GetLogger("linkmap"),
	}
}

// Register records path under id. It returns true when id has not been
// seen before, meaning path is the inode's content representative.
func (r *Registry) Register(id fileid.FileID, path string) bool {
	paths, exists := r.linkMap[id]
	if !exists {
		r.linkMap[id] = []string{path}
		return true
	}

	// same path listed twice (overlapping roots); keep entries unique
	for _, existing := range paths {
		if existing == path {
			return false
		}
	}

	r.linkMap[id] = append(paths, path)
	r.log.Tracef("Hard link alias: %s -> %s (%s)", path, paths[0], id)
	return false
}

// FirstPath returns the representative path registered for id.
func (r *Registry) FirstPath(id fileid.FileID) (string, bool) {
	paths, exists := r.linkMap[id]
	if !exists || len(paths) == 0 {
		return "", false
	}
	return paths[0], true
}

// Groups returns every inode with two or more registered names. Paths
// within a group, and the groups themselves, are sorted for reproducible
// reporting.
func (r *Registry) Groups() []Group {
	groups := make([]Group, 0)
	for id, paths := range r.linkMap {
		if len(paths) < 2 {
			continue
		}

		sorted := make([]string, len(paths))
		copy(sorted, paths)
		sort.Strings(sorted)

		groups = append(groups, Group{ID: id, Paths: sorted})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Paths[0] < groups[j].Paths[0] })
	return groups
}

// Length returns the number of distinct inodes registered.
func (r *Registry) Length() int {
	return len(r.linkMap)
}
