package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"

	"github.com/dmkrr/dupfind/pkg/fileid"
	"github.com/dmkrr/dupfind/pkg/logger"
)

// Options control a single enumeration pass.
type Options struct {
	Root      string
	Recursive bool
	// Excludes lists basenames skipped entirely, files and directories alike.
	Excludes []string
	// MinSize marks smaller regular files as ineligible for comparison.
	MinSize int64
	// Workers bounds fastwalk's traversal pool. 0 uses the fastwalk default.
	Workers int
}

// Result is everything a traversal produced. Entries are sorted by path so
// a scan of an unchanged tree enumerates identically every run.
type Result struct {
	Entries []FileEntry
	Errors  []*AccessError
}

// Scan enumerates every file directly inside opts.Root (and transitively
// inside subdirectories when recursive). Directories are not reported.
// Unreadable subdirectories are recorded in Result.Errors and skipped;
// only a bad root aborts the scan.
func Scan(ctx context.Context, opts Options) (*Result, error) {
	log := logger.GetLogger("scanner")

	root := filepath.Clean(opts.Root)
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &InvalidInputError{Path: root, Reason: "no such directory"}
		}
		return nil, &AccessError{Path: root, Root: true, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidInputError{Path: root, Reason: "not a directory"}
	}

	s := &walkState{
		minSize:  opts.MinSize,
		excludes: strset.New(opts.Excludes...),
		log:      log,
	}

	if opts.Recursive {
		err = s.walkRecursive(ctx, root, opts.Workers)
	} else {
		err = s.walkFlat(ctx, root)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].Path < s.entries[j].Path })
	sort.Slice(s.errors, func(i, j int) bool { return s.errors[i].Path < s.errors[j].Path })

	log.Debugf("Enumerated %d entries from %q (%d access errors)", len(s.entries), root, len(s.errors))

	return &Result{Entries: s.entries, Errors: s.errors}, nil
}

type walkState struct {
	minSize  int64
	excludes *strset.Set
	log      *logrus.Entry

	mu      sync.Mutex
	entries []FileEntry
	errors  []*AccessError
}

func (s *walkState) walkFlat(ctx context.Context, root string) error {
	dirents, err := os.ReadDir(root)
	if err != nil {
		return &AccessError{Path: root, Root: true, Err: err}
	}

	for _, d := range dirents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			continue
		}
		s.processEntry(filepath.Join(root, d.Name()), d)
	}

	return nil
}

func (s *walkState) walkRecursive(ctx context.Context, root string, workers int) error {
	conf := fastwalk.Config{
		NumWorkers: workers,
		Sort:       fastwalk.SortLexical,
	}

	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if err != nil {
			if path == root {
				return &AccessError{Path: root, Root: true, Err: err}
			}
			s.recordAccessError(path, err)
			return nil
		}

		if d.IsDir() {
			if path != root && s.excludes.Has(d.Name()) {
				s.log.Tracef("Skipping excluded directory: %s", path)
				return fs.SkipDir
			}
			return nil
		}

		s.processEntry(path, d)
		return nil
	})

	return err
}

// processEntry stats a single non-directory entry and appends it under the
// mutex; fastwalk invokes the callback from multiple goroutines.
func (s *walkState) processEntry(path string, d fs.DirEntry) {
	if s.excludes.Has(d.Name()) {
		s.log.Tracef("Skipping excluded file: %s", path)
		return
	}

	if d.Type()&fs.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			s.log.Warnf("Failed reading symlink target for %q: %v", path, err)
		}

		s.append(FileEntry{
			Path:       path,
			Kind:       KindSymlink,
			LinkTarget: target,
		})
		return
	}

	if !d.Type().IsRegular() {
		s.log.Tracef("Skipping irregular file: %s", path)
		return
	}

	info, err := d.Info()
	if err != nil {
		// race-deleted between listing and stat
		s.recordAccessError(path, err)
		return
	}

	id, nlink, ok := fileid.FromFileInfo(info)
	if !ok {
		id, nlink, err = fileid.Stat(path)
		if err != nil {
			s.recordAccessError(path, err)
			return
		}
	}

	s.append(FileEntry{
		Path:         path,
		Size:         info.Size(),
		ModifiedTime: info.ModTime(),
		Kind:         KindRegular,
		ID:           id,
		Nlink:        nlink,
		Eligible:     info.Size() >= s.minSize,
	})
}

func (s *walkState) append(e FileEntry) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

func (s *walkState) recordAccessError(path string, err error) {
	s.mu.Lock()
	s.errors = append(s.errors, &AccessError{Path: path, Err: err})
	s.mu.Unlock()
	s.log.Warnf("Failed to access %q: %v", path, err)
}
