// Package engine implements the duplicate-detection pipeline: enumerate,
// classify links, bucket by size, compare contents, aggregate. It reads
// the filesystem and reports findings; it never modifies anything.
package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dmkrr/dupfind/pkg/expression"
	"github.com/dmkrr/dupfind/pkg/fingerprint"
	"github.com/dmkrr/dupfind/pkg/linkmap"
	"github.com/dmkrr/dupfind/pkg/logger"
	"github.com/dmkrr/dupfind/pkg/scanner"
)

// Options configure a single scan.
type Options struct {
	Recursive bool
	// Workers bounds the bucket-comparison pool. 0 means NumCPU.
	Workers int
	// PrefixBytes is the size of the first-pass fingerprint read.
	// 0 means fingerprint.DefaultPrefixBytes.
	PrefixBytes int64
	// MinSize excludes smaller files from comparison.
	MinSize int64
	// Excludes lists basenames skipped during traversal.
	Excludes []string
	// Filters restrict comparison candidates; a file must match all of
	// them to be bucketed. Hard-link identity is tracked regardless.
	Filters []expression.CompiledExpression
	// TrustDigest accepts full-content digest equality as proof of
	// duplication, skipping the byte-for-byte confirmation pass. The
	// digest is cryptographically strong (blake3), but the default
	// stays with the safer byte-confirmed policy.
	TrustDigest bool
	// Observer receives progress checkpoints. Nil means no-op.
	Observer Observer
}

// Engine runs scans. All state is per-run; an Engine may be reused.
type Engine struct {
	opts Options
	log  *logrus.Entry
}

func New(opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.PrefixBytes <= 0 {
		opts.PrefixBytes = fingerprint.DefaultPrefixBytes
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver
	}

	return &Engine{
		opts: opts,
		log:  logger.GetLogger("engine"),
	}
}

// Run scans root and returns the aggregated report. The returned error is
// non-nil only for fatal conditions: a bad root (scanner.InvalidInputError),
// an unreadable root (scanner.AccessError with Root set), a filter
// evaluation failure, or cancellation. Every other problem is accumulated
// into the report.
func (e *Engine) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()

	scanRes, err := scanner.Scan(ctx, scanner.Options{
		Root:      root,
		Recursive: e.opts.Recursive,
		Excludes:  e.opts.Excludes,
		MinSize:   e.opts.MinSize,
		Workers:   e.opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{Root: root, Recursive: e.opts.Recursive}
	report.Summary.FilesScanned = int64(len(scanRes.Entries))

	for _, accessErr := range scanRes.Errors {
		report.Errors = append(report.Errors, ScanError{
			Path:    accessErr.Path,
			Op:      "list",
			Message: accessErr.Err.Error(),
		})
	}

	registry := linkmap.New()
	buckets, err := e.classify(ctx, scanRes.Entries, registry, report)
	if err != nil {
		return nil, err
	}

	for _, group := range registry.Groups() {
		report.HardLinks = append(report.HardLinks, LinkGroup{
			Device: group.ID.Device,
			Inode:  group.ID.Inode,
			Paths:  group.Paths,
		})
	}

	e.log.Debugf("Comparing %d size buckets with %d workers", len(buckets), e.opts.Workers)

	if err := e.compareBuckets(ctx, buckets, report); err != nil {
		return nil, err
	}

	report.Summary.Elapsed = time.Since(start)
	report.finalize()

	e.log.Debugf("Scan of %q finished: %d duplicate groups, %d hard-link groups, %d errors",
		root, len(report.Groups), len(report.HardLinks), len(report.Errors))

	return report, nil
}

// classify walks the enumerated entries in path order, routing symlinks to
// notices, registering every regular file's inode, and bucketing one
// representative per inode by exact size. Registry updates are serialized
// here; this is the only phase that mutates shared classification state.
func (e *Engine) classify(ctx context.Context, entries []scanner.FileEntry,
	registry *linkmap.Registry, report *Report) (map[int64][]scanner.FileEntry, error) {

	buckets := make(map[int64][]scanner.FileEntry)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.Kind == scanner.KindSymlink {
			report.Symlinks = append(report.Symlinks, SymlinkNotice{
				Path:   entry.Path,
				Target: entry.LinkTarget,
			})
			continue
		}

		if !registry.Register(entry.ID, entry.Path) {
			// alias of an already-registered inode, measured once
			continue
		}

		if !entry.Eligible {
			continue
		}

		if len(e.opts.Filters) > 0 {
			env := expression.NewEnv(entry.Path, entry.Size, entry.ModifiedTime)
			match, err := expression.CheckAllMatch(env, e.opts.Filters)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}

		buckets[entry.Size] = append(buckets[entry.Size], entry)
	}

	for size, members := range buckets {
		if len(members) < 2 {
			delete(buckets, size)
		}
	}

	return buckets, nil
}

// compareBuckets fans buckets out over a bounded worker pool. Buckets are
// independent units of work; each worker's results merge under one mutex
// when its bucket completes.
func (e *Engine) compareBuckets(ctx context.Context, buckets map[int64][]scanner.FileEntry, report *Report) error {
	tracker := newProgressTracker(e.opts.Observer, len(buckets))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		workerSem = make(chan struct{}, e.opts.Workers)
	)

	for size, members := range buckets {
		if err := ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		workerSem <- struct{}{}

		go func(size int64, members []scanner.FileEntry) {
			defer wg.Done()
			defer func() { <-workerSem }()

			groups, readErrs := e.compareBucket(ctx, size, members, tracker)

			mu.Lock()
			report.Groups = append(report.Groups, groups...)
			for _, readErr := range readErrs {
				report.Errors = append(report.Errors, ScanError{
					Path:    readErr.Path,
					Op:      "read",
					Message: readErr.Err.Error(),
				})
			}
			mu.Unlock()

			tracker.bucketResolved(size)
		}(size, members)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	report.Summary.BytesScanned = tracker.snapshot().BytesScanned

	return nil
}
