package engine

import "sync"

// Progress is a point-in-time snapshot of comparison activity.
type Progress struct {
	// FilesProcessed counts files that have gone through fingerprinting.
	FilesProcessed int64
	// BytesScanned counts bytes consumed computing fingerprints.
	BytesScanned int64
	// BucketsRemaining counts size buckets not yet resolved.
	BucketsRemaining int
}

// Observer receives checkpoints as the engine works through a scan. The
// engine always emits them; the presentation layer decides whether to
// render anything. Callbacks are serialized, never concurrent.
type Observer interface {
	// FileProcessed fires after a file's content has been fingerprinted
	// (or skipped, for zero-byte files).
	FileProcessed(p Progress, path string)
	// BucketResolved fires after a size bucket has been partitioned into
	// its final duplicate groups.
	BucketResolved(p Progress, size int64)
}

type nopObserver struct{}

func (nopObserver) FileProcessed(Progress, string) {}
func (nopObserver) BucketResolved(Progress, int64) {}

// NopObserver discards all progress events.
var NopObserver Observer = nopObserver{}

// progressTracker serializes observer callbacks and maintains the counters
// behind Progress snapshots. Comparison workers share one tracker.
type progressTracker struct {
	mu        sync.Mutex
	obs       Observer
	files     int64
	bytes     int64
	remaining int
}

func newProgressTracker(obs Observer, buckets int) *progressTracker {
	if obs == nil {
		obs = NopObserver
	}
	return &progressTracker{obs: obs, remaining: buckets}
}

func (t *progressTracker) fileProcessed(path string, bytesRead int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.files++
	t.bytes += bytesRead
	t.obs.FileProcessed(t.snapshotLocked(), path)
}

func (t *progressTracker) bucketResolved(size int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remaining--
	t.obs.BucketResolved(t.snapshotLocked(), size)
}

func (t *progressTracker) snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *progressTracker) snapshotLocked() Progress {
	return Progress{
		FilesProcessed:   t.files,
		BytesScanned:     t.bytes,
		BucketsRemaining: t.remaining,
	}
}
