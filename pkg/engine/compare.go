package engine

import (
	"context"

	"github.com/dmkrr/dupfind/pkg/fingerprint"
	"github.com/dmkrr/dupfind/pkg/scanner"
)

// compareBucket partitions one size bucket into duplicate groups:
// prefix digest first, full digest for prefix-equal survivors, then a
// byte-for-byte confirmation unless TrustDigest is set. An unreadable
// member is recorded and excluded; the rest of the bucket proceeds.
func (e *Engine) compareBucket(ctx context.Context, size int64, members []scanner.FileEntry,
	tracker *progressTracker) ([]DuplicateGroup, []*scanner.ReadError) {

	// equal size zero implies equal content, no reads needed
	if size == 0 {
		paths := make([]string, 0, len(members))
		for _, m := range members {
			paths = append(paths, m.Path)
			tracker.fileProcessed(m.Path, 0)
		}
		return []DuplicateGroup{{Size: 0, Paths: paths}}, nil
	}

	var readErrs []*scanner.ReadError

	byPrefix := make(map[uint64][]string)
	for _, m := range members {
		if ctx.Err() != nil {
			return nil, readErrs
		}

		digest, err := fingerprint.Prefix(m.Path, e.opts.PrefixBytes)
		if err != nil {
			readErrs = append(readErrs, &scanner.ReadError{Path: m.Path, Err: err})
			continue
		}

		byPrefix[digest] = append(byPrefix[digest], m.Path)

		prefixRead := e.opts.PrefixBytes
		if size < prefixRead {
			prefixRead = size
		}
		tracker.fileProcessed(m.Path, prefixRead)
	}

	var groups []DuplicateGroup

	for _, prefixGroup := range byPrefix {
		if len(prefixGroup) < 2 {
			continue
		}

		byDigest := make(map[fingerprint.FullDigest][]string)
		for _, path := range prefixGroup {
			if ctx.Err() != nil {
				return groups, readErrs
			}

			digest, n, err := fingerprint.Full(path)
			if err != nil {
				readErrs = append(readErrs, &scanner.ReadError{Path: path, Err: err})
				continue
			}

			byDigest[digest] = append(byDigest[digest], path)
			tracker.fileProcessed(path, n)
		}

		for _, digestGroup := range byDigest {
			if len(digestGroup) < 2 {
				continue
			}

			if e.opts.TrustDigest {
				groups = append(groups, DuplicateGroup{Size: size, Paths: digestGroup})
				continue
			}

			confirmed, confirmErrs := confirmByteEqual(ctx, digestGroup)
			readErrs = append(readErrs, confirmErrs...)
			for _, paths := range confirmed {
				if len(paths) >= 2 {
					groups = append(groups, DuplicateGroup{Size: size, Paths: paths})
				}
			}
		}
	}

	return groups, readErrs
}

// confirmByteEqual splits a digest-equal set into byte-identical subsets.
// Digest collisions are astronomically unlikely, so in practice this
// returns one subset; it exists to make the duplicate guarantee exact
// rather than probabilistic.
func confirmByteEqual(ctx context.Context, paths []string) ([][]string, []*scanner.ReadError) {
	var (
		confirmed [][]string
		readErrs  []*scanner.ReadError
	)

	for _, path := range paths {
		if ctx.Err() != nil {
			return confirmed, readErrs
		}

		placed := false
		for i := range confirmed {
			same, err := fingerprint.Equal(confirmed[i][0], path)
			if err != nil {
				readErrs = append(readErrs, &scanner.ReadError{Path: path, Err: err})
				placed = true
				break
			}
			if same {
				confirmed[i] = append(confirmed[i], path)
				placed = true
				break
			}
		}

		if !placed {
			confirmed = append(confirmed, []string{path})
		}
	}

	return confirmed, readErrs
}
