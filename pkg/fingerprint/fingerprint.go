// Package fingerprint computes the content digests the comparison pipeline
// uses to narrow candidate sets: a cheap xxhash over a fixed-size prefix,
// a streaming blake3 digest over the whole file, and an exact byte-for-byte
// comparison for final confirmation.
package fingerprint

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// DefaultPrefixBytes is how much of a file the prefix digest reads when the
// caller does not override it. Files differing early are common, so a small
// prefix eliminates most non-matches without a full read.
const DefaultPrefixBytes = 16 * 1024

// blockSize optimizes streaming reads (32KB is a good standard).
const blockSize = 32 * 1024

// FullDigest is a blake3 content digest.
type FullDigest [32]byte

var bufferPool = sync.Pool{
	New: func() any {
		b := make([]byte, blockSize)
		return &b
	},
}

// Prefix hashes the first n bytes of the file at path with xxhash. Files
// shorter than n hash whatever is there; equal-size inputs make the result
// comparable across a bucket.
func Prefix(path string, n int64) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, err
	}

	return xxhash.Sum64(buf[:read]), nil
}

// Full streams the entire file through blake3. It returns the digest and
// the number of bytes read.
func Full(path string) (FullDigest, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return FullDigest{}, 0, err
	}
	defer file.Close()

	h := blake3.New()

	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)

	n, err := io.CopyBuffer(h, file, *bufPtr)
	if err != nil {
		return FullDigest{}, n, err
	}

	var digest FullDigest
	copy(digest[:], h.Sum(nil))
	return digest, n, nil
}

// Equal reports whether the files at a and b are byte-for-byte identical.
// Digest equality is probable identity only; this is the proof.
func Equal(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufAPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufAPtr)
	bufBPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufBPtr)

	bufA, bufB := *bufAPtr, *bufBPtr

	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)

		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF

		switch {
		case errA != nil && !endA:
			return false, errA
		case errB != nil && !endB:
			return false, errB
		case endA && endB:
			return true, nil
		case endA != endB:
			return false, nil
		}
	}
}
