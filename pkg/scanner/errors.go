package scanner

import "fmt"

// InvalidInputError reports a root path that does not exist or is not a
// directory. It is fatal: no scan work happens after it.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Path, e.Reason)
}

// AccessError reports a directory that could not be opened or listed.
// Only an AccessError on the scan root is fatal; any other is recorded
// and the scan continues with siblings.
type AccessError struct {
	Path string
	Root bool
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access %q: %v", e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// ReadError reports a file that could not be read while computing content
// fingerprints. The file is excluded from its bucket; comparison of the
// remaining members continues.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
