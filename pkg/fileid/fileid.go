package fileid

import "fmt"

// FileID uniquely identifies an underlying file object by device ID and
// inode number. Two paths with equal FileIDs are names for the same file.
type FileID struct {
	Device uint64
	Inode  uint64
}

// String returns a string representation of the FileID.
func (f FileID) String() string {
	return fmt.Sprintf("%d:%d", f.Device, f.Inode)
}

// Equal checks if two FileIDs are equal.
func (f FileID) Equal(other FileID) bool {
	return f.Device == other.Device && f.Inode == other.Inode
}
