package fileio

import (
	"github.com/pkg/errors"
)

// Seek whence values, mirroring io.SeekStart and friends.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

var (
	ErrShortRead  = errors.New("short read")
	ErrShortWrite = errors.New("short write")
	ErrReadOnly   = errors.New("medium is read-only")
	ErrNotRegular = errors.New("not a regular file")
)

// Medium is the capability set the log engine is written against:
// a seekable, length-known, truncatable byte store with a single
// read/write position.
//
// Read and Write transfer exactly len(p) bytes or fail; a partial
// transfer is reported as an error, never as a short count.
type Medium interface {
	// Read fills p entirely from the current position and advances it.
	Read(p []byte) error
	// Write stores p entirely at the current position and advances it.
	Write(p []byte) error
	// Tell reports the current position.
	Tell() (int64, error)
	// Seek sets the position relative to whence (SeekSet, SeekCur, SeekEnd).
	Seek(offset int64, whence int) (int64, error)
	// Length reports the current size of the medium.
	Length() (int64, error)
	// Truncate resizes the medium to size bytes.
	Truncate(size int64) error
	Close() error
}
