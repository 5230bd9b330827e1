package fileio

import (
	"os"

	"github.com/pkg/errors"
	"github.com/tysontate/gommap"
)

// Mmap is a read-only Medium over a memory-mapped regular file.
// Decoding a log is a single sequential pass over a file whose size is
// known up front, which is exactly what a shared read mapping is for.
type Mmap struct {
	f    *os.File
	data gommap.MMap
	pos  int64
}

// OpenMmap maps an existing regular file read-only.
func OpenMmap(path string) (*Mmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	if err := checkRegular(f); err != nil {
		f.Close()
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to stat file")
	}
	if info.Size() == 0 {
		f.Close()
		return nil, errors.New("file is empty")
	}
	data, err := gommap.Map(f.Fd(), gommap.PROT_READ, gommap.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to mmap")
	}
	return &Mmap{f: f, data: data}, nil
}

func (m *Mmap) Read(p []byte) error {
	if m.pos+int64(len(p)) > int64(len(m.data)) {
		return errors.Wrapf(ErrShortRead, "read %d bytes at %d of %d",
			len(p), m.pos, len(m.data))
	}
	copy(p, m.data[m.pos:])
	m.pos += int64(len(p))
	return nil
}

func (m *Mmap) Write(p []byte) error {
	return ErrReadOnly
}

func (m *Mmap) Tell() (int64, error) {
	return m.pos, nil
}

func (m *Mmap) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case SeekSet:
		pos = offset
	case SeekCur:
		pos = m.pos + offset
	case SeekEnd:
		pos = int64(len(m.data)) + offset
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, errors.Errorf("negative position %d", pos)
	}
	m.pos = pos
	return pos, nil
}

func (m *Mmap) Length() (int64, error) {
	return int64(len(m.data)), nil
}

func (m *Mmap) Truncate(size int64) error {
	return ErrReadOnly
}

func (m *Mmap) Close() error {
	defer m.f.Close()
	return m.data.UnsafeUnmap()
}
