package fileio

import (
	"github.com/pkg/errors"
)

// Memory is a Medium held entirely in a byte slice. It behaves like a
// sparse file: seeking past the end and writing extends it with zeroes.
type Memory struct {
	buf []byte
	pos int64
}

func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryBuffer wraps an existing byte slice. The slice is owned by
// the Memory from this point on.
func NewMemoryBuffer(b []byte) *Memory {
	return &Memory{buf: b}
}

// Bytes exposes the backing storage for inspection.
func (m *Memory) Bytes() []byte {
	return m.buf
}

func (m *Memory) Read(p []byte) error {
	if m.pos+int64(len(p)) > int64(len(m.buf)) {
		return errors.Wrapf(ErrShortRead, "read %d bytes at %d of %d",
			len(p), m.pos, len(m.buf))
	}
	copy(p, m.buf[m.pos:])
	m.pos += int64(len(p))
	return nil
}

func (m *Memory) Write(p []byte) error {
	if end := m.pos + int64(len(p)); end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos += int64(len(p))
	return nil
}

func (m *Memory) Tell() (int64, error) {
	return m.pos, nil
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case SeekSet:
		pos = offset
	case SeekCur:
		pos = m.pos + offset
	case SeekEnd:
		pos = int64(len(m.buf)) + offset
	default:
		return 0, errors.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, errors.Errorf("negative position %d", pos)
	}
	m.pos = pos
	return pos, nil
}

func (m *Memory) Length() (int64, error) {
	return int64(len(m.buf)), nil
}

func (m *Memory) Truncate(size int64) error {
	if size < 0 {
		return errors.Errorf("negative size %d", size)
	}
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func (m *Memory) Close() error {
	return nil
}
