package fileio

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// File is a Medium backed by a regular file on disk.
type File struct {
	f *os.File
}

// OpenFile opens an existing regular file for reading.
// Non-regular files are rejected.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	if err := checkRegular(f); err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f}, nil
}

// OpenFileRW opens an existing regular file for reading and writing.
func OpenFileRW(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	if err := checkRegular(f); err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f}, nil
}

// CreateFile creates (or truncates) a file for reading and writing.
func CreateFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return &File{f: f}, nil
}

func checkRegular(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat file")
	}
	if !info.Mode().IsRegular() {
		return errors.Wrapf(ErrNotRegular, "%s", f.Name())
	}
	return nil
}

func (m *File) Read(p []byte) error {
	n, err := io.ReadFull(m.f, p)
	if err != nil {
		return errors.Wrapf(ErrShortRead, "read %d of %d bytes: %v", n, len(p), err)
	}
	return nil
}

func (m *File) Write(p []byte) error {
	n, err := m.f.Write(p)
	if err != nil {
		return errors.Wrapf(ErrShortWrite, "wrote %d of %d bytes: %v", n, len(p), err)
	}
	return nil
}

func (m *File) Tell() (int64, error) {
	off, err := m.f.Seek(0, io.SeekCurrent)
	return off, errors.Wrap(err, "tell failed")
}

func (m *File) Seek(offset int64, whence int) (int64, error) {
	off, err := m.f.Seek(offset, whence)
	return off, errors.Wrap(err, "seek failed")
}

func (m *File) Length() (int64, error) {
	info, err := m.f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat file")
	}
	return info.Size(), nil
}

func (m *File) Truncate(size int64) error {
	return errors.Wrap(m.f.Truncate(size), "truncate failed")
}

func (m *File) Close() error {
	return m.f.Close()
}
