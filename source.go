package linebookmark

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ByteSource is the external collaborator a BookmarkingLineReader pulls
// raw bytes from. It is deliberately narrower than io.ReadSeeker: a
// reader never needs to seek to anything but an absolute byte offset,
// and never needs relative seeks.
type ByteSource interface {
	Read(buf []byte) (int, error)
	Seek(absoluteOffset int64) error
	Position() (int64, error)
	Length() (int64, error)
	Close() error
}

// FileByteSource is a ByteSource backed directly by an *os.File, the
// same underlying handle the file tailer's FileReader opens for a
// tracked input file.
type FileByteSource struct {
	f *os.File
}

// NewFileByteSource wraps an already-open file.
func NewFileByteSource(f *os.File) *FileByteSource {
	return &FileByteSource{f: f}
}

// OpenFileByteSource opens path for reading and wraps it.
func OpenFileByteSource(path string) (*FileByteSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "linebookmark: opening %s", path)
	}
	return &FileByteSource{f: f}, nil
}

func (s *FileByteSource) Read(buf []byte) (int, error) {
	return s.f.Read(buf)
}

func (s *FileByteSource) Seek(absoluteOffset int64) error {
	_, err := s.f.Seek(absoluteOffset, io.SeekStart)
	return errors.Wrap(err, "linebookmark: seeking byte source")
}

func (s *FileByteSource) Position() (int64, error) {
	pos, err := s.f.Seek(0, io.SeekCurrent)
	return pos, errors.Wrap(err, "linebookmark: reading byte source position")
}

func (s *FileByteSource) Length() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "linebookmark: statting byte source")
	}
	return info.Size(), nil
}

func (s *FileByteSource) Close() error {
	return s.f.Close()
}
