package stream

import (
	"bufio"
	"os"
	"path/filepath"
)

// File is a Stream backed by a file below some root directory. Its Name is
// the path relative to that root.
type File struct {
	name   string
	file   *os.File
	reader *bufio.Reader
	writer *bufio.Writer

	// Set for files from Replace: where the temporary file goes on Close.
	destination string
}

func target(root string, name string) string {
	return filepath.Join(root, filepath.FromSlash(name))
}

// Open opens root/name for reading.
func Open(root string, name string) (*File, error) {
	file, err := os.Open(target(root, name))
	if err != nil {
		return nil, err
	}

	return &File{
		name:   name,
		file:   file,
		reader: bufio.NewReader(file),
	}, nil
}

// Create truncates or creates root/name for writing, creating any missing
// parent directories.
func Create(root string, name string) (*File, error) {
	path := target(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &File{
		name:   name,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Replace writes to a temporary file next to root/name. Close moves it over
// root/name and Discard throws it away, so the original is never left half
// written.
func Replace(root string, name string) (*File, error) {
	path := target(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}

	return &File{
		name:        name,
		file:        file,
		writer:      bufio.NewWriter(file),
		destination: path,
	}, nil
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Read(p []byte) (int, error) {
	if f.reader == nil {
		return 0, ErrUnsupported
	}
	return f.reader.Read(p)
}

func (f *File) Write(p []byte) (int, error) {
	if f.writer == nil {
		return 0, ErrUnsupported
	}
	return f.writer.Write(p)
}

// Close flushes pending writes and closes the file. A file from Replace is
// moved into place.
func (f *File) Close() error {
	if f.writer != nil {
		if err := f.writer.Flush(); err != nil {
			f.Discard()
			return err
		}
	}

	if err := f.file.Close(); err != nil {
		f.removeTemporary()
		return err
	}

	if f.destination == "" {
		return nil
	}

	if err := os.Rename(f.file.Name(), f.destination); err != nil {
		f.removeTemporary()
		return err
	}
	return nil
}

// Discard closes the file without flushing. A file from Replace leaves its
// destination untouched.
func (f *File) Discard() {
	f.file.Close()
	f.removeTemporary()
}

func (f *File) removeTemporary() {
	if f.destination != "" {
		os.Remove(f.file.Name())
	}
}

var _ Stream = (*File)(nil)
