// Package fs writes crawl artifacts to the local mirror tree.
package fs

import (
	"io"
	"os"
	"path/filepath"
)

// Writer persists artifacts, creating parent directories as needed. The
// file is written before the store row that references it, so a row on
// disk always has a backing file.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes data to path, creating parent directories.
func (w *Writer) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteString writes text content to path.
func (w *Writer) WriteString(path, content string) error {
	return w.WriteFile(path, []byte(content))
}

// WriteStream copies a reader to path and returns the byte count. Used for
// attachment and resource downloads, which can be large.
func (w *Writer) WriteStream(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Size returns the on-disk size of path, or 0 if it cannot be read.
func (w *Writer) Size(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
