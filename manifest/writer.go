package manifest

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"

	"minidp/errors"
	"minidp/record"
)

// Writer opens a path for truncating write and accepts Records one at a
// time, serialized as a single JSON line with a trailing newline. It
// guarantees the file is flushed and closed on all exit paths. On an
// uncaught error mid-write, the partial file is left in place; callers
// relying on atomicity sequence writes through the runner's temp
// directory instead.
type Writer struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *bufio.Writer
}

// CreateWriter opens path for a fresh, truncating write.
func CreateWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &errors.ManifestWriteError{Path: path, Err: err}
	}
	return &Writer{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, 64*1024),
	}, nil
}

// Write appends rec as a single JSON line.
func (w *Writer) Write(rec record.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return &errors.ManifestWriteError{Path: w.path, Err: err}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.writer.Write(b); err != nil {
		return &errors.ManifestWriteError{Path: w.path, Err: err}
	}
	if _, err := w.writer.Write([]byte("\n")); err != nil {
		return &errors.ManifestWriteError{Path: w.path, Err: err}
	}
	return nil
}

// Close flushes and closes the underlying file. Safe to call exactly once
// on every exit path, including after a write error.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ferr := w.writer.Flush()
	cerr := w.file.Close()
	if ferr != nil {
		return &errors.ManifestWriteError{Path: w.path, Err: ferr}
	}
	if cerr != nil {
		return &errors.ManifestWriteError{Path: w.path, Err: cerr}
	}
	return nil
}

// WriteAll writes every record in recs to path in order, then closes.
// Used by non-streaming processors like SortManifest.
func WriteAll(path string, recs []record.Record) error {
	w, err := CreateWriter(path)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			w.Close() //nolint:errcheck
			return err
		}
	}
	return w.Close()
}
