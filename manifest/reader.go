// Package manifest provides streaming JSON-Lines readers and writers for
// the manifest files passed between pipeline steps, plus the path helpers
// the runner uses to stitch them.
package manifest

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"minidp/errors"
	"minidp/record"
)

// Reader is a lazy, single-pass, non-restartable sequence of Records read
// from a JSON-Lines file. Lines that are empty after trimming are
// skipped; any other malformed line fails the whole read.
type Reader struct {
	f       *os.File
	scanner *bufio.Scanner
	path    string
	line    int
}

// OpenReader opens path for streaming read.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.ManifestReadError{Path: path, Line: 0, Err: err}
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return &Reader{f: f, scanner: sc, path: path}, nil
}

// Next returns the next record, or ok == false when the manifest is
// exhausted. A malformed non-empty line returns a *errors.ManifestReadError.
func (r *Reader) Next() (rec record.Record, ok bool, err error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		var rv record.Record
		if jerr := json.Unmarshal([]byte(line), &rv); jerr != nil {
			return nil, false, &errors.ManifestReadError{Path: r.path, Line: r.line, Err: jerr}
		}
		return rv, true, nil
	}
	if serr := r.scanner.Err(); serr != nil {
		return nil, false, &errors.ManifestReadError{Path: r.path, Line: r.line, Err: serr}
	}
	return nil, false, nil
}

// Close releases the underlying file handle. Safe to call on all exit
// paths, including after a read error.
func (r *Reader) Close() error {
	return r.f.Close()
}

// ReadAll drains the reader into a slice, for non-streaming processors
// like SortManifest that must see the whole manifest at once.
func ReadAll(path string) ([]record.Record, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []record.Record
	for {
		rec, ok, err := r.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}
