// Package ingest reads SAM.gov CSV extracts in bounded-memory chunks and
// feeds classified records into the opportunity store.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/globalopps/sam-atlas/app/sam"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader streams a SAM.gov CSV file as chunks of header-keyed rows. The
// whole file is never held in memory; multi-hundred-megabyte extracts are
// processed at a fixed peak. A Reader is single-pass; construct a new one
// to re-read the same file.
type Reader struct {
	file      *os.File
	csv       *csv.Reader
	header    []string
	chunkSize int
	skipped   int
}

// NewReader opens path and reads its header row. SAM.gov extracts arrive
// either as UTF-8 with a BOM or as Windows-1252; a BOM selects UTF-8,
// everything else is transcoded from Windows-1252.
func NewReader(path string, chunkSize int) (*Reader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	buffered := bufio.NewReader(file)
	var stream io.Reader = buffered
	if prefix, err := buffered.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		buffered.Discard(len(utf8BOM))
	} else {
		stream = transform.NewReader(buffered, charmap.Windows1252.NewDecoder())
	}

	cr := csv.NewReader(stream)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return &Reader{
		file:      file,
		csv:       cr,
		header:    header,
		chunkSize: chunkSize,
	}, nil
}

// Header returns the column names from the file's first row.
func (r *Reader) Header() []string {
	return append([]string(nil), r.header...)
}

// Skipped returns the number of malformed lines dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Next returns the next chunk of rows, up to the configured chunk size.
// io.EOF signals a clean end of file; a shorter-than-chunk-size final chunk
// is returned with a nil error and the following call returns io.EOF.
// Individual malformed lines are counted and skipped; an error that is not
// line-scoped aborts the read.
func (r *Reader) Next() ([]sam.RawRow, error) {
	rows := make([]sam.RawRow, 0, r.chunkSize)

	for len(rows) < r.chunkSize {
		fields, err := r.csv.Read()
		if err == io.EOF {
			if len(rows) == 0 {
				return nil, io.EOF
			}
			return rows, nil
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				r.skipped++
				slog.Debug("Skipping malformed CSV line", "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		row := make(sam.RawRow, len(r.header))
		for i, value := range fields {
			if i >= len(r.header) {
				break
			}
			row[r.header[i]] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
