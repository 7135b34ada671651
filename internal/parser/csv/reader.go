// Package csv reads header-driven CSV exports row by row.
//
// The first record is the header. Column names are matched exactly (case
// sensitive) after the BOM is stripped and surrounding whitespace trimmed.
// Every data row must have as many fields as the header; a width mismatch is
// reported as a *csv.ParseError wrapping csv.ErrFieldCount.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Options configures a Reader. The zero value reads comma-separated input
// without trimming cell values.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each cell value.
	TrimSpace bool
}

// Header maps column names to positions.
type Header struct {
	names []string
	index map[string]int
}

func newHeader(names []string) Header {
	h := Header{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		// First occurrence wins for duplicated column names.
		if _, dup := h.index[n]; !dup {
			h.index[n] = i
		}
	}
	return h
}

// Names returns the header cells in file order.
func (h Header) Names() []string { return h.names }

// Has reports whether column name is present.
func (h Header) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Missing returns the names from want that are absent, in want order.
func (h Header) Missing(want ...string) []string {
	var out []string
	for _, w := range want {
		if !h.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Row is one data record bound to its header.
type Row struct {
	// Line is the 1-based line the record starts on.
	Line   int
	fields []string
	header *Header
}

// Get returns the cell under column name.
func (r Row) Get(name string) (string, bool) {
	i, ok := r.header.index[name]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	return r.fields[i], true
}

// Value returns the cell under column name, or def when the column is absent.
func (r Row) Value(name, def string) string {
	if v, ok := r.Get(name); ok {
		return v
	}
	return def
}

// Reader yields Rows from a CSV stream.
type Reader struct {
	cr     *csv.Reader
	header Header
	trim   bool
}

// NewReader consumes the header record from r. An empty input is reported
// as an error, not as an empty file.
func NewReader(r io.Reader, opt Options) (*Reader, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// Width is pinned to the header by FieldsPerRecord = 0.
	cr.FieldsPerRecord = 0

	h, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	h = StripHeaderBOM(h)
	names := make([]string, len(h))
	for i, n := range h {
		names[i] = strings.TrimSpace(n)
	}

	return &Reader{cr: cr, header: newHeader(names), trim: opt.TrimSpace}, nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next data row, or io.EOF once the input is exhausted.
func (r *Reader) Next() (Row, error) {
	rec, err := r.cr.Read()
	if err != nil {
		return Row{}, err
	}
	line, _ := r.cr.FieldPos(0)

	if r.trim {
		for i, v := range rec {
			rec[i] = strings.TrimSpace(v)
		}
	}
	return Row{Line: line, fields: rec, header: &r.header}, nil
}
