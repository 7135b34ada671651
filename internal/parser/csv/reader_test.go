package csv

import (
	"encoding/csv"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func readAll(t *testing.T, r *Reader) []Row {
	t.Helper()
	var out []Row
	for {
		row, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, row)
	}
}

func TestNewReader_HeaderNormalization(t *testing.T) {
	t.Parallel()

	in := "\uFEFFAuction Date , Branch Name,Vin#\nMon,Dallas,1\n"
	r, err := NewReader(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	want := []string{"Auction Date", "Branch Name", "Vin#"}
	if got := r.Header().Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("header = %#v, want %#v", got, want)
	}
	if !r.Header().Has("Vin#") || r.Header().Has("vin#") {
		t.Fatalf("header lookup must be exact and case-sensitive")
	}
	if got := r.Header().Missing("Year", "Vin#", "Make"); !reflect.DeepEqual(got, []string{"Year", "Make"}) {
		t.Fatalf("Missing = %#v", got)
	}
}

func TestReader_Rows(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		"Year,Make,Model",
		"2020, Audi ,A4",
		`2019,"Ford","F-150, XL"`,
		"2018,Kia,Rio",
	}, "\n") + "\n"

	r, err := NewReader(strings.NewReader(in), Options{TrimSpace: true})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	rows := readAll(t, r)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	cases := []struct {
		row  int
		col  string
		want string
		line int
	}{
		{0, "Make", "Audi", 2},
		{1, "Model", "F-150, XL", 3},
		{2, "Year", "2018", 4},
	}
	for _, c := range cases {
		got, ok := rows[c.row].Get(c.col)
		if !ok || got != c.want {
			t.Errorf("row %d %s = %q (ok=%v), want %q", c.row, c.col, got, ok, c.want)
		}
		if rows[c.row].Line != c.line {
			t.Errorf("row %d line = %d, want %d", c.row, rows[c.row].Line, c.line)
		}
	}

	if _, ok := rows[0].Get("Cylinders"); ok {
		t.Fatalf("Get on absent column reported ok")
	}
	if got := rows[0].Value("Cylinders", "N/A"); got != "N/A" {
		t.Fatalf("Value default = %q, want N/A", got)
	}
}

func TestReader_Comma(t *testing.T) {
	t.Parallel()

	r, err := NewReader(strings.NewReader("Year;Make\n2020;Audi\n"), Options{Comma: ';'})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	rows := readAll(t, r)
	if got := rows[0].Value("Make", ""); got != "Audi" {
		t.Fatalf("Make = %q, want Audi", got)
	}
}

func TestReader_FieldCountMismatch(t *testing.T) {
	t.Parallel()

	r, err := NewReader(strings.NewReader("Year,Make\n2020,Audi\n2019\n"), Options{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Next(); err != nil {
		t.Fatalf("first row: %v", err)
	}
	_, err = r.Next()
	if !errors.Is(err, csv.ErrFieldCount) {
		t.Fatalf("expected csv.ErrFieldCount, got %v", err)
	}
}

func TestNewReader_Empty(t *testing.T) {
	t.Parallel()

	if _, err := NewReader(strings.NewReader(""), Options{}); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestStripHeaderBOM(t *testing.T) {
	t.Parallel()

	if got := StripHeaderBOM(nil); got != nil {
		t.Fatalf("nil in, got %#v", got)
	}
	got := StripHeaderBOM([]string{"\uFEFFYear", "Make"})
	if got[0] != "Year" || got[1] != "Make" {
		t.Fatalf("got %#v", got)
	}
}
