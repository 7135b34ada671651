// Package ingest turns one listing export into (date, location, vehicle)
// listings, in file order.
//
// A single bad row fails the whole file: the caller never sees a partial
// result for a file that did not parse end to end.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"auctions/internal/datasource"
	"auctions/internal/datasource/file"
	"auctions/internal/domain"
	"auctions/internal/normalize"
	csvparser "auctions/internal/parser/csv"
)

// Column names of the export header. Matching is exact.
const (
	ColAuctionDate  = "Auction Date"
	ColBranchName   = "Branch Name"
	ColYear         = "Year"
	ColMake         = "Make"
	ColModel        = "Model"
	ColVIN          = "Vin#"
	ColEngine       = "Engine"
	ColCylinders    = "Cylinders"
	ColTransmission = "Transmission Type"
)

// DefaultCylinders is used when the export has no Cylinders column.
const DefaultCylinders = "N/A"

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColAuctionDate, ColBranchName, ColYear, ColMake, ColModel, ColVIN, ColEngine,
}

// ErrFileTimeout is the cause reported when a file exceeds Processor.Timeout.
var ErrFileTimeout = errors.New("file processing timed out")

// DateParser converts a raw "Auction Date" cell into a UTC instant.
type DateParser interface {
	Parse(raw string) (time.Time, error)
}

// Listing is one export row after parsing.
type Listing struct {
	DateUTC  time.Time
	Location string
	Vehicle  domain.Vehicle
	Line     int
}

// Key returns the auction the listing belongs to.
func (l Listing) Key() domain.AuctionKey {
	return domain.AuctionKey{DateUTC: l.DateUTC, Location: l.Location}
}

// FileResult is the fully materialized output of one file.
type FileResult struct {
	Path     string
	Listings []Listing
	// Digest is the xxh3-64 hash of the bytes read.
	Digest uint64
}

// RowError pins a failure to a data row.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// MissingColumnError reports required header columns that are absent.
type MissingColumnError struct {
	Path    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Columns, ", "))
}

// Processor reads listing exports. It holds no per-file state and is safe
// for concurrent use when Dates is.
type Processor struct {
	Dates DateParser
	// Timeout bounds one file when positive. Zero means no limit.
	Timeout time.Duration
	CSV     csvparser.Options
}

// NewProcessor returns a Processor trimming cell whitespace.
func NewProcessor(dates DateParser, timeout time.Duration) *Processor {
	return &Processor{
		Dates:   dates,
		Timeout: timeout,
		CSV:     csvparser.Options{TrimSpace: true},
	}
}

// ProcessFile processes the local file at path.
func (p *Processor) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	return p.Process(ctx, file.NewLocal(path))
}

// Process reads src to the end and returns one Listing per data row.
func (p *Processor) Process(ctx context.Context, src datasource.Source) (FileResult, error) {
	name := src.Name()
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, p.Timeout,
			fmt.Errorf("%w after %s", ErrFileTimeout, p.Timeout))
		defer cancel()
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return FileResult{}, err
	}
	defer rc.Close()

	// Closing the stream is the only way to interrupt a blocked read.
	stop := context.AfterFunc(ctx, func() { _ = rc.Close() })
	defer stop()

	listings, digest, err := p.read(name, rc)
	if err != nil {
		// A read that failed because the stream was closed under it reports
		// why it was closed.
		if cause := context.Cause(ctx); cause != nil {
			return FileResult{}, fmt.Errorf("%s: %w", name, cause)
		}
		return FileResult{}, err
	}
	return FileResult{Path: name, Listings: listings, Digest: digest}, nil
}

func (p *Processor) read(name string, r io.Reader) ([]Listing, uint64, error) {
	h := xxh3.New()
	cr, err := csvparser.NewReader(io.TeeReader(r, h), p.CSV)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	if missing := cr.Header().Missing(RequiredColumns...); len(missing) > 0 {
		return nil, 0, &MissingColumnError{Path: name, Columns: missing}
	}

	var out []Listing
	for {
		row, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", name, err)
		}
		l, err := p.listing(row)
		if err != nil {
			return nil, 0, &RowError{Path: name, Line: row.Line, Err: err}
		}
		out = append(out, l)
	}
	return out, h.Sum64(), nil
}

func (p *Processor) listing(row csvparser.Row) (Listing, error) {
	date, err := p.Dates.Parse(row.Value(ColAuctionDate, ""))
	if err != nil {
		return Listing{}, err
	}

	engine := domain.Engine{
		Description: normalize.Text(row.Value(ColEngine, "")),
		Cylinders:   normalize.Text(row.Value(ColCylinders, DefaultCylinders)),
	}
	v, err := domain.NewVehicle(
		row.Value(ColYear, ""),
		normalize.Text(row.Value(ColMake, "")),
		normalize.Text(row.Value(ColModel, "")),
		normalize.VIN(row.Value(ColVIN, "")),
		engine,
		domain.ParseTransmission(row.Value(ColTransmission, "")),
	)
	if err != nil {
		return Listing{}, err
	}

	return Listing{
		DateUTC:  date,
		Location: normalize.Text(row.Value(ColBranchName, "")),
		Vehicle:  v,
		Line:     row.Line,
	}, nil
}
