// Package pipeline runs auction ingestion end to end: it discovers the
// exports in a directory, processes them concurrently and merges the
// listings into auctions.
//
// Fan-out units share no mutable state; each writes only its own result
// slot. The merge runs on the calling goroutine after every unit has
// finished, in discovery order, so vehicle order inside an auction is
// deterministic: files by name, rows by line.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"auctions/internal/datasource/file"
	"auctions/internal/domain"
	"auctions/internal/ingest"
	"auctions/internal/metrics"
)

// ErrDirectoryNotFound is returned when the input directory does not exist
// or is not a directory.
var ErrDirectoryNotFound = errors.New("directory not found")

// FileProcessor processes one export. *ingest.Processor implements it.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (ingest.FileResult, error)
}

// Options configures Run.
type Options struct {
	Processor FileProcessor
	// Workers bounds concurrent files. Zero or negative means GOMAXPROCS.
	Workers int
	// Job labels metrics.
	Job string
	// Logger receives per-file progress. Nil disables logging.
	Logger *zerolog.Logger
}

// Stats summarizes a successful run.
type Stats struct {
	Files    int
	Listings int
	Auctions int
	Duration time.Duration
}

// Run processes every export directly under dir and returns the auctions in
// order of first appearance. Any failure aborts the run: the first error is
// returned with nil auctions.
func Run(ctx context.Context, dir string, opt Options) ([]*domain.Auction, Stats, error) {
	start := time.Now()
	log := opt.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	auctions, stats, err := run(ctx, dir, opt, log)
	stats.Duration = time.Since(start)
	metrics.RecordStep(opt.Job, "run", err, stats.Duration)
	if err != nil {
		return nil, Stats{}, err
	}
	return auctions, stats, nil
}

func run(ctx context.Context, dir string, opt Options, log *zerolog.Logger) ([]*domain.Auction, Stats, error) {
	if opt.Processor == nil {
		return nil, Stats{}, errors.New("pipeline: processor is required")
	}

	t0 := time.Now()
	paths, err := discover(dir)
	metrics.RecordStep(opt.Job, "discover", err, time.Since(t0))
	if err != nil {
		return nil, Stats{}, err
	}
	log.Info().Str("dir", dir).Int("files", len(paths)).Msg("discovered exports")

	t0 = time.Now()
	results, err := processAll(ctx, paths, opt, log)
	metrics.RecordStep(opt.Job, "process", err, time.Since(t0))
	if err != nil {
		return nil, Stats{}, err
	}

	t0 = time.Now()
	auctions, listings := Merge(results)
	metrics.RecordStep(opt.Job, "merge", nil, time.Since(t0))
	metrics.RecordRows(opt.Job, "listings", int64(listings))
	metrics.RecordRows(opt.Job, "auctions", int64(len(auctions)))

	return auctions, Stats{Files: len(paths), Listings: listings, Auctions: len(auctions)}, nil
}

func discover(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, dir)
	}
	paths, err := file.ListCSV(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return paths, nil
}

// processAll fans out one unit per path. The first failure cancels the
// remaining units and is the error returned.
func processAll(ctx context.Context, paths []string, opt Options, log *zerolog.Logger) ([]ingest.FileResult, error) {
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]ingest.FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			res, err := opt.Processor.ProcessFile(gctx, path)
			metrics.RecordFile(opt.Job, err)
			if err != nil {
				log.Error().Err(err).Str("file", path).Msg("file failed")
				return err
			}
			log.Debug().
				Str("file", path).
				Int("rows", len(res.Listings)).
				Str("xxh3", fmt.Sprintf("%016x", res.Digest)).
				Msg("file processed")
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge groups listings into auctions by (date, location). Results are
// consumed in slice order and listings in row order. It returns the auctions
// in order of first appearance and the number of listings merged.
func Merge(results []ingest.FileResult) ([]*domain.Auction, int) {
	index := make(map[domain.AuctionKey]*domain.Auction)
	var (
		order []*domain.Auction
		n     int
	)
	for _, res := range results {
		for _, l := range res.Listings {
			key := l.Key()
			a, ok := index[key]
			if !ok {
				a = domain.NewAuction(key)
				index[key] = a
				order = append(order, a)
			}
			a.Add(l.Vehicle)
			n++
		}
	}
	return order, n
}
