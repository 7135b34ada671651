// Package file implements local filesystem-backed data sources and the
// discovery of listing exports inside a directory.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem data source that opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path. The returned value is safe for
// concurrent use; every Open returns an independent descriptor.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the bound path.
func (l *Local) Name() string { return l.path }

// Open opens the configured path for reading.
//
// A context that is already done short-circuits without touching the
// filesystem. Filesystem errors are wrapped with the path and stay matchable
// with errors.Is (e.g. os.ErrNotExist). On Linux the kernel is told the file
// will be read sequentially.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}
