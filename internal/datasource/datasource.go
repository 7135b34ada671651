// Package datasource defines how the pipeline obtains raw listing bytes.
package datasource

import (
	"context"
	"io"
)

// Source opens one input stream. Name identifies the input in errors and logs.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
