// Package domain holds the value objects produced by auction ingestion:
// vehicles, their engines and transmissions, and the auctions that group them.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a field whose raw value could not be converted to
// the type the field requires.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports ErrValidation so callers can classify without errors.As.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Engine describes a vehicle's engine as listed. Cylinders is free text
// ("6", "V8", "N/A"); an empty value means the source did not say.
type Engine struct {
	Description string
	Cylinders   string
}

// Vehicle is a single listing. Instances are built once per CSV row by
// NewVehicle and never mutated afterwards.
type Vehicle struct {
	Year         int
	Make         string
	Model        string
	VIN          string
	Engine       Engine
	Transmission Transmission
}

// NewVehicle builds a Vehicle from a raw year cell and already-typed fields.
// It fails with a *ValidationError when year is not an integer.
func NewVehicle(year, maker, model, vin string, engine Engine, tr Transmission) (Vehicle, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return Vehicle{}, &ValidationError{Field: "year", Value: year, Err: errors.Unwrap(err)}
	}
	return Vehicle{
		Year:         y,
		Make:         maker,
		Model:        model,
		VIN:          vin,
		Engine:       engine,
		Transmission: tr,
	}, nil
}
