package weektable

import (
	"errors"
	"fmt"
)

// ErrInvalidTarget indicates a non-positive target sum.
var ErrInvalidTarget = errors.New("target must be greater than zero")

// ErrEmptyExport indicates an export was attempted with zero rows.
var ErrEmptyExport = errors.New("no rows to export")

// ErrDegenerateInput is matched by every DegenerateInputError.
var ErrDegenerateInput = errors.New("generation produced zero total")

// ErrRemainderRepair is matched by every RemainderRepairError.
var ErrRemainderRepair = errors.New("remainder repair impossible")

// BoundsError reports an entity whose bounds cannot be sampled.
type BoundsError struct {
	Label string
	Min   float64
	Max   float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("invalid bounds for %q: min %.3f, max %.3f", e.Label, e.Min, e.Max)
}

// DegenerateInputError is returned when the raw samples sum to zero.
type DegenerateInputError struct {
	Entities int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("generation produced zero total (unexpected) across %d rows", e.Entities)
}

func (e *DegenerateInputError) Unwrap() error {
	return ErrDegenerateInput
}

// RemainderRepairError is returned when rounding drift pushes the selected
// entity negative and no other entity can absorb the deficit.
type RemainderRepairError struct {
	Label   string
	Diff    int64
	Deficit int64
}

func (e *RemainderRepairError) Error() string {
	return fmt.Sprintf("cannot repair rounding remainder of %d milli-units on %q: deficit %d has no other row to absorb it",
		e.Diff, e.Label, e.Deficit)
}

func (e *RemainderRepairError) Unwrap() error {
	return ErrRemainderRepair
}

// TransportError represents a failed upload round trip.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload to %s failed with status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upload to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
