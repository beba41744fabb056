package weektable

import (
	"fmt"
	"sync/atomic"

	"github.com/ukaji3/weektable-go/pkg/weektable/models"
)

// ResetMessage is the status reported after Reset.
const ResetMessage = "Reset to initial values"

// Table holds the currently displayed entity set. Each action replaces the
// whole snapshot; a failed action leaves it untouched.
type Table struct {
	bounds  []models.Bounds
	target  float64
	src     RandomSource
	current atomic.Pointer[models.EntitySet]
}

// NewTable returns a table with zeroed values for the given bounds.
func NewTable(bounds []models.Bounds, opts Options) *Table {
	t := &Table{
		bounds: append([]models.Bounds(nil), bounds...),
		target: opts.TargetOrDefault(),
		src:    opts.RandomSourceOrDefault(),
	}
	t.Reset()
	return t
}

// Generate produces a new normalized snapshot and returns a status message.
// On error the previous snapshot is kept and the message describes the failure.
func (t *Table) Generate() (string, error) {
	res, err := Normalize(*t.current.Load(), t.target, t.src)
	if err != nil {
		return err.Error(), err
	}
	t.current.Store(&res.Entities)
	return fmt.Sprintf("Generated table (grand total %.3f)", res.GrandTotal), nil
}

// Reset replaces the snapshot with a zeroed set and returns a status message.
func (t *Table) Reset() string {
	set := models.NewEntitySet(t.bounds)
	t.current.Store(&set)
	return ResetMessage
}

// Target returns the grand total each generation sums to.
func (t *Table) Target() float64 { return t.target }

// Snapshot returns a copy of the current set.
func (t *Table) Snapshot() models.EntitySet {
	return t.current.Load().Clone()
}

// Totals returns the column sums of the current set, each rounded to 3 decimals.
func (t *Table) Totals() (morning, evening, total float64) {
	return ColumnTotals(*t.current.Load())
}

// ColumnTotals returns the rounded column sums of a set.
func ColumnTotals(set models.EntitySet) (morning, evening, total float64) {
	for _, e := range set {
		morning += e.ValueA
		evening += e.ValueB
		total += e.Total
	}
	return Round3(morning), Round3(evening), Round3(total)
}
