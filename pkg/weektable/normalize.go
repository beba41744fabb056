package weektable

import (
	"math"

	"github.com/ukaji3/weektable-go/pkg/weektable/models"
)

// milliPerUnit is the integer resolution used for remainder repair.
const milliPerUnit = 1000

// Result is the outcome of a normalization.
type Result struct {
	// Entities holds the normalized values.
	Entities models.EntitySet
	// Scaled holds the repaired milli-unit values.
	Scaled []models.ScaledEntity
	// GrandTotal is the realized sum of totals rounded to 3 decimals.
	GrandTotal float64
	// Factor is target / raw grand total.
	Factor float64
	// Diff is the milli-unit drift corrected by remainder repair.
	Diff int64
}

// Normalize samples fresh values inside each entity's bounds and rescales
// them so the totals sum to target.
func Normalize(set models.EntitySet, target float64, src RandomSource) (Result, error) {
	raw, err := Sample(set, src)
	if err != nil {
		return Result{}, err
	}
	return Rescale(raw, target)
}

// Sample returns a new set whose values are drawn independently and
// uniformly from each entity's [Min, Max].
func Sample(set models.EntitySet, src RandomSource) (models.EntitySet, error) {
	out := make(models.EntitySet, len(set))
	for i, e := range set {
		if !validBounds(e.Min, e.Max) {
			return nil, &BoundsError{Label: e.Label, Min: e.Min, Max: e.Max}
		}
		a := src.Between(e.Min, e.Max)
		b := src.Between(e.Min, e.Max)
		out[i] = models.Entity{Bounds: e.Bounds, ValueA: a, ValueB: b, Total: a + b}
	}
	return out, nil
}

func validBounds(min, max float64) bool {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return false
	}
	return min >= 0 && min <= max
}

// Rescale scales already-sampled values to target and repairs the rounding
// drift. It is deterministic for a given input.
//
// Scaled values are not required to stay inside the original bounds.
func Rescale(raw models.EntitySet, target float64) (Result, error) {
	if err := ValidateTarget(target); err != nil {
		return Result{}, err
	}

	var grand float64
	for _, e := range raw {
		grand += e.ValueA + e.ValueB
	}
	if grand == 0 {
		return Result{}, &DegenerateInputError{Entities: len(raw)}
	}

	factor := target / grand
	scaled := make([]models.ScaledEntity, len(raw))
	var totalMilli int64
	for i, e := range raw {
		scaled[i] = models.ScaledEntity{
			Label:  e.Label,
			MilliA: toMilli(e.ValueA * factor),
			MilliB: toMilli(e.ValueB * factor),
		}
		totalMilli += scaled[i].Sum()
	}

	diff := toMilli(target) - totalMilli
	if err := repairRemainder(scaled, diff); err != nil {
		return Result{}, err
	}

	entities := make(models.EntitySet, len(raw))
	var sum float64
	for i, s := range scaled {
		a := fromMilli(s.MilliA)
		b := fromMilli(s.MilliB)
		entities[i] = models.Entity{Bounds: raw[i].Bounds, ValueA: a, ValueB: b, Total: Round3(a + b)}
		sum += entities[i].Total
	}

	return Result{
		Entities:   entities,
		Scaled:     scaled,
		GrandTotal: Round3(sum),
		Factor:     factor,
		Diff:       diff,
	}, nil
}

// ValidateTarget returns ErrInvalidTarget unless target is positive and finite.
func ValidateTarget(target float64) error {
	if !(target > 0) || math.IsInf(target, 0) {
		return ErrInvalidTarget
	}
	return nil
}

// repairRemainder adds diff to MilliA of the entity with the largest milli
// sum (first on ties). A negative MilliA is clamped to zero and the deficit
// is taken from the first other entity.
func repairRemainder(scaled []models.ScaledEntity, diff int64) error {
	if diff == 0 || len(scaled) == 0 {
		return nil
	}

	maxIdx := 0
	for i := 1; i < len(scaled); i++ {
		if scaled[i].Sum() > scaled[maxIdx].Sum() {
			maxIdx = i
		}
	}

	scaled[maxIdx].MilliA += diff
	if scaled[maxIdx].MilliA >= 0 {
		return nil
	}

	deficit := -scaled[maxIdx].MilliA
	next := -1
	for i := range scaled {
		if i != maxIdx {
			next = i
			break
		}
	}
	if next < 0 {
		scaled[maxIdx].MilliA -= diff
		return &RemainderRepairError{Label: scaled[maxIdx].Label, Diff: diff, Deficit: deficit}
	}
	scaled[maxIdx].MilliA = 0
	scaled[next].MilliA -= deficit
	return nil
}

// Round3 rounds to 3 decimal places, half away from zero.
func Round3(v float64) float64 {
	return math.Round(v*milliPerUnit) / milliPerUnit
}

func toMilli(v float64) int64 {
	return int64(math.Round(v * milliPerUnit))
}

func fromMilli(m int64) float64 {
	return float64(m) / milliPerUnit
}
