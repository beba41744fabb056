// Package models defines data structures for the weekly value table.
package models

// Bounds describes the generation range of a single row.
type Bounds struct {
	// Label is the row identity (e.g., "MONDAY").
	Label string `json:"label"`
	// Min is the lower bound for generated values.
	Min float64 `json:"min"`
	// Max is the upper bound for generated values.
	Max float64 `json:"max"`
}

// Entity represents one row of the table.
type Entity struct {
	Bounds
	// ValueA is the first generated quantity (morning).
	ValueA float64 `json:"value_a"`
	// ValueB is the second generated quantity (evening).
	ValueB float64 `json:"value_b"`
	// Total is ValueA + ValueB.
	Total float64 `json:"total"`
}

// EntitySet is an ordered sequence of entities. Order is display order and
// also the tie-break order used during remainder repair.
type EntitySet []Entity

// NewEntitySet returns a zeroed set built from the given bounds.
func NewEntitySet(bounds []Bounds) EntitySet {
	set := make(EntitySet, len(bounds))
	for i, b := range bounds {
		set[i] = Entity{Bounds: b}
	}
	return set
}

// Bounds returns the bounds of every entity in order.
func (s EntitySet) Bounds() []Bounds {
	out := make([]Bounds, len(s))
	for i, e := range s {
		out[i] = e.Bounds
	}
	return out
}

// Clone returns a copy of the set.
func (s EntitySet) Clone() EntitySet {
	if s == nil {
		return nil
	}
	out := make(EntitySet, len(s))
	copy(out, s)
	return out
}

// ScaledEntity is an entity after proportional scaling, in milli-units.
type ScaledEntity struct {
	// Label is the row identity.
	Label string `json:"label"`
	// MilliA is ValueA * 1000 rounded to the nearest integer.
	MilliA int64 `json:"milli_a"`
	// MilliB is ValueB * 1000 rounded to the nearest integer.
	MilliB int64 `json:"milli_b"`
}

// Sum returns MilliA + MilliB.
func (e ScaledEntity) Sum() int64 {
	return e.MilliA + e.MilliB
}

// DefaultWeek returns the seven-day bounds preset.
func DefaultWeek() []Bounds {
	return []Bounds{
		{Label: "MONDAY", Min: 9.011, Max: 10.111},
		{Label: "TUESDAY", Min: 7.011, Max: 8.111},
		{Label: "WEDNESDAY", Min: 6.011, Max: 7.111},
		{Label: "THURSDAY", Min: 6.111, Max: 7.11},
		{Label: "FRIDAY", Min: 6.115, Max: 7.015},
		{Label: "SATURDAY", Min: 6.011, Max: 7.111},
		{Label: "SUNDAY", Min: 6.095, Max: 7.066},
	}
}
