// Package weektable generates weekly value tables whose totals sum to a
// fixed target, and exports them as spreadsheets.
package weektable

// DefaultTarget is the sum every generated table is normalized to.
const DefaultTarget = 100.0

// Options configures table generation.
type Options struct {
	// Target is the grand total after normalization. Zero means DefaultTarget.
	Target float64
	// Seed seeds the default random source. Zero seeds from the clock.
	Seed uint64
	// Source overrides the random source built from Seed.
	Source RandomSource
}

// DefaultOptions returns default generation options.
func DefaultOptions() Options {
	return Options{
		Target: DefaultTarget,
	}
}

// TargetOrDefault returns the configured target.
func (o Options) TargetOrDefault() float64 {
	if o.Target == 0 {
		return DefaultTarget
	}
	return o.Target
}

// RandomSourceOrDefault returns the configured random source.
func (o Options) RandomSourceOrDefault() RandomSource {
	if o.Source != nil {
		return o.Source
	}
	return NewRandomSource(o.Seed)
}
