package sheet

import (
	"math"
	"strconv"
)

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for finite decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}
