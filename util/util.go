// Package util contains misc internal utilities.
package util

// Limiter is a pair of min/max values which bound a command.
// The zero value has Min == Max == 0 and rejects everything; populate
// both fields before use.
type Limiter struct {
	// Min is the lower bound
	Min float64 `json:"min"`

	// Max is the upper bound
	Max float64 `json:"max"`
}

// Check returns true if the value is within the limits
func (l Limiter) Check(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp returns the value moved inside the limits, if it was outside them
func (l Limiter) Clamp(v float64) float64 {
	if v < l.Min {
		return l.Min
	}
	if v > l.Max {
		return l.Max
	}
	return v
}

// ClampInt is Clamp for integer commands, e.g. step counts or ADC codes
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
