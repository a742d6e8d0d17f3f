package random

import (
	"math"

	"github.com/matzehuels/augmedical/pkg/errors"
)

// Range is a uniform policy over the half-open interval [Min, Max).
type Range struct {
	Min float64 `toml:"min" json:"min"`
	Max float64 `toml:"max" json:"max"`
}

// Sample draws one value from r.
func (r Range) Sample(src Source) float64 {
	return Float(src, r.Min, r.Max)
}

// SampleN draws n independent values from r.
func (r Range) SampleN(src Source, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.Sample(src)
	}
	return out
}

// Scale shrinks the upper bound toward Min by intensity m, clamped to [0, 1].
// m = 1 returns r unchanged; m = 0 collapses the range onto Min.
func (r Range) Scale(m float64) Range {
	m = clamp01(m)
	return Range{Min: r.Min, Max: r.Min + (r.Max-r.Min)*m}
}

// Validate checks that r is an ordered finite range.
func (r Range) Validate(name string) error {
	return errors.ValidateRange(name, r.Min, r.Max)
}

// IntRange is a uniform policy over the closed integer interval [Min, Max].
type IntRange struct {
	Min int `toml:"min" json:"min"`
	Max int `toml:"max" json:"max"`
}

// Sample draws one value from r.
func (r IntRange) Sample(src Source) int {
	return Int(src, r.Min, r.Max)
}

// Scale shrinks the upper bound toward Min by intensity m, rounding to the
// nearest integer.
func (r IntRange) Scale(m float64) IntRange {
	m = clamp01(m)
	return IntRange{Min: r.Min, Max: r.Min + int(math.Round(float64(r.Max-r.Min)*m))}
}

// Validate checks that r is ordered.
func (r IntRange) Validate(name string) error {
	if r.Min > r.Max {
		return errors.InvalidConfig("%s minimum %d exceeds maximum %d", name, r.Min, r.Max)
	}
	return nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}
