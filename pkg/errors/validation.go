package errors

import "math"

// ValidateProbability checks that p is a finite value in [0, 1].
// name identifies the parameter in the error message (e.g. "bleaching.p").
func ValidateProbability(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return New(ErrCodeInvalidConfig, "%s must be in [0, 1], got %v", name, p)
	}
	return nil
}

// ValidateRange checks that lo <= hi and both bounds are finite.
func ValidateRange(name string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return New(ErrCodeInvalidConfig, "%s bounds must be finite, got [%v, %v]", name, lo, hi)
	}
	if lo > hi {
		return New(ErrCodeInvalidConfig, "%s minimum %v exceeds maximum %v", name, lo, hi)
	}
	return nil
}

// ValidateUnitRange checks that [lo, hi] is a valid range inside [0, 1].
// Bleaching fractions and desaturation factors use this.
func ValidateUnitRange(name string, lo, hi float64) error {
	if err := ValidateRange(name, lo, hi); err != nil {
		return err
	}
	if lo < 0 || hi > 1 {
		return New(ErrCodeInvalidConfig, "%s must lie within [0, 1], got [%v, %v]", name, lo, hi)
	}
	return nil
}

// ValidatePositive checks that v >= 1. Kernel sizes and iteration counts use this.
func ValidatePositive(name string, v int) error {
	if v < 1 {
		return New(ErrCodeInvalidConfig, "%s must be at least 1, got %d", name, v)
	}
	return nil
}
