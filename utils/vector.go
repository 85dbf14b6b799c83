package utils

import (
	"math"

	"golang.org/x/exp/constraints"
)

// MaxAbs returns the largest absolute value in v, or zero for an empty slice.
func MaxAbs[T constraints.Signed | constraints.Float](v []T) T {
	var m T
	for _, x := range v {
		if x < 0 {
			x = -x
		}
		if x > m {
			m = x
		}
	}
	return m
}

// RoundAll rounds every entry to the nearest integer, halves away from zero.
func RoundAll[T constraints.Float](v []T) []T {
	out := make([]T, len(v))
	for i, x := range v {
		out[i] = T(math.Round(float64(x)))
	}
	return out
}

// ToFloat64 converts a numeric slice to float64.
func ToFloat64[T constraints.Integer | constraints.Float](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// AllFinite reports whether no entry is NaN or infinite.
func AllFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
