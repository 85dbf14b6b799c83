// Package utils provides randomness, hashing and safety helpers for GGH.
// This file contains safe arithmetic and allocation limits to prevent
// integer overflow, silent float64 rounding and oversized allocations.

package utils

import (
	"errors"
	"math"
	"math/big"
)

const (
	// MaxDimension is the maximum allowed lattice dimension.
	MaxDimension = 64

	// MaxEntryBound is the maximum allowed bound for sampled basis and noise entries.
	MaxEntryBound = 1 << 20

	// MaxMatrixElements is the maximum allowed number of elements in a matrix.
	MaxMatrixElements = MaxDimension * MaxDimension

	// FloatExactBits is the number of bits up to which float64 represents every integer.
	FloatExactBits = 53
)

var (
	// ErrOverflow indicates an integer overflow or a value float64 cannot hold exactly.
	ErrOverflow = errors.New("integer overflow")

	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

var maxExactInt = new(big.Int).Lsh(big.NewInt(1), FloatExactBits)

// SafeMultiply multiplies two non-negative integers and returns an error if overflow occurs.
func SafeMultiply(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrInvalidLength
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt/b {
		return 0, ErrOverflow
	}
	return a * b, nil
}

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}

// CheckPositive validates that value is > 0.
func CheckPositive(value int, name string) error {
	if value <= 0 {
		return errors.New(name + " must be positive")
	}
	return nil
}

// ExactFloat64 converts x to float64, failing with ErrOverflow when |x| > 2^53 and the
// conversion could round.
func ExactFloat64(x *big.Int) (float64, error) {
	if x.CmpAbs(maxExactInt) > 0 {
		return 0, ErrOverflow
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	return f, nil
}

// IsExactInteger reports whether f is finite, integral and inside the exact float64 range.
func IsExactInteger(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	return math.Abs(f) <= 1<<FloatExactBits
}
