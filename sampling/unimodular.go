// Package sampling implements the random generators behind GGH key generation:
// good private bases and unimodular basis transforms.
package sampling

import (
	"errors"
	"fmt"

	"github.com/BackendStack21/ggh-go/lattice"
	"github.com/BackendStack21/ggh-go/utils"
)

var (
	// ErrUnimodularAttemptsExceeded indicates no acceptable unimodular matrix was found
	// within the attempt budget.
	ErrUnimodularAttemptsExceeded = errors.New("unimodular matrix attempts exceeded")

	// ErrBasisAttemptsExceeded indicates no basis above the Hadamard threshold was found
	// within the attempt budget.
	ErrBasisAttemptsExceeded = errors.New("good basis attempts exceeded")
)

// RandomUnimodular returns a random size x size integer matrix with determinant +1 or -1.
//
// Starting from the identity it applies size random row swaps, size random column swaps,
// negates each row with probability 1/2 and finally, for each row i, adds mult*row_j for a
// random j != i and mult drawn from [size, 5*size]. Every step preserves |det| = 1; the
// exact determinant is still checked and the matrix redrawn if the check fails, up to
// maxAttempts times.
func RandomUnimodular(size int, src utils.Source, maxAttempts int) (*lattice.IntMatrix, error) {
	if err := utils.CheckPositive(size, "size"); err != nil {
		return nil, err
	}
	if err := utils.CheckPositive(maxAttempts, "max attempts"); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		u := randomElementaryProduct(size, src)
		if u.IsUnimodular() {
			return u, nil
		}
		u.Zero()
	}
	return nil, fmt.Errorf("%w: %d attempts for size %d", ErrUnimodularAttemptsExceeded, maxAttempts, size)
}

func randomElementaryProduct(size int, src utils.Source) *lattice.IntMatrix {
	u := lattice.Identity(size)

	for i := 0; i < size; i++ {
		u.SwapRows(i, src.Intn(size))
	}
	for i := 0; i < size; i++ {
		u.SwapCols(i, src.Intn(size))
	}

	for i := 0; i < size; i++ {
		if src.Bool() {
			u.NegateRow(i)
		}
	}

	lo, hi := int64(size), int64(5*size)
	for i := 0; i < size; i++ {
		j := src.Intn(size)
		if j != i {
			u.AddRowMultiple(i, j, src.Int64Range(lo, hi))
		}
	}
	return u
}

// ProductOptions bounds UnimodularProduct.
type ProductOptions struct {
	// MaxAttempts bounds the redraws of each factor.
	MaxAttempts int
	// MaxBits caps the bit length of every entry of the running product; zero disables the cap.
	MaxBits int
}

// UnimodularProduct multiplies iterations random unimodular factors together.
//
// Each factor is verified to have |det| = 1 before it is folded in, and the running
// product's own determinant is verified again before the factor counts. A factor that
// pushes any entry of the product beyond opts.MaxBits bits is discarded and redrawn.
// Zero iterations yield the identity.
func UnimodularProduct(size, iterations int, src utils.Source, opts ProductOptions) (*lattice.IntMatrix, error) {
	if err := utils.CheckPositive(size, "size"); err != nil {
		return nil, err
	}
	if iterations < 0 {
		return nil, errors.New("iterations must be non-negative")
	}
	if err := utils.CheckPositive(opts.MaxAttempts, "max attempts"); err != nil {
		return nil, err
	}

	product := lattice.Identity(size)
	for counted := 0; counted < iterations; counted++ {
		accepted := false
		for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
			factor, err := RandomUnimodular(size, src, opts.MaxAttempts)
			if err != nil {
				return nil, err
			}
			candidate := lattice.Mul(product, factor)
			factor.Zero()

			if opts.MaxBits > 0 && candidate.MaxBitLen() > opts.MaxBits {
				candidate.Zero()
				continue
			}
			if !candidate.IsUnimodular() {
				candidate.Zero()
				continue
			}
			product.Zero()
			product = candidate
			accepted = true
			break
		}
		if !accepted {
			product.Zero()
			return nil, fmt.Errorf("%w: factor %d of %d stayed above %d bits", ErrUnimodularAttemptsExceeded, counted+1, iterations, opts.MaxBits)
		}
	}
	return product, nil
}
