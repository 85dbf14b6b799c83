package sampling

import (
	"fmt"

	"github.com/BackendStack21/ggh-go/lattice"
	"github.com/BackendStack21/ggh-go/utils"
)

// RandomBasis returns a size x size matrix with entries drawn uniformly from
// [-parameter, parameter]. The columns are the basis vectors.
func RandomBasis(size int, parameter int64, src utils.Source) *lattice.IntMatrix {
	m := lattice.NewIntMatrix(size, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m.SetInt64(i, j, src.Int64Range(-parameter, parameter))
		}
	}
	return m
}

// AcceptableBasis reports whether m can serve as a private basis: square, nonsingular and
// with Hadamard ratio strictly above lattice.OrthogonalityThreshold.
func AcceptableBasis(m *lattice.IntMatrix) bool {
	return lattice.ExceedsHadamardRatio(m, lattice.OrthogonalityThreshold)
}

// BasisStats describes a GoodBasis run.
type BasisStats struct {
	Attempts int     // Matrices sampled, including the accepted one
	Ratio    float64 // Hadamard ratio of the accepted basis
}

// GoodBasis samples random bases until one has Hadamard ratio above 0.95.
// Near-orthogonal random bases become rarer as size grows, so the loop is bounded by
// maxAttempts and fails with ErrBasisAttemptsExceeded.
func GoodBasis(size int, parameter int64, src utils.Source, maxAttempts int) (*lattice.IntMatrix, error) {
	basis, _, err := GoodBasisStats(size, parameter, src, maxAttempts)
	return basis, err
}

// GoodBasisStats is GoodBasis that also reports how many matrices were sampled.
func GoodBasisStats(size int, parameter int64, src utils.Source, maxAttempts int) (*lattice.IntMatrix, BasisStats, error) {
	if err := utils.CheckPositive(size, "size"); err != nil {
		return nil, BasisStats{}, err
	}
	if parameter <= 0 {
		return nil, BasisStats{}, fmt.Errorf("basis parameter must be positive, got %d", parameter)
	}
	if err := utils.CheckPositive(maxAttempts, "max attempts"); err != nil {
		return nil, BasisStats{}, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		basis := RandomBasis(size, parameter, src)
		if AcceptableBasis(basis) {
			return basis, BasisStats{Attempts: attempt, Ratio: lattice.ExactHadamardRatio(basis)}, nil
		}
		basis.Zero()
	}
	return nil, BasisStats{Attempts: maxAttempts}, fmt.Errorf("%w: %d attempts for size %d", ErrBasisAttemptsExceeded, maxAttempts, size)
}
