package lattice

import (
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/mat"
)

// ClosestVector approximates the lattice vector closest to target with Babai's rounding
// algorithm: decompose target in the basis, round every coordinate to the nearest integer
// and recombine the basis columns with the rounded coefficients.
//
// The answer is only reliable on near-orthogonal bases, so a basis whose Hadamard ratio is
// at most OrthogonalityThreshold is refused with ErrIllConditionedBasis. A singular basis
// yields ErrSingularBasis.
func ClosestVector(basis mat.Matrix, target []float64) ([]float64, error) {
	coords, err := Decompose(target, basis)
	if err != nil {
		return nil, err
	}
	if HadamardRatio(basis) <= OrthogonalityThreshold {
		return nil, ErrIllConditionedBasis
	}

	n := len(coords)
	closest := mat.NewVecDense(n, nil)
	col := make([]float64, n)
	for i, c := range coords {
		mat.Col(col, i, basis)
		closest.AddScaledVec(closest, math.Round(c), mat.NewVecDense(n, col))
	}
	return closest.RawVector().Data, nil
}

// ClosestLatticePoint is ClosestVector for integer bases with every step done exactly:
// target is decomposed over the rationals, the orthogonality gate compares integers and
// the lattice point is accumulated in arbitrary precision. Decryption relies on this path
// because ciphertext coordinates can approach the limit of float64 precision.
func ClosestLatticePoint(basis *IntMatrix, target []float64) ([]*big.Int, error) {
	rats, err := ratsFromFloats(target)
	if err != nil {
		return nil, err
	}
	coords, err := SolveRational(basis, rats)
	if err != nil {
		return nil, err
	}
	if !ExceedsHadamardRatio(basis, OrthogonalityThreshold) {
		return nil, ErrIllConditionedBasis
	}

	n := len(coords)
	point := make([]*big.Int, n)
	for r := range point {
		point[r] = new(big.Int)
	}
	tmp := new(big.Int)
	for i, c := range coords {
		k := RoundRat(c)
		if k.Sign() == 0 {
			continue
		}
		for r := 0; r < n; r++ {
			point[r].Add(point[r], tmp.Mul(k, basis.at(r, i)))
		}
	}
	return point, nil
}

// Coordinates returns the exact coordinates of an integer vector in an integer basis.
func Coordinates(basis *IntMatrix, vector []*big.Int) ([]*big.Rat, error) {
	rats := make([]*big.Rat, len(vector))
	for i, v := range vector {
		if v == nil {
			return nil, fmt.Errorf("%w: coordinate %d is nil", ErrNonFinite, i)
		}
		rats[i] = new(big.Rat).SetInt(v)
	}
	return SolveRational(basis, rats)
}
