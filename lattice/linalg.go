package lattice

import (
	"errors"
	"fmt"
	"math/big"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingularBasis indicates the basis has no inverse, so vectors cannot be decomposed in it.
	ErrSingularBasis = errors.New("singular basis")

	// ErrIllConditionedBasis indicates the basis is not orthogonal enough for Babai rounding.
	ErrIllConditionedBasis = errors.New("basis not orthogonal enough")

	// ErrDimensionMismatch indicates a vector or matrix shape does not match the basis.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrNonInteger indicates a matrix entry that is not an exactly representable integer.
	ErrNonInteger = errors.New("non-integer entry")

	// ErrNonFinite indicates a NaN or infinite vector coordinate.
	ErrNonFinite = errors.New("non-finite coordinate")
)

// checkSquare verifies the basis is a non-empty square matrix of dimension want.
func checkSquare(basis mat.Matrix, want int) (int, error) {
	r, c := basis.Dims()
	if r != c || r == 0 {
		return 0, fmt.Errorf("%w: basis is %dx%d", ErrDimensionMismatch, r, c)
	}
	if r != want {
		return 0, fmt.Errorf("%w: vector has %d coordinates, basis dimension is %d", ErrDimensionMismatch, want, r)
	}
	return r, nil
}

// Decompose solves basis*x = vector for the coordinates x of vector with respect to the
// columns of basis, using LU factorization with partial pivoting. It returns
// ErrSingularBasis when the basis is singular or too close to singular for the solver.
func Decompose(vector []float64, basis mat.Matrix) ([]float64, error) {
	n, err := checkSquare(basis, len(vector))
	if err != nil {
		return nil, err
	}

	var lu mat.LU
	lu.Factorize(basis)
	if lu.Det() == 0 {
		return nil, ErrSingularBasis
	}

	x := mat.NewVecDense(n, nil)
	b := mat.NewVecDense(n, append([]float64(nil), vector...))
	if err := lu.SolveVecTo(x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularBasis, err)
	}
	return x.RawVector().Data, nil
}

// Det returns the floating-point determinant of basis.
func Det(basis mat.Matrix) float64 {
	return mat.Det(basis)
}

// ColumnNorms returns the Euclidean norm of every column of basis.
func ColumnNorms(basis mat.Matrix) []float64 {
	r, c := basis.Dims()
	norms := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, basis)
		norms[j] = floats.Norm(col, 2)
	}
	return norms
}

// SolveRational solves basis*x = target exactly over the rationals by Gaussian elimination.
func SolveRational(basis *IntMatrix, target []*big.Rat) ([]*big.Rat, error) {
	n, c := basis.Dims()
	if n != c || n == 0 {
		return nil, fmt.Errorf("%w: basis is %dx%d", ErrDimensionMismatch, n, c)
	}
	if len(target) != n {
		return nil, fmt.Errorf("%w: vector has %d coordinates, basis dimension is %d", ErrDimensionMismatch, len(target), n)
	}

	// Augmented matrix [basis | target].
	a := make([][]*big.Rat, n)
	for i := range a {
		a[i] = make([]*big.Rat, n+1)
		for j := 0; j < n; j++ {
			a[i][j] = new(big.Rat).SetInt(basis.at(i, j))
		}
		a[i][n] = new(big.Rat).Set(target[i])
	}

	tmp := new(big.Rat)
	for k := 0; k < n; k++ {
		pivot := -1
		for i := k; i < n; i++ {
			if a[i][k].Sign() != 0 {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			return nil, ErrSingularBasis
		}
		a[k], a[pivot] = a[pivot], a[k]

		for i := k + 1; i < n; i++ {
			if a[i][k].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Quo(a[i][k], a[k][k])
			for j := k; j <= n; j++ {
				a[i][j].Sub(a[i][j], tmp.Mul(factor, a[k][j]))
			}
		}
	}

	x := make([]*big.Rat, n)
	for i := n - 1; i >= 0; i-- {
		sum := new(big.Rat).Set(a[i][n])
		for j := i + 1; j < n; j++ {
			sum.Sub(sum, tmp.Mul(a[i][j], x[j]))
		}
		x[i] = sum.Quo(sum, a[i][i])
	}
	return x, nil
}

// RoundRat returns the integer nearest to x, rounding halves away from zero like math.Round.
func RoundRat(x *big.Rat) *big.Int {
	// floor((2*|num| + den) / (2*den)), then restore the sign. big.Rat keeps den > 0.
	num := new(big.Int).Abs(x.Num())
	num.Lsh(num, 1)
	num.Add(num, x.Denom())
	den := new(big.Int).Lsh(x.Denom(), 1)
	num.Quo(num, den)
	if x.Sign() < 0 {
		num.Neg(num)
	}
	return num
}

// ratsFromFloats converts finite float64 coordinates to exact rationals.
func ratsFromFloats(v []float64) ([]*big.Rat, error) {
	out := make([]*big.Rat, len(v))
	for i, x := range v {
		r := new(big.Rat).SetFloat64(x)
		if r == nil {
			return nil, fmt.Errorf("%w: coordinate %d = %v", ErrNonFinite, i, x)
		}
		out[i] = r
	}
	return out, nil
}
