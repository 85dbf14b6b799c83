package lattice

import (
	"math"
	"math/big"
	"strconv"

	"github.com/ALTree/bigfloat"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// OrthogonalityThreshold is the Hadamard ratio a basis must exceed to be used for decoding.
const OrthogonalityThreshold = 0.95

// ratioPrec is the working precision of ExactHadamardRatio.
const ratioPrec = 256

// HadamardRatio returns (|det(basis)| / prod ||column_i||)^(1/n).
// The value lies in [0, 1]; it is 1 exactly when the columns are pairwise orthogonal
// and 0 for singular or non-square matrices. Logarithms keep large bases from overflowing.
func HadamardRatio(basis mat.Matrix) float64 {
	n, c := basis.Dims()
	if n != c || n == 0 {
		return 0
	}
	logDet, sign := mat.LogDet(basis)
	if sign == 0 || math.IsInf(logDet, -1) || math.IsNaN(logDet) {
		return 0
	}

	norms := ColumnNorms(basis)
	logNorms := make([]float64, n)
	for i, norm := range norms {
		logNorms[i] = math.Log(norm)
	}

	r := math.Exp((logDet - floats.Sum(logNorms)) / float64(n))
	return math.Min(r, 1)
}

// ExactHadamardRatio computes the Hadamard ratio of an integer basis from its exact
// determinant and exact squared column norms:
//
//	ratio = (det^2 / prod ||column_i||^2)^(1/(2n))
//
// Only the final root is approximated, at 256 bits of precision.
func ExactHadamardRatio(m *IntMatrix) float64 {
	n, c := m.Dims()
	if n != c || n == 0 {
		return 0
	}
	det := m.Det()
	if det.Sign() == 0 {
		return 0
	}

	num := new(big.Int).Mul(det, det)
	den := big.NewInt(1)
	for j := 0; j < n; j++ {
		den.Mul(den, m.ColumnNormSquared(j))
	}

	q := new(big.Float).SetPrec(ratioPrec).SetInt(num)
	q.Quo(q, new(big.Float).SetPrec(ratioPrec).SetInt(den))

	exp := new(big.Float).SetPrec(ratioPrec).SetInt64(1)
	exp.Quo(exp, new(big.Float).SetPrec(ratioPrec).SetInt64(int64(2*n)))

	r, _ := bigfloat.Pow(q, exp).Float64()
	return math.Min(r, 1)
}

// ExceedsHadamardRatio reports whether the Hadamard ratio of m is strictly greater than
// threshold. Writing threshold = p/q as an exact fraction of its decimal form, the test is
//
//	det^2 * q^(2n) > p^(2n) * prod ||column_i||^2
//
// which involves integers only, so a basis sitting on the threshold is never misjudged.
func ExceedsHadamardRatio(m *IntMatrix, threshold float64) bool {
	n, c := m.Dims()
	if n != c || n == 0 {
		return false
	}
	det := m.Det()
	switch {
	case threshold < 0:
		return true
	case threshold == 0:
		return det.Sign() != 0
	case threshold >= 1:
		return false
	}
	if det.Sign() == 0 {
		return false
	}

	t, ok := new(big.Rat).SetString(strconv.FormatFloat(threshold, 'g', -1, 64))
	if !ok {
		return false
	}
	e := big.NewInt(int64(2 * n))

	lhs := new(big.Int).Mul(det, det)
	lhs.Mul(lhs, new(big.Int).Exp(t.Denom(), e, nil))

	rhs := new(big.Int).Exp(t.Num(), e, nil)
	for j := 0; j < n; j++ {
		rhs.Mul(rhs, m.ColumnNormSquared(j))
	}
	return lhs.Cmp(rhs) > 0
}
