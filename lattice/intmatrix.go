// Package lattice implements the linear algebra behind GGH: exact integer matrices,
// floating-point decomposition, the Hadamard ratio and Babai's rounding decoder.
package lattice

import (
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/mat"

	"github.com/BackendStack21/ggh-go/utils"
)

// IntMatrix is a dense matrix of arbitrary-precision integers stored in row-major order.
// Bases and unimodular matrices are integer-valued, so their determinants and products are
// computed here without rounding and converted to float64 only for display and decoding.
type IntMatrix struct {
	rows, cols int
	data       []*big.Int
}

// NewIntMatrix returns a zero rows x cols matrix. It panics if the shape is negative or
// exceeds utils.MaxMatrixElements.
func NewIntMatrix(rows, cols int) *IntMatrix {
	size, err := utils.SafeMultiply(rows, cols)
	if err != nil || size > utils.MaxMatrixElements {
		panic(fmt.Sprintf("lattice: invalid matrix shape %dx%d", rows, cols))
	}
	data := make([]*big.Int, size)
	for i := range data {
		data[i] = new(big.Int)
	}
	return &IntMatrix{rows: rows, cols: cols, data: data}
}

// IntMatrixFromInt64 builds a matrix from row-major data. It panics if len(data) != rows*cols.
func IntMatrixFromInt64(rows, cols int, data []int64) *IntMatrix {
	m := NewIntMatrix(rows, cols)
	if len(data) != len(m.data) {
		panic(mat.ErrShape)
	}
	for i, v := range data {
		m.data[i].SetInt64(v)
	}
	return m
}

// IntMatrixFromDense converts a float matrix whose entries are all exact integers.
func IntMatrixFromDense(a mat.Matrix) (*IntMatrix, error) {
	r, c := a.Dims()
	m := NewIntMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			if !utils.IsExactInteger(v) {
				return nil, fmt.Errorf("%w: entry (%d, %d) = %v", ErrNonInteger, i, j, v)
			}
			new(big.Float).SetFloat64(v).Int(m.at(i, j))
		}
	}
	return m, nil
}

// Identity returns the n x n identity matrix.
func Identity(n int) *IntMatrix {
	m := NewIntMatrix(n, n)
	for i := 0; i < n; i++ {
		m.at(i, i).SetInt64(1)
	}
	return m
}

func (m *IntMatrix) at(i, j int) *big.Int {
	return m.data[i*m.cols+j]
}

// Dims returns the number of rows and columns.
func (m *IntMatrix) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns a copy of the entry at (i, j).
func (m *IntMatrix) At(i, j int) *big.Int {
	return new(big.Int).Set(m.at(i, j))
}

// Set stores a copy of v at (i, j).
func (m *IntMatrix) Set(i, j int, v *big.Int) {
	m.at(i, j).Set(v)
}

// SetInt64 stores v at (i, j).
func (m *IntMatrix) SetInt64(i, j int, v int64) {
	m.at(i, j).SetInt64(v)
}

// Clone returns a deep copy of m.
func (m *IntMatrix) Clone() *IntMatrix {
	c := NewIntMatrix(m.rows, m.cols)
	for i, v := range m.data {
		c.data[i].Set(v)
	}
	return c
}

// Equal reports whether m and o have the same shape and entries.
func (m *IntMatrix) Equal(o *IntMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i].Cmp(o.data[i]) != 0 {
			return false
		}
	}
	return true
}

// Column returns a copy of column j.
func (m *IntMatrix) Column(j int) []*big.Int {
	col := make([]*big.Int, m.rows)
	for i := range col {
		col[i] = new(big.Int).Set(m.at(i, j))
	}
	return col
}

// ColumnNormSquared returns the squared Euclidean norm of column j.
func (m *IntMatrix) ColumnNormSquared(j int) *big.Int {
	sum := new(big.Int)
	sq := new(big.Int)
	for i := 0; i < m.rows; i++ {
		v := m.at(i, j)
		sum.Add(sum, sq.Mul(v, v))
	}
	return sum
}

// SwapRows exchanges rows i and j.
func (m *IntMatrix) SwapRows(i, j int) {
	if i == j {
		return
	}
	for c := 0; c < m.cols; c++ {
		a, b := i*m.cols+c, j*m.cols+c
		m.data[a], m.data[b] = m.data[b], m.data[a]
	}
}

// SwapCols exchanges columns i and j.
func (m *IntMatrix) SwapCols(i, j int) {
	if i == j {
		return
	}
	for r := 0; r < m.rows; r++ {
		a, b := r*m.cols+i, r*m.cols+j
		m.data[a], m.data[b] = m.data[b], m.data[a]
	}
}

// NegateRow multiplies row i by -1.
func (m *IntMatrix) NegateRow(i int) {
	for c := 0; c < m.cols; c++ {
		v := m.at(i, c)
		v.Neg(v)
	}
}

// AddRowMultiple replaces row target by row target + mult*row source.
// It panics if target == source, which would not preserve the determinant.
func (m *IntMatrix) AddRowMultiple(target, source int, mult int64) {
	if target == source {
		panic("lattice: AddRowMultiple with target == source")
	}
	k := big.NewInt(mult)
	tmp := new(big.Int)
	for c := 0; c < m.cols; c++ {
		t := m.at(target, c)
		t.Add(t, tmp.Mul(k, m.at(source, c)))
	}
}

// Mul returns the product a*b. It panics with mat.ErrShape if the inner dimensions differ.
func Mul(a, b *IntMatrix) *IntMatrix {
	if a.cols != b.rows {
		panic(mat.ErrShape)
	}
	out := NewIntMatrix(a.rows, b.cols)
	tmp := new(big.Int)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			sum := out.at(i, j)
			for k := 0; k < a.cols; k++ {
				sum.Add(sum, tmp.Mul(a.at(i, k), b.at(k, j)))
			}
		}
	}
	return out
}

// Det returns the exact determinant using fraction-free (Bareiss) elimination.
// It panics with mat.ErrSquare for non-square matrices.
func (m *IntMatrix) Det() *big.Int {
	if m.rows != m.cols {
		panic(mat.ErrSquare)
	}
	n := m.rows
	if n == 0 {
		return big.NewInt(1)
	}

	a := make([][]*big.Int, n)
	for i := range a {
		a[i] = make([]*big.Int, n)
		for j := range a[i] {
			a[i][j] = new(big.Int).Set(m.at(i, j))
		}
	}

	negate := false
	prev := big.NewInt(1)
	tmp := new(big.Int)
	for k := 0; k < n-1; k++ {
		if a[k][k].Sign() == 0 {
			pivot := -1
			for i := k + 1; i < n; i++ {
				if a[i][k].Sign() != 0 {
					pivot = i
					break
				}
			}
			if pivot < 0 {
				return new(big.Int)
			}
			a[k], a[pivot] = a[pivot], a[k]
			negate = !negate
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				// a[i][j] = (a[i][j]*a[k][k] - a[i][k]*a[k][j]) / prev, exact by Sylvester's identity.
				v := new(big.Int).Mul(a[i][j], a[k][k])
				v.Sub(v, tmp.Mul(a[i][k], a[k][j]))
				a[i][j] = v.Quo(v, prev)
			}
		}
		prev = a[k][k]
	}

	det := new(big.Int).Set(a[n-1][n-1])
	if negate {
		det.Neg(det)
	}
	return det
}

// IsUnimodular reports whether m is square with determinant exactly +1 or -1.
func (m *IntMatrix) IsUnimodular() bool {
	if m.rows != m.cols {
		return false
	}
	return m.Det().CmpAbs(big.NewInt(1)) == 0
}

// MaxBitLen returns the largest bit length among the absolute values of the entries.
func (m *IntMatrix) MaxBitLen() int {
	var bits int
	for _, v := range m.data {
		if b := v.BitLen(); b > bits {
			bits = b
		}
	}
	return bits
}

// Dense returns a float64 copy of m. Entries wider than 53 bits are rounded to the
// nearest float64; callers that need exactness check MaxBitLen first.
func (m *IntMatrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		f, _ := new(big.Float).SetInt(v).Float64()
		if math.IsInf(f, 0) {
			f = math.Copysign(math.MaxFloat64, f)
		}
		data[i] = f
	}
	return mat.NewDense(m.rows, m.cols, data)
}

// Zero overwrites every entry with zero.
func (m *IntMatrix) Zero() {
	utils.ZeroizeBigInts(m.data)
}
