package lattice

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestIntMatrixFromDense_Coverage(t *testing.T) {
	d := mat.NewDense(2, 2, []float64{3, -1, 0, 4})
	m, err := IntMatrixFromDense(d)
	if err != nil {
		t.Fatal(err)
	}
	if m.At(0, 1).Int64() != -1 || m.At(1, 1).Int64() != 4 {
		t.Error("entries not converted")
	}
	if !mat.Equal(d, m.Dense()) {
		t.Error("round trip through Dense changed entries")
	}
}

func TestIntMatrixFromDense_NonInteger(t *testing.T) {
	_, err := IntMatrixFromDense(mat.NewDense(1, 2, []float64{1, 0.5}))
	if !errors.Is(err, ErrNonInteger) {
		t.Errorf("expected ErrNonInteger, got %v", err)
	}
	_, err = IntMatrixFromDense(mat.NewDense(1, 1, []float64{1 << 60}))
	if !errors.Is(err, ErrNonInteger) {
		t.Errorf("expected ErrNonInteger for entry beyond 2^53, got %v", err)
	}
}

func TestIntMatrixFromInt64_Panic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for wrong data length")
		}
	}()
	IntMatrixFromInt64(2, 2, []int64{1, 2, 3})
}

func TestNewIntMatrix_TooLarge(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized matrix")
		}
	}()
	NewIntMatrix(1000, 1000)
}

func TestIntMatrix_CloneIsIndependent(t *testing.T) {
	m := IntMatrixFromInt64(2, 2, []int64{1, 2, 3, 4})
	c := m.Clone()
	c.SetInt64(0, 0, 99)
	if m.At(0, 0).Int64() != 1 {
		t.Error("Clone shares storage")
	}
	if m.Equal(c) {
		t.Error("Equal should see the changed entry")
	}
	if m.Equal(NewIntMatrix(2, 3)) {
		t.Error("Equal should compare shapes")
	}
}

func TestIntMatrix_AtReturnsCopy(t *testing.T) {
	m := Identity(2)
	v := m.At(0, 0)
	v.SetInt64(5)
	if m.At(0, 0).Int64() != 1 {
		t.Error("At exposed internal storage")
	}

	col := m.Column(1)
	col[1].SetInt64(7)
	if m.At(1, 1).Int64() != 1 {
		t.Error("Column exposed internal storage")
	}
}

func TestIntMatrix_RowOps(t *testing.T) {
	m := IntMatrixFromInt64(2, 3, []int64{1, 2, 3, 4, 5, 6})

	m.SwapRows(0, 1)
	if !m.Equal(IntMatrixFromInt64(2, 3, []int64{4, 5, 6, 1, 2, 3})) {
		t.Error("SwapRows")
	}
	m.SwapCols(0, 2)
	if !m.Equal(IntMatrixFromInt64(2, 3, []int64{6, 5, 4, 3, 2, 1})) {
		t.Error("SwapCols")
	}
	m.NegateRow(1)
	if !m.Equal(IntMatrixFromInt64(2, 3, []int64{6, 5, 4, -3, -2, -1})) {
		t.Error("NegateRow")
	}
	m.AddRowMultiple(0, 1, 2)
	if !m.Equal(IntMatrixFromInt64(2, 3, []int64{0, 1, 2, -3, -2, -1})) {
		t.Error("AddRowMultiple")
	}

	m.SwapRows(1, 1)
	m.SwapCols(2, 2)
	if !m.Equal(IntMatrixFromInt64(2, 3, []int64{0, 1, 2, -3, -2, -1})) {
		t.Error("self swaps should be no-ops")
	}
}

func TestIntMatrix_RowOpsPreserveUnimodularity(t *testing.T) {
	m := Identity(3)
	m.SwapRows(0, 2)
	m.NegateRow(1)
	m.AddRowMultiple(2, 0, 15)
	m.SwapCols(1, 2)
	if !m.IsUnimodular() {
		t.Errorf("det = %s", m.Det())
	}
}

func TestAddRowMultiple_SameRowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for target == source")
		}
	}()
	Identity(2).AddRowMultiple(1, 1, 3)
}

func TestMul_ShapePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched shapes")
		}
	}()
	Mul(NewIntMatrix(2, 3), NewIntMatrix(2, 3))
}

func TestDet_NonSquarePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-square matrix")
		}
	}()
	NewIntMatrix(2, 3).Det()
}

func TestIntMatrix_IsUnimodular(t *testing.T) {
	if !Identity(3).IsUnimodular() {
		t.Error("identity is unimodular")
	}
	if scaledIdentity(2, 2).IsUnimodular() {
		t.Error("2I has determinant 4")
	}
	if NewIntMatrix(2, 3).IsUnimodular() {
		t.Error("non-square matrices are not unimodular")
	}
}

func TestIntMatrix_MaxBitLen(t *testing.T) {
	m := IntMatrixFromInt64(2, 2, []int64{1, -255, 16, 0})
	if got := m.MaxBitLen(); got != 8 {
		t.Errorf("MaxBitLen = %d, want 8", got)
	}
	if got := NewIntMatrix(2, 2).MaxBitLen(); got != 0 {
		t.Errorf("MaxBitLen of zero matrix = %d", got)
	}
}

func TestIntMatrix_ColumnNormSquared(t *testing.T) {
	m := IntMatrixFromInt64(2, 2, []int64{3, 1, -4, 1})
	if m.ColumnNormSquared(0).Int64() != 25 || m.ColumnNormSquared(1).Int64() != 2 {
		t.Error("ColumnNormSquared")
	}
}

func TestIntMatrix_Zero(t *testing.T) {
	m := IntMatrixFromInt64(2, 2, []int64{7, -8, 9, 10})
	m.Zero()
	if !m.Equal(NewIntMatrix(2, 2)) {
		t.Error("Zero left nonzero entries")
	}
}

func TestIntMatrix_DenseEmpty(t *testing.T) {
	d := NewIntMatrix(0, 0).Dense()
	if r, c := d.Dims(); r != 0 || c != 0 {
		t.Errorf("empty Dense has shape %dx%d", r, c)
	}
	if NewIntMatrix(0, 0).Det().Int64() != 1 {
		t.Error("empty determinant is 1")
	}
}

func TestColumnNorms(t *testing.T) {
	norms := ColumnNorms(mat.NewDense(2, 2, []float64{3, 0, 4, 2}))
	if math.Abs(norms[0]-5) > 1e-12 || math.Abs(norms[1]-2) > 1e-12 {
		t.Errorf("ColumnNorms = %v", norms)
	}
}

func TestSolveRational_DimensionMismatch(t *testing.T) {
	_, err := SolveRational(Identity(2), []*big.Rat{big.NewRat(1, 1)})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	_, err = SolveRational(NewIntMatrix(2, 3), []*big.Rat{big.NewRat(1, 1), big.NewRat(1, 1)})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestExceedsHadamardRatio_NonSquare(t *testing.T) {
	if ExceedsHadamardRatio(NewIntMatrix(2, 3), 0.5) {
		t.Error("non-square matrix cannot exceed any ratio")
	}
}
