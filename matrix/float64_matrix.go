package matrix

import (
	"github.com/hakobayato/ldadf/util"
)

// internal Float64 matrix representation, used for the dense
// probability tables phi and theta
type Float64Matrix struct {
	nrow uint32
	ncol uint32
	data []float64
}

// NewFloat64Matrix creates a new Float64Matrix with r rows and c columns
func NewFloat64Matrix(r, c uint32) *Float64Matrix {
	return &Float64Matrix{
		nrow: r,
		ncol: c,
		data: make([]float64, r*c),
	}
}

// get the shape of the matrix
func (m *Float64Matrix) Shape() (uint32, uint32) {
	return m.nrow, m.ncol
}

// get the [r, c]-th element of the matrix
func (m *Float64Matrix) Get(r, c uint32) float64 {
	if r >= m.nrow || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol+c]
}

// set val to the [r, c]-th element of the matrix
func (m *Float64Matrix) Set(r, c uint32, val float64) {
	if r >= m.nrow || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	m.data[r*m.ncol+c] = val
}

// Row returns the r-th row as a view on the underlying storage
func (m *Float64Matrix) Row(r uint32) []float64 {
	if r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol : (r+1)*m.ncol]
}

// NormalizeRows rescales every row to sum to one. It reports whether
// some row had zero mass and was replaced by the uniform distribution.
func (m *Float64Matrix) NormalizeRows() bool {
	degenerate := false
	for r := uint32(0); r < m.nrow; r += 1 {
		if !util.Normalize(m.Row(r)) {
			degenerate = true
		}
	}
	return degenerate
}

// Transpose returns a new matrix with rows and columns swapped
func (m *Float64Matrix) Transpose() *Float64Matrix {
	t := NewFloat64Matrix(m.ncol, m.nrow)
	for r := uint32(0); r < m.nrow; r += 1 {
		for c := uint32(0); c < m.ncol; c += 1 {
			t.data[c*m.nrow+r] = m.data[r*m.ncol+c]
		}
	}
	return t
}
