package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat64MatrixGet(t *testing.T) {
	m := NewFloat64Matrix(uint32(2), uint32(3))

	val := 0.0
	for r := 0; r < 2; r += 1 {
		for c := 0; c < 3; c += 1 {
			m.Set(uint32(r), uint32(c), val)
			val += 1.0
		}
	}

	assert.Equal(t, 0.0, m.Get(0, 0))
	assert.Equal(t, 5.0, m.Get(1, 2))
	assert.Equal(t, []float64{3, 4, 5}, m.Row(1))

	tr := m.Transpose()
	r, c := tr.Shape()
	assert.Equal(t, uint32(3), r)
	assert.Equal(t, uint32(2), c)
	assert.Equal(t, 4.0, tr.Get(1, 1))
	assert.Equal(t, 2.0, tr.Get(2, 0))
}

func TestFloat64MatrixNormalizeRows(t *testing.T) {
	m := NewFloat64Matrix(uint32(2), uint32(2))
	m.Set(0, 0, 1)
	m.Set(0, 1, 3)

	degenerate := m.NormalizeRows()

	assert.True(t, degenerate)
	assert.InDelta(t, 0.25, m.Get(0, 0), 1e-12)
	assert.InDelta(t, 0.75, m.Get(0, 1), 1e-12)
	assert.InDelta(t, 0.5, m.Get(1, 0), 1e-12)
	assert.InDelta(t, 0.5, m.Get(1, 1), 1e-12)
}
