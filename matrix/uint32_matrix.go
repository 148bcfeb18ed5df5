package matrix

// Uint32Matrix is a dense count table stored row major: element [r, c]
// lives at data[r*ncol+c]. Either dimension may be zero, e.g. the
// partition counts of a tree without partitions.
type Uint32Matrix struct {
	nrow uint32
	ncol uint32
	data []uint32
}

func NewUint32Matrix(r, c uint32) *Uint32Matrix {
	return &Uint32Matrix{nrow: r, ncol: c, data: make([]uint32, r*c)}
}

func (m *Uint32Matrix) Shape() (uint32, uint32) {
	return m.nrow, m.ncol
}

// offset of [r, c] in data, panics outside the shape
func (m *Uint32Matrix) offset(r, c uint32) uint32 {
	if r >= m.nrow || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	return r*m.ncol + c
}

func (m *Uint32Matrix) Get(r, c uint32) uint32 {
	return m.data[m.offset(r, c)]
}

// Row returns the r-th row as a view on the underlying storage,
// writes through the returned slice modify the matrix
func (m *Uint32Matrix) Row(r uint32) []uint32 {
	if r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol : (r+1)*m.ncol]
}

// GetRow copies the r-th row, never nil
func (m *Uint32Matrix) GetRow(r uint32) []uint32 {
	row := make([]uint32, m.ncol)
	copy(row, m.Row(r))
	return row
}

// GetCol copies the c-th column
func (m *Uint32Matrix) GetCol(c uint32) []uint32 {
	if c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	col := make([]uint32, m.nrow)
	for r := range col {
		col[r] = m.data[uint32(r)*m.ncol+c]
	}
	return col
}

func (m *Uint32Matrix) Set(r, c uint32, val uint32) {
	m.data[m.offset(r, c)] = val
}

func (m *Uint32Matrix) Incr(r, c uint32, val uint32) {
	m.data[m.offset(r, c)] += val
}

// Decr panics with ErrNegativeCount instead of wrapping below zero
func (m *Uint32Matrix) Decr(r, c uint32, val uint32) {
	i := m.offset(r, c)
	if m.data[i] < val {
		panic(ErrNegativeCount)
	}
	m.data[i] -= val
}

// Sum returns the total of all elements
func (m *Uint32Matrix) Sum() uint64 {
	sum := uint64(0)
	for _, v := range m.data {
		sum += uint64(v)
	}
	return sum
}

// Equal reports whether both matrices have the same shape and elements
func (m *Uint32Matrix) Equal(o *Uint32Matrix) bool {
	if m.nrow != o.nrow || m.ncol != o.ncol {
		return false
	}
	for i, v := range m.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the matrix
func (m *Uint32Matrix) Clone() *Uint32Matrix {
	c := NewUint32Matrix(m.nrow, m.ncol)
	copy(c.data, m.data)
	return c
}
