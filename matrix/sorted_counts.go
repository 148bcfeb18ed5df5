package matrix

import "math/bits"

// SortedCounts keeps the nonzero counts of every row sorted by count in
// descending order. Each entry is a uint64 whose lower k bits hold the
// column, k being the minimum number of bits needed for the largest
// column, and whose upper bits hold the count.
type SortedCounts struct {
	nrow      uint32
	ncol      uint32
	rotateLen uint32
	colMask   uint64
	data      [][]uint64
}

var _ Matrix = (*SortedCounts)(nil)

func NewSortedCounts(r, c uint32) *SortedCounts {
	rotateLen := uint32(bits.Len32(c))
	return &SortedCounts{
		nrow:      r,
		ncol:      c,
		rotateLen: rotateLen,
		colMask:   (uint64(1) << rotateLen) - 1,
		data:      make([][]uint64, r),
	}
}

func (m *SortedCounts) Shape() (uint32, uint32) {
	return m.nrow, m.ncol
}

func (m *SortedCounts) check(r, c uint32) {
	if r >= m.nrow || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
}

// Len is the number of nonzero entries of row r
func (m *SortedCounts) Len(r uint32) int {
	if r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	return len(m.data[r])
}

// Entry returns the column and count of the i-th largest entry of row r
func (m *SortedCounts) Entry(r uint32, i int) (uint32, uint32) {
	if r >= m.nrow || i < 0 || i >= len(m.data[r]) {
		panic(ErrIndexOutOfRange)
	}
	val := m.data[r][i]
	return uint32(val & m.colMask), uint32(val >> m.rotateLen)
}

func (m *SortedCounts) find(r, c uint32) int {
	for i, v := range m.data[r] {
		if uint32(v&m.colMask) == c {
			return i
		}
	}
	return -1
}

func (m *SortedCounts) Get(r, c uint32) uint32 {
	m.check(r, c)
	if i := m.find(r, c); i >= 0 {
		_, count := m.Entry(r, i)
		return count
	}
	return 0
}

func (m *SortedCounts) Set(r, c uint32, val uint32) {
	if old := m.Get(r, c); old < val {
		m.Incr(r, c, val-old)
	} else if old > val {
		m.Decr(r, c, old-val)
	}
}

func (m *SortedCounts) Incr(r, c uint32, val uint32) {
	m.check(r, c)
	if val == 0 {
		return
	}
	row := m.data[r]
	i := m.find(r, c)
	if i < 0 {
		row = append(row, uint64(val)<<m.rotateLen|uint64(c))
		i = len(row) - 1
	} else {
		row[i] += uint64(val) << m.rotateLen
	}
	// bubble the grown entry towards the front
	for ; i > 0 && row[i] > row[i-1]; i -= 1 {
		row[i], row[i-1] = row[i-1], row[i]
	}
	m.data[r] = row
}

func (m *SortedCounts) Decr(r, c uint32, val uint32) {
	m.check(r, c)
	if val == 0 {
		return
	}
	row := m.data[r]
	i := m.find(r, c)
	if i < 0 {
		panic(ErrNegativeCount)
	}
	_, count := m.Entry(r, i)
	if val > count {
		panic(ErrNegativeCount)
	}
	if val == count {
		// drop the entry, smaller ones move forward
		m.data[r] = append(row[:i], row[i+1:]...)
		return
	}
	row[i] -= uint64(val) << m.rotateLen
	// bubble the shrunk entry towards the back
	for ; i < len(row)-1 && row[i] < row[i+1]; i += 1 {
		row[i], row[i+1] = row[i+1], row[i]
	}
}

func (m *SortedCounts) GetRow(r uint32) []uint32 {
	if r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	row := make([]uint32, m.ncol)
	for i := range m.data[r] {
		c, count := m.Entry(r, i)
		row[c] = count
	}
	return row
}

func (m *SortedCounts) GetCol(c uint32) []uint32 {
	if c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	col := make([]uint32, m.nrow)
	for r := uint32(0); r < m.nrow; r += 1 {
		col[r] = m.Get(r, c)
	}
	return col
}

// Dense copies the counts into a Uint32Matrix
func (m *SortedCounts) Dense() *Uint32Matrix {
	d := NewUint32Matrix(m.nrow, m.ncol)
	for r := uint32(0); r < m.nrow; r += 1 {
		copy(d.Row(r), m.GetRow(r))
	}
	return d
}
