package matrix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteFloat64 writes m as whitespace delimited rows
func WriteFloat64(w io.Writer, m *Float64Matrix) error {
	out := bufio.NewWriter(w)
	buf := make([]byte, 0, 32)
	for r := uint32(0); r < m.nrow; r += 1 {
		for c, val := range m.Row(r) {
			if c > 0 {
				out.WriteByte(' ')
			}
			buf = strconv.AppendFloat(buf[:0], val, 'g', -1, 64)
			out.Write(buf)
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}

// WriteUint32 writes m as whitespace delimited rows
func WriteUint32(w io.Writer, m *Uint32Matrix) error {
	out := bufio.NewWriter(w)
	buf := make([]byte, 0, 16)
	for r := uint32(0); r < m.nrow; r += 1 {
		for c, val := range m.Row(r) {
			if c > 0 {
				out.WriteByte(' ')
			}
			buf = strconv.AppendUint(buf[:0], uint64(val), 10)
			out.Write(buf)
		}
		out.WriteByte('\n')
	}
	return out.Flush()
}

// serialize float matrix to file
func Float64Serialize(m *Float64Matrix, fn string) error {
	out, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := WriteFloat64(out, m); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return out.Close()
}

// serialize count matrix to file
func Uint32Serialize(m *Uint32Matrix, fn string) error {
	out, err := os.Create(fn)
	if err != nil {
		return err
	}
	if err := WriteUint32(out, m); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return out.Close()
}

// ReadFloat64 parses whitespace delimited rows, blank lines are skipped
// and every row must have the same number of columns
func ReadFloat64(r io.Reader) (*Float64Matrix, error) {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx += 1
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			val, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineIdx, err)
			}
			row[i] = val
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("line %d: %w: %d columns, want %d",
				lineIdx, ErrBadShape, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return NewFloat64Matrix(0, 0), nil
	}
	m := NewFloat64Matrix(uint32(len(rows)), uint32(len(rows[0])))
	for r, row := range rows {
		copy(m.Row(uint32(r)), row)
	}
	return m, nil
}

// deserialize float matrix from file
func Float64Deserialize(fn string) (*Float64Matrix, error) {
	file, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	m, err := ReadFloat64(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return m, nil
}
