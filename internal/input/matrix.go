// internal/input/matrix.go
package input

// Output is a driven line.
type Output interface {
	Set(high bool)
}

// Matrix scans a key matrix with pulled-up rows: one column is driven low
// at a time and a row reading low means the key at that crossing is down.
// Key k sits at row k/cols, column k%cols.
type Matrix struct {
	rows []Line
	cols []Output
	keys []bool
}

// NewMatrix parks every column high.
func NewMatrix(rows []Line, cols []Output) *Matrix {
	for _, c := range cols {
		c.Set(true)
	}
	return &Matrix{rows: rows, cols: cols, keys: make([]bool, len(rows)*len(cols))}
}

// Scan samples every key once.
func (m *Matrix) Scan() {
	n := len(m.cols)
	for c, col := range m.cols {
		col.Set(false)
		for r, row := range m.rows {
			m.keys[r*n+c] = !row.Get()
		}
		col.Set(true)
	}
}

// Keys returns one Line per key reporting the last Scan, true = down.
func (m *Matrix) Keys() []Line {
	out := make([]Line, len(m.keys))
	for i := range m.keys {
		out[i] = matrixKey{m: m, k: i}
	}
	return out
}

type matrixKey struct {
	m *Matrix
	k int
}

func (k matrixKey) Get() bool { return k.m.keys[k.k] }
