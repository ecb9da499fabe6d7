package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// CorrelationMatrix holds a symmetric Pearson correlation matrix across numeric columns.
// Pairs without enough paired observations, or with a constant side, are NaN.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Get returns the coefficient for two column names.
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ia = i
		}
		if c == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return m.Values[ia][ib], true
}

// Empty reports whether the matrix has no columns.
func (m *CorrelationMatrix) Empty() bool { return m == nil || len(m.Columns) == 0 }

// Correlate computes Pearson coefficients between every pair of numeric
// columns using pairwise-complete rows. With fewer than two numeric columns the
// matrix is empty.
func Correlate(ds *dataset.Dataset) *CorrelationMatrix {
	idx := numericColumns(ds)
	if len(idx) < 2 {
		return &CorrelationMatrix{Columns: []string{}, Values: [][]float64{}}
	}
	n := len(idx)
	// parsed[k][row]; NaN marks absent cells
	parsed := make([][]float64, n)
	names := make([]string, n)
	for k, ci := range idx {
		c := &ds.Columns[ci]
		names[k] = c.Name
		col := make([]float64, len(c.Values))
		for r, v := range c.Values {
			if x, ok := ds.Float(v); ok {
				col[r] = x
			} else {
				col[r] = math.NaN()
			}
		}
		parsed[k] = col
	}

	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(parsed[a], parsed[b])
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrelationMatrix{Columns: names, Values: mat}
}

func pearson(xs, ys []float64) float64 {
	var x, y []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		x = append(x, xs[i])
		y = append(y, ys[i])
	}
	if len(x) < 2 || stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
