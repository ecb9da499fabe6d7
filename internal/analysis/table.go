package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// ColumnSummary holds descriptive statistics of one numeric column.
// Statistics that are undefined for the column are NaN.
type ColumnSummary struct {
	Name  string
	Kind  Kind
	Count int
	Mean  float64
	Std   float64 // sample standard deviation (n-1)
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// CategoricalSummary describes a non-numeric column.
type CategoricalSummary struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"kind"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top,omitempty"`
	Freq   int    `json:"freq"`
}

// Shape returns the row and column counts.
func Shape(ds *dataset.Dataset) (rows, cols int) {
	return ds.NumRows(), ds.NumColumns()
}

// ColumnNames returns the column names in order.
func ColumnNames(ds *dataset.Dataset) []string {
	return ds.Names()
}

// Describe computes count, mean, std, min, quartiles and max for every numeric
// column. Non-numeric columns are skipped; the result is empty, not nil, when
// there are none.
func Describe(ds *dataset.Dataset) []ColumnSummary {
	out := []ColumnSummary{}
	for _, idx := range numericColumns(ds) {
		out = append(out, describeColumn(ds, &ds.Columns[idx]))
	}
	return out
}

// DescribeCategorical summarises non-numeric columns: present count, distinct
// values and the most frequent one.
func DescribeCategorical(ds *dataset.Dataset) []CategoricalSummary {
	out := []CategoricalSummary{}
	for i := range ds.Columns {
		c := &ds.Columns[i]
		kind := inferKind(ds, c)
		if kind == KindNumeric {
			continue
		}
		entries := countValues(c.Present(), nil)
		s := CategoricalSummary{Name: c.Name, Kind: kind, Count: len(c.Values) - c.AbsentCount(), Unique: len(entries)}
		if len(entries) > 0 {
			s.Top = entries[0].Value
			s.Freq = entries[0].Count
		}
		out = append(out, s)
	}
	return out
}

func describeColumn(ds *dataset.Dataset, c *dataset.Column) ColumnSummary {
	vals := floatValues(ds, c)
	s := ColumnSummary{Name: c.Name, Kind: KindNumeric, Count: len(vals)}
	nan := math.NaN()
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	mean, std := stat.MeanStdDev(vals, nil)
	s.Mean = mean
	s.Std = nan
	if len(vals) > 1 {
		s.Std = std
	}
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.5)
	s.P75 = quantile(sorted, 0.75)
	return s
}

// floatValues returns the parsed non-absent values of a numeric column.
func floatValues(ds *dataset.Dataset, c *dataset.Column) []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if x, ok := ds.Float(v); ok {
			out = append(out, x)
		}
	}
	return out
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
