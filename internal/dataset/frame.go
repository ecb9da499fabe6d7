package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Frame converts the dataset into a gota DataFrame of string series.
// Absent cells become NaN elements.
func Frame(ds *Dataset) dataframe.DataFrame {
	cols := make([]series.Series, 0, ds.NumColumns())
	for _, c := range ds.Columns {
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			if v.Absent {
				vals[i] = "NaN"
				continue
			}
			vals[i] = v.Raw
		}
		cols = append(cols, series.New(vals, series.String, c.Name))
	}
	return dataframe.New(cols...)
}

// Head returns a dataset holding the first n rows; n is clamped to [0, N].
func Head(ds *Dataset, n int) (*Dataset, error) {
	rows := ds.NumRows()
	if n < 0 {
		n = 0
	}
	if n > rows {
		n = rows
	}
	if n == rows {
		return derive(ds, ds.Columns), nil
	}
	if n == 0 {
		cols := make([]Column, len(ds.Columns))
		for i, c := range ds.Columns {
			cols[i] = Column{Name: c.Name, Values: []Value{}}
		}
		return derive(ds, cols), nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return fromFrame(ds, Frame(ds).Subset(idx))
}

// Select returns a dataset holding the named columns in the requested order.
// Names resolve like ColumnIndex.
func Select(ds *Dataset, names []string) (*Dataset, error) {
	if len(names) == 0 {
		return derive(ds, nil), nil
	}
	resolved := make([]string, len(names))
	for i, n := range names {
		idx := ds.ColumnIndex(n)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
		resolved[i] = ds.Columns[idx].Name
	}
	return fromFrame(ds, Frame(ds).Select(resolved))
}

func fromFrame(src *Dataset, df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataframe: %w", df.Err)
	}
	cols := make([]Column, 0, df.Ncol())
	for _, name := range df.Names() {
		s := df.Col(name)
		recs := s.Records()
		nan := s.IsNaN()
		vals := make([]Value, len(recs))
		for i := range recs {
			if nan[i] {
				vals[i] = Value{Absent: true}
				continue
			}
			vals[i] = Value{Raw: recs[i]}
		}
		cols = append(cols, Column{Name: name, Values: vals})
	}
	return derive(src, cols), nil
}

func derive(src *Dataset, cols []Column) *Dataset {
	return &Dataset{Name: src.Name, Columns: cols, Format: src.Format}
}
