package analysis

import (
	"time"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindDatetime    Kind = "datetime"
	KindCategorical Kind = "categorical"
	KindText        Kind = "text"
)

const (
	maxCategoryLen     = 64
	minTextCardinality = 20
)

// ColumnType pairs a column name with its inferred kind.
type ColumnType struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// ColumnTypes infers the kind of every column, in column order.
func ColumnTypes(ds *dataset.Dataset) []ColumnType {
	out := make([]ColumnType, ds.NumColumns())
	for i := range ds.Columns {
		out[i] = ColumnType{Name: ds.Columns[i].Name, Kind: inferKind(ds, &ds.Columns[i])}
	}
	return out
}

// inferKind decides a column's kind from counts only, so the result does not
// depend on row order. A column with no present values is numeric.
func inferKind(ds *dataset.Dataset, c *dataset.Column) Kind {
	present := c.Present()
	numeric, dates := true, true
	for _, v := range present {
		if numeric {
			if _, ok := dataset.ParseNumber(v, ds.Format); !ok {
				numeric = false
			}
		}
		if dates {
			if _, ok := parseTimeMaybe(v); !ok {
				dates = false
			}
		}
		if !numeric && !dates {
			break
		}
	}
	switch {
	case numeric:
		return KindNumeric
	case dates:
		return KindDatetime
	}
	uniq := make(map[string]struct{}, len(present))
	for _, v := range present {
		if len(v) > maxCategoryLen {
			return KindText
		}
		uniq[v] = struct{}{}
	}
	if len(uniq) > minTextCardinality && len(uniq)*2 > len(present) {
		return KindText
	}
	return KindCategorical
}

// numericColumns returns the indexes of numeric columns in order.
func numericColumns(ds *dataset.Dataset) []int {
	var idx []int
	for i := range ds.Columns {
		if inferKind(ds, &ds.Columns[i]) == KindNumeric {
			idx = append(idx, i)
		}
	}
	return idx
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
