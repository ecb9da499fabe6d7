package analysis

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// TargetColumn selects the last column, the conventional target/class column.
const TargetColumn = -1

// ValueCount is one distinct value and its number of occurrences.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts is the distribution of a column's values, by descending count.
// Counts plus Absent always equals the row count.
type ValueCounts struct {
	Column  string       `json:"column"`
	Entries []ValueCount `json:"entries"`
	Absent  int          `json:"absent"`
}

// Total returns the number of present values counted.
func (vc *ValueCounts) Total() int {
	n := 0
	for _, e := range vc.Entries {
		n += e.Count
	}
	return n
}

// GroupRow is the per-group result of GroupCount.
type GroupRow struct {
	Key    string `json:"key"`
	Size   int    `json:"size"`
	Counts []int  `json:"counts"`
}

// GroupCounts holds non-absent counts of selected columns per distinct value
// of the By column.
type GroupCounts struct {
	By      string     `json:"by"`
	Columns []string   `json:"columns"`
	Groups  []GroupRow `json:"groups"`
}

// CountValues counts the distinct values of the column at index col.
// Negative indexes count from the end, so TargetColumn is the last column.
func CountValues(ds *dataset.Dataset, col int) (*ValueCounts, error) {
	n := ds.NumColumns()
	idx := col
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, fmt.Errorf("%w: index %d out of range for %d columns", ErrInvalidColumn, col, n)
	}
	c := &ds.Columns[idx]
	var canon func(string) string
	if inferKind(ds, c) == KindNumeric {
		canon = numberKey(ds.Format)
	}
	return &ValueCounts{
		Column:  c.Name,
		Entries: countValues(c.Present(), canon),
		Absent:  c.AbsentCount(),
	}, nil
}

// CountValuesByName is CountValues for a column resolved by name.
func CountValuesByName(ds *dataset.Dataset, name string) (*ValueCounts, error) {
	idx := ds.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
	}
	return CountValues(ds, idx)
}

// GroupCount groups rows by the distinct values of column by and counts the
// present values of each selected column per group. Rows whose group value is
// absent are dropped. Groups are ordered by key, numerically for numeric keys.
func GroupCount(ds *dataset.Dataset, by string, cols []string) (*GroupCounts, error) {
	bi := ds.ColumnIndex(by)
	if bi < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, by)
	}
	sel := make([]int, len(cols))
	names := make([]string, len(cols))
	for i, name := range cols {
		idx := ds.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, name)
		}
		sel[i] = idx
		names[i] = ds.Columns[idx].Name
	}
	byCol := &ds.Columns[bi]
	numericKey := inferKind(ds, byCol) == KindNumeric
	key := func(s string) string { return s }
	if numericKey {
		key = numberKey(ds.Format)
	}

	groups := map[string]*GroupRow{}
	for row, v := range byCol.Values {
		if v.Absent {
			continue
		}
		k := key(v.Raw)
		g := groups[k]
		if g == nil {
			g = &GroupRow{Key: k, Counts: make([]int, len(sel))}
			groups[k] = g
		}
		g.Size++
		for i, ci := range sel {
			if !ds.Columns[ci].Values[row].Absent {
				g.Counts[i]++
			}
		}
	}

	out := &GroupCounts{By: byCol.Name, Columns: names, Groups: make([]GroupRow, 0, len(groups))}
	for _, g := range groups {
		out.Groups = append(out.Groups, *g)
	}
	sort.Slice(out.Groups, func(i, j int) bool {
		a, b := out.Groups[i].Key, out.Groups[j].Key
		if numericKey {
			x, _ := strconv.ParseFloat(a, 64)
			y, _ := strconv.ParseFloat(b, 64)
			return x < y
		}
		return a < b
	})
	return out, nil
}

// countValues tallies values, optionally mapping each through canon first.
// Ties in count are ordered by value.
func countValues(values []string, canon func(string) string) []ValueCount {
	counts := make(map[string]int)
	for _, v := range values {
		if canon != nil {
			v = canon(v)
		}
		counts[v]++
	}
	out := make([]ValueCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, ValueCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// numberKey canonicalises numeric spellings so that 1, 1.0 and 1e0 count together.
func numberKey(f dataset.NumberFormat) func(string) string {
	return func(s string) string {
		x, ok := dataset.ParseNumber(s, f)
		if !ok {
			return s
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
}
