package dataset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrColumnNotFound is returned when a column name does not resolve.
var ErrColumnNotFound = errors.New("column not found")

// Value is a single cell. Missing cells are kept in place with Absent set.
type Value struct {
	Raw    string
	Absent bool
}

// Column is a named, ordered sequence of values.
type Column struct {
	Name   string
	Values []Value
}

// Dataset is an in-memory table: ordered named columns of equal length.
// It is built once by a loader and treated as read-only afterwards.
type Dataset struct {
	Name     string
	Columns  []Column
	Format   NumberFormat
	Warnings []string
}

// NumRows returns the row count N shared by every column.
func (d *Dataset) NumRows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, d.NumColumns())
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex resolves a column by name. Matching is case-insensitive and
// Unicode-normalised; -1 means no match.
func (d *Dataset) ColumnIndex(name string) int {
	if d == nil {
		return -1
	}
	want := foldName(name)
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	for i, c := range d.Columns {
		if foldName(c.Name) == want {
			return i
		}
	}
	return -1
}

// Lookup returns the column with the given name.
func (d *Dataset) Lookup(name string) (*Column, error) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return &d.Columns[idx], nil
}

// Row returns the raw cells of row i; absent cells are empty strings.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.Columns))
	for j, c := range d.Columns {
		if i < len(c.Values) && !c.Values[i].Absent {
			out[j] = c.Values[i].Raw
		}
	}
	return out
}

// Float parses a cell using the dataset's number format.
func (d *Dataset) Float(v Value) (float64, bool) {
	if v.Absent {
		return 0, false
	}
	return ParseNumber(v.Raw, d.Format)
}

// Present returns the non-absent values of the column.
func (c *Column) Present() []string {
	out := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Absent {
			out = append(out, v.Raw)
		}
	}
	return out
}

// AbsentCount returns how many cells of the column are missing.
func (c *Column) AbsentCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Absent {
			n++
		}
	}
	return n
}

var folder = cases.Fold()

func foldName(s string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(s)))
}
