package dataset

import (
	"math"
	"strconv"
	"strings"
)

// DefaultMissing lists the cell spellings treated as absent values.
var DefaultMissing = []string{"NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"}

// NumberFormat describes how numeric cells are written.
type NumberFormat struct {
	// DecimalSeparator defaults to '.'.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing; 0 means none.
	ThousandsSeparator rune
}

// LoadOptions controls how a file becomes a Dataset.
type LoadOptions struct {
	// Delimiter for CSV. If 0, chosen by file extension.
	Delimiter rune
	Format    NumberFormat
	// Missing overrides DefaultMissing when non-nil. Empty cells are always absent.
	Missing []string
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Sheet selects an xlsx sheet by name; SheetIndex is 1-based and used when Sheet is empty.
	Sheet      string
	SheetIndex int
}

// DefaultLoadOptions returns reasonable defaults for loading datasets.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Missing:    DefaultMissing,
		SheetIndex: 1,
	}
}

func (o LoadOptions) missingSet() map[string]struct{} {
	list := o.Missing
	if list == nil {
		list = DefaultMissing
	}
	m := make(map[string]struct{}, len(list))
	for _, s := range list {
		m[s] = struct{}{}
	}
	return m
}

// ParseNumber parses s as a float according to f. NaN spellings are rejected
// so that they only ever appear as absent values.
func ParseNumber(s string, f NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	dec := f.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := f.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(x) {
		return 0, false
	}
	return x, true
}
