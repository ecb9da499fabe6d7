package dataset

import (
	"fmt"
	"strings"
)

// FromRecords builds a Dataset from a header and string records. Short records
// are padded with absent values, long records are truncated, and rows past
// opt.MaxRows are dropped; the last two are reported in Warnings.
func FromRecords(name string, header []string, records [][]string, opt LoadOptions) *Dataset {
	ds := &Dataset{Name: name, Format: opt.Format}
	ncol := len(header)
	if ncol == 0 {
		return ds
	}
	names := uniqueNames(header)
	rows := records
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", opt.MaxRows, len(records)))
	}
	missing := opt.missingSet()
	ds.Columns = make([]Column, ncol)
	for j := range ds.Columns {
		ds.Columns[j] = Column{Name: names[j], Values: make([]Value, len(rows))}
	}
	wide := 0
	for i, rec := range rows {
		if len(rec) > ncol {
			wide++
		}
		for j := 0; j < ncol; j++ {
			if j >= len(rec) {
				ds.Columns[j].Values[i] = Value{Absent: true}
				continue
			}
			v := strings.TrimSpace(rec[j])
			if _, ok := missing[v]; ok || v == "" {
				ds.Columns[j].Values[i] = Value{Absent: true}
				continue
			}
			ds.Columns[j].Values[i] = Value{Raw: v}
		}
	}
	if wide > 0 {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("%d rows had more than %d fields; extra fields dropped", wide, ncol))
	}
	return ds
}

// uniqueNames cleans header cells: blanks become "Unnamed: i" and repeated
// names get a ".k" suffix.
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		n := strings.TrimSpace(h)
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		taken[n] = true
		out[i] = n
	}
	for i, n := range out {
		k := seen[n]
		seen[n] = k + 1
		if k == 0 {
			continue
		}
		cand := fmt.Sprintf("%s.%d", n, k)
		for taken[cand] {
			k++
			cand = fmt.Sprintf("%s.%d", n, k)
		}
		seen[n] = k + 1
		taken[cand] = true
		out[i] = cand
	}
	return out
}
