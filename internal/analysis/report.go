package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// ReportOptions controls what BuildReport includes.
type ReportOptions struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Target is the value-counts column index; negative counts from the end.
	Target int
	// TopValues caps the value-count entries shown; 0 shows all.
	TopValues int
}

// DefaultReportOptions returns reasonable defaults for dataset reports.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		SampleRows: 5,
		Target:     TargetColumn,
		TopValues:  10,
	}
}

// Report is a markdown-friendly summary of a dataset.
type Report struct {
	Name        string               `json:"name"`
	Rows        int                  `json:"rows"`
	Cols        int                  `json:"columns"`
	Types       []ColumnType         `json:"types"`
	Describe    []ColumnSummary      `json:"describe"`
	Categorical []CategoricalSummary `json:"categorical"`
	Target      *ValueCounts         `json:"target,omitempty"`
	Corr        *CorrelationMatrix   `json:"correlation,omitempty"`
	Header      []string             `json:"header"`
	Samples     [][]string           `json:"samples,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	topValues   int
}

// BuildReport runs every summary operation over ds.
func BuildReport(ds *dataset.Dataset, opt ReportOptions) *Report {
	rep := &Report{Name: ds.Name, topValues: opt.TopValues}
	rep.Rows, rep.Cols = Shape(ds)
	rep.Types = ColumnTypes(ds)
	rep.Describe = Describe(ds)
	rep.Categorical = DescribeCategorical(ds)
	if vc, err := CountValues(ds, opt.Target); err == nil {
		rep.Target = vc
	} else if rep.Cols > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("value counts skipped: %v", err))
	}
	if opt.Correlations {
		rep.Corr = Correlate(ds)
	}
	rep.Header = ds.Names()
	n := opt.SampleRows
	if n > rep.Rows {
		n = rep.Rows
	}
	for i := 0; i < n; i++ {
		rep.Samples = append(rep.Samples, ds.Row(i))
	}
	rep.Warnings = append(rep.Warnings, ds.Warnings...)
	return rep
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", r.Cols))

	b.WriteString("[SCHEMA]\n")
	for i, t := range r.Types {
		missing := 0
		if r.Rows > 0 {
			missing = r.Rows - r.presentCount(i)
		}
		missPct := 0.0
		if r.Rows > 0 {
			missPct = float64(missing) * 100.0 / float64(r.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %.1f%%)\n", safeName(t.Name), t.Kind, missPct))
	}

	if len(r.Describe) > 0 {
		b.WriteString("\n[DESCRIBE]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range r.Describe {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				safeVal(s.Name), s.Count, FormatFloat(s.Mean), FormatFloat(s.Std), FormatFloat(s.Min),
				FormatFloat(s.P25), FormatFloat(s.P50), FormatFloat(s.P75), FormatFloat(s.Max)))
		}
	}

	if len(r.Categorical) > 0 {
		b.WriteString("\n[CATEGORICAL]\n")
		for _, c := range r.Categorical {
			b.WriteString(fmt.Sprintf("- %s: %s, count %d, unique %d", safeName(c.Name), c.Kind, c.Count, c.Unique))
			if c.Unique > 0 {
				b.WriteString(fmt.Sprintf(", top %s (%d)", safeVal(c.Top), c.Freq))
			}
			b.WriteString("\n")
		}
	}

	if r.Target != nil {
		b.WriteString(fmt.Sprintf("\n[VALUE COUNTS: %s]\n", safeName(r.Target.Column)))
		entries := r.Target.Entries
		if r.topValues > 0 && len(entries) > r.topValues {
			entries = entries[:r.topValues]
		}
		for _, e := range entries {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(e.Value), e.Count))
		}
		if hidden := len(r.Target.Entries) - len(entries); hidden > 0 {
			b.WriteString(fmt.Sprintf("- (%d more values)\n", hidden))
		}
		if r.Target.Absent > 0 {
			b.WriteString(fmt.Sprintf("- (absent): %d\n", r.Target.Absent))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		// list top pairs by |r|
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := r.Corr.Values[i][j]; !math.IsNaN(v) {
					pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: v})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		maxp := 10
		if len(pairs) < maxp {
			maxp = len(pairs)
		}
		for i := 0; i < maxp; i++ {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
		}
		if len(pairs) == 0 {
			b.WriteString("- (no defined pairs)\n")
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Header {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				b.WriteString(safeVal(clip(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// presentCount finds the non-absent count of column i from the summaries.
// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func (r *Report) presentCount(i int) int {
	if i >= len(r.Types) {
		return 0
	}
	name := r.Types[i].Name
	for _, s := range r.Describe {
		if s.Name == name {
			return s.Count
		}
	}
	for _, c := range r.Categorical {
		if c.Name == name {
			return c.Count
		}
	}
	return 0
}

// FormatFloat prints a statistic compactly; NaN prints as "NaN".
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", f)
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
