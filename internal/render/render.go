// Package render formats summarizer output for the terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/KaramelBytes/dsexplorer/internal/analysis"
	"github.com/KaramelBytes/dsexplorer/internal/dataset"
	"github.com/KaramelBytes/dsexplorer/internal/utils"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts table, markdown (or md) and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use table|markdown|json)", s)
	}
}

// Result writes one operation result.
func Result(w io.Writer, res analysis.Result, f Format) error {
	if f == FormatJSON {
		return writeJSON(w, payload(res))
	}
	t := newTable(w)
	switch res.Op {
	case analysis.OpShape:
		t.AppendHeader(table.Row{"rows", "columns"})
		t.AppendRow(table.Row{res.Shape.Rows, res.Shape.Columns})
	case analysis.OpColumns:
		t.AppendHeader(table.Row{"#", "column"})
		for i, c := range res.Columns {
			t.AppendRow(table.Row{i, c})
		}
	case analysis.OpTypes:
		t.AppendHeader(table.Row{"column", "kind"})
		for _, ct := range res.Types {
			t.AppendRow(table.Row{ct.Name, ct.Kind})
		}
	case analysis.OpDescribe:
		if len(res.Describe) == 0 {
			return note(w, "(no numeric columns)")
		}
		t.AppendHeader(table.Row{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
		for _, s := range res.Describe {
			t.AppendRow(table.Row{s.Name, s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max)})
		}
	case analysis.OpDescribeCategorical:
		if len(res.Categorical) == 0 {
			return note(w, "(no categorical columns)")
		}
		t.AppendHeader(table.Row{"column", "kind", "count", "unique", "top", "freq"})
		for _, s := range res.Categorical {
			t.AppendRow(table.Row{s.Name, s.Kind, s.Count, s.Unique, s.Top, s.Freq})
		}
	case analysis.OpValueCounts:
		vc := res.ValueCounts
		t.AppendHeader(table.Row{vc.Column, "count"})
		for _, e := range vc.Entries {
			t.AppendRow(table.Row{e.Value, e.Count})
		}
		if vc.Absent > 0 {
			t.AppendFooter(table.Row{"(absent)", vc.Absent})
		}
	case analysis.OpCorrelation:
		m := res.Correlation
		if m.Empty() {
			return note(w, "(fewer than two numeric columns)")
		}
		header := table.Row{""}
		for _, c := range m.Columns {
			header = append(header, c)
		}
		t.AppendHeader(header)
		for i, c := range m.Columns {
			row := table.Row{c}
			for _, v := range m.Values[i] {
				row = append(row, corr(v))
			}
			t.AppendRow(row)
		}
	case analysis.OpGroupCount:
		gc := res.GroupCounts
		header := table.Row{gc.By, "size"}
		for _, c := range gc.Columns {
			header = append(header, c)
		}
		t.AppendHeader(header)
		for _, g := range gc.Groups {
			row := table.Row{g.Key, g.Size}
			for _, n := range g.Counts {
				row = append(row, n)
			}
			t.AppendRow(row)
		}
	default:
		return fmt.Errorf("render: %w: %q", analysis.ErrUnknownOp, res.Op)
	}
	flush(t, f)
	return nil
}

// Dataset writes the rows of ds; absent cells print as NaN.
func Dataset(w io.Writer, ds *dataset.Dataset, f Format) error {
	if f == FormatJSON {
		rows := make([]map[string]any, ds.NumRows())
		for i := range rows {
			row := make(map[string]any, ds.NumColumns())
			for _, c := range ds.Columns {
				if c.Values[i].Absent {
					row[c.Name] = nil
					continue
				}
				row[c.Name] = c.Values[i].Raw
			}
			rows[i] = row
		}
		return writeJSON(w, rows)
	}
	if ds.NumColumns() == 0 {
		return note(w, "(empty dataset)")
	}
	t := newTable(w)
	header := table.Row{""}
	for _, n := range ds.Names() {
		header = append(header, n)
	}
	t.AppendHeader(header)
	for i := 0; i < ds.NumRows(); i++ {
		row := table.Row{i}
		for _, c := range ds.Columns {
			if c.Values[i].Absent {
				row = append(row, "NaN")
				continue
			}
			row = append(row, c.Values[i].Raw)
		}
		t.AppendRow(row)
	}
	flush(t, f)
	_, _ = fmt.Fprintf(w, "(%d rows x %d columns)\n", ds.NumRows(), ds.NumColumns())
	return nil
}

// Report writes a full dataset report.
func Report(w io.Writer, rep *analysis.Report, f Format) error {
	if f == FormatJSON {
		return writeJSON(w, rep)
	}
	_, err := io.WriteString(w, rep.Markdown())
	return err
}

// Files writes the file selector listing.
func Files(w io.Writer, dir string, names []string, f Format) error {
	if f == FormatJSON {
		return writeJSON(w, map[string]any{"dir": dir, "files": names})
	}
	if len(names) == 0 {
		return note(w, "(no datasets in "+dir+")")
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "file"})
	for i, n := range names {
		t.AppendRow(table.Row{i + 1, n})
	}
	flush(t, f)
	return nil
}

func payload(res analysis.Result) any {
	switch res.Op {
	case analysis.OpShape:
		return res.Shape
	case analysis.OpColumns:
		return res.Columns
	case analysis.OpTypes:
		return res.Types
	case analysis.OpDescribe:
		return res.Describe
	case analysis.OpDescribeCategorical:
		return res.Categorical
	case analysis.OpValueCounts:
		return res.ValueCounts
	case analysis.OpCorrelation:
		return res.Correlation
	case analysis.OpGroupCount:
		return res.GroupCounts
	}
	return res
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// Column names are data; keep their case.
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func flush(t table.Writer, f Format) {
	if f == FormatMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func note(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, msg)
	return err
}

func num(f float64) string { return analysis.FormatFloat(f) }

func corr(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%.3f", f)
}
