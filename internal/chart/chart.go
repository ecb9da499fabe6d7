// Package chart draws dataset summaries as PNG or SVG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/dsexplorer/internal/analysis"
	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// ErrInvalidChart reports a chart kind or column selection that cannot be drawn.
var ErrInvalidChart = errors.New("invalid chart")

// Kind selects the chart type.
type Kind string

const (
	KindPie  Kind = "pie"
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindArea Kind = "area"
	KindHist Kind = "hist"
)

// Kinds lists the supported chart kinds.
var Kinds = []Kind{KindPie, KindBar, KindLine, KindArea, KindHist}

// ParseKind maps a name to a Kind; "histogram" is accepted for hist.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "histogram" {
		return KindHist, nil
	}
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q (use pie|bar|line|area|hist)", ErrInvalidChart, s)
}

// Format is the image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts png and svg; empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: unsupported image format %q (use png|svg)", ErrInvalidChart, s)
	}
}

// FormatFor guesses the image format from an output filename.
func FormatFor(path string, fallback Format) Format {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".svg"):
		return FormatSVG
	case strings.HasSuffix(strings.ToLower(path), ".png"):
		return FormatPNG
	}
	return fallback
}

// Spec describes one chart.
type Spec struct {
	Kind Kind
	// Column is the pie/bar/hist column; empty selects the last column for
	// pie and bar and the first numeric column for hist.
	Column string
	// Columns are the plotted series for line and area, or the stacked
	// counts for a grouped bar chart.
	Columns []string
	// By groups a bar chart by the distinct values of this column.
	By     string
	Bins   int
	Title  string
	Width  int
	Height int
	Format Format
}

const (
	defaultBins   = 10
	defaultWidth  = 800
	defaultHeight = 500
)

// Render draws the chart described by s to w.
func Render(w io.Writer, ds *dataset.Dataset, s Spec) error {
	if s.Width <= 0 {
		s.Width = defaultWidth
	}
	if s.Height <= 0 {
		s.Height = defaultHeight
	}
	if s.Bins <= 0 {
		s.Bins = defaultBins
	}
	rp := gochart.PNG
	if s.Format == FormatSVG {
		rp = gochart.SVG
	}
	var r interface {
		Render(gochart.RendererProvider, io.Writer) error
	}
	var err error
	switch s.Kind {
	case KindPie:
		r, err = pieChart(ds, s)
	case KindBar:
		if s.By != "" {
			r, err = groupedBarChart(ds, s)
		} else {
			r, err = countBarChart(ds, s)
		}
	case KindLine, KindArea:
		r, err = seriesChart(ds, s)
	case KindHist:
		r, err = histChart(ds, s)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, s.Kind)
	}
	if err != nil {
		return err
	}
	if err := r.Render(rp, w); err != nil {
		return fmt.Errorf("render %s chart: %w", s.Kind, err)
	}
	return nil
}

func targetCounts(ds *dataset.Dataset, column string) (*analysis.ValueCounts, error) {
	var (
		vc  *analysis.ValueCounts
		err error
	)
	if column != "" {
		vc, err = analysis.CountValuesByName(ds, column)
	} else {
		vc, err = analysis.CountValues(ds, analysis.TargetColumn)
	}
	if err != nil {
		return nil, err
	}
	if len(vc.Entries) == 0 {
		return nil, fmt.Errorf("%w: column %q has no values", ErrInvalidChart, vc.Column)
	}
	return vc, nil
}

func pieChart(ds *dataset.Dataset, s Spec) (*gochart.PieChart, error) {
	vc, err := targetCounts(ds, s.Column)
	if err != nil {
		return nil, err
	}
	values := make([]gochart.Value, 0, len(vc.Entries))
	for _, e := range vc.Entries {
		values = append(values, gochart.Value{Label: e.Value, Value: float64(e.Count)})
	}
	return &gochart.PieChart{
		Title:  titleOr(s.Title, vc.Column),
		Width:  s.Width,
		Height: s.Height,
		Values: values,
	}, nil
}

func countBarChart(ds *dataset.Dataset, s Spec) (*gochart.BarChart, error) {
	vc, err := targetCounts(ds, s.Column)
	if err != nil {
		return nil, err
	}
	bars := make([]gochart.Value, 0, len(vc.Entries))
	top := 0.0
	for _, e := range vc.Entries {
		bars = append(bars, gochart.Value{Label: e.Value, Value: float64(e.Count)})
		top = math.Max(top, float64(e.Count))
	}
	return barChart(titleOr(s.Title, vc.Column), s, bars, top), nil
}

// groupedBarChart stacks the non-absent counts of s.Columns per group; with no
// columns each bar is the group size.
func groupedBarChart(ds *dataset.Dataset, s Spec) (gochart.StackedBarChart, error) {
	gc, err := analysis.GroupCount(ds, s.By, s.Columns)
	if err != nil {
		return gochart.StackedBarChart{}, err
	}
	if len(gc.Groups) == 0 {
		return gochart.StackedBarChart{}, fmt.Errorf("%w: column %q has no values", ErrInvalidChart, gc.By)
	}
	bars := make([]gochart.StackedBar, 0, len(gc.Groups))
	for _, g := range gc.Groups {
		bar := gochart.StackedBar{Name: g.Key}
		if len(gc.Columns) == 0 {
			bar.Values = []gochart.Value{{Label: g.Key, Value: float64(g.Size), Style: fill(0)}}
		}
		for i, n := range g.Counts {
			bar.Values = append(bar.Values, gochart.Value{Label: gc.Columns[i], Value: float64(n), Style: fill(i)})
		}
		bars = append(bars, bar)
	}
	return gochart.StackedBarChart{
		Title:  titleOr(s.Title, "by "+gc.By),
		Width:  s.Width,
		Height: s.Height,
		Bars:   bars,
	}, nil
}

func seriesChart(ds *dataset.Dataset, s Spec) (*gochart.Chart, error) {
	cols, err := numericSelection(ds, s.Columns)
	if err != nil {
		return nil, err
	}
	if ds.NumRows() < 2 {
		return nil, fmt.Errorf("%w: %s chart needs at least two rows", ErrInvalidChart, s.Kind)
	}
	var (
		series []gochart.Series
		lo, hi = math.Inf(1), math.Inf(-1)
	)
	for i, c := range cols {
		var xs, ys []float64
		for row, v := range c.Values {
			f, ok := finite(ds, v)
			if !ok {
				continue
			}
			xs = append(xs, float64(row))
			ys = append(ys, f)
		}
		if len(xs) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(ys))
		hi = math.Max(hi, floats.Max(ys))
		st := gochart.Style{StrokeColor: gochart.GetDefaultColor(i), StrokeWidth: 2}
		if s.Kind == KindArea {
			st.FillColor = gochart.GetDefaultColor(i).WithAlpha(64)
		}
		series = append(series, gochart.ContinuousSeries{Name: c.Name, XValues: xs, YValues: ys, Style: st})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: selected columns have no finite numeric values", ErrInvalidChart)
	}
	if s.Kind == KindArea && lo > 0 {
		lo = 0
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	ch := &gochart.Chart{
		Title:      s.Title,
		Width:      s.Width,
		Height:     s.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 20, Right: 12, Bottom: 12}},
		XAxis:      gochart.XAxis{Name: "row", Range: &gochart.ContinuousRange{Min: 0, Max: float64(ds.NumRows() - 1)}},
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}
	return ch, nil
}

func histChart(ds *dataset.Dataset, s Spec) (*gochart.BarChart, error) {
	var names []string
	if s.Column != "" {
		names = []string{s.Column}
	}
	cols, err := numericSelection(ds, names)
	if err != nil {
		return nil, err
	}
	c := cols[0]
	var xs []float64
	for _, v := range c.Values {
		if f, ok := finite(ds, v); ok {
			xs = append(xs, f)
		}
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: column %q has no finite values", ErrInvalidChart, c.Name)
	}
	counts, dividers, err := histogram(xs, s.Bins)
	if err != nil {
		return nil, fmt.Errorf("%w: column %q: %w", ErrInvalidChart, c.Name, err)
	}
	bars := make([]gochart.Value, len(counts))
	top := 0.0
	for i, n := range counts {
		bars[i] = gochart.Value{Label: fmt.Sprintf("%.3g", dividers[i]), Value: n}
		top = math.Max(top, n)
	}
	return barChart(titleOr(s.Title, c.Name), s, bars, top), nil
}

// histogram bins finite xs into equal-width bins; dividers holds the bin edges.
func histogram(xs []float64, bins int) (counts, dividers []float64, err error) {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + math.Max(1, math.Abs(lo)*1e-9)
	}
	if math.IsInf(hi-lo, 0) {
		return nil, nil, errors.New("value range too wide to bin")
	}
	dividers = make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram requires every x below the last edge.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, sorted, nil)
	return counts, dividers, nil
}

// finite parses v as a number, rejecting NaN and infinities.
func finite(ds *dataset.Dataset, v dataset.Value) (float64, bool) {
	f, ok := ds.Float(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func barChart(title string, s Spec, bars []gochart.Value, top float64) *gochart.BarChart {
	for i := range bars {
		bars[i].Style = fill(0)
	}
	return &gochart.BarChart{
		Title:    title,
		Width:    s.Width,
		Height:   s.Height,
		BarWidth: barWidth(s.Width, len(bars)),
		Bars:     bars,
		XAxis:    gochart.Style{FontSize: 8},
		YAxis:    gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(top, 1) * 1.1}},
	}
}

// numericSelection resolves names to numeric columns; no names selects every
// numeric column.
func numericSelection(ds *dataset.Dataset, names []string) ([]*dataset.Column, error) {
	kinds := make(map[string]analysis.Kind, ds.NumColumns())
	for _, t := range analysis.ColumnTypes(ds) {
		kinds[t.Name] = t.Kind
	}
	var out []*dataset.Column
	if len(names) == 0 {
		for i := range ds.Columns {
			if kinds[ds.Columns[i].Name] == analysis.KindNumeric {
				out = append(out, &ds.Columns[i])
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: no numeric columns", ErrInvalidChart)
		}
		return out, nil
	}
	for _, n := range names {
		c, err := ds.Lookup(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidChart, err)
		}
		if kinds[c.Name] != analysis.KindNumeric {
			return nil, fmt.Errorf("%w: column %q is %s, not numeric", ErrInvalidChart, c.Name, kinds[c.Name])
		}
		out = append(out, c)
	}
	return out, nil
}

func barWidth(width, n int) int {
	if n == 0 {
		return 40
	}
	bw := (width - 80) / n * 2 / 3
	if bw < 4 {
		return 4
	}
	if bw > 60 {
		return 60
	}
	return bw
}

func fill(i int) gochart.Style {
	c := gochart.GetDefaultColor(i)
	return gochart.Style{FillColor: c, StrokeColor: c}
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}
