package analysis

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

var csvRows = []string{
	"sepal_length,sepal_width,measured_on,note,class",
	"5.1,3.5,2024-08-10,first,setosa",
	"4.9,3.0,2024-08-12,second,setosa",
	"6.3,,2024-08-15,third,virginica",
	"5.8,2.7,2024-08-16,fourth,versicolor",
	"7.1,3.0,,fifth,virginica",
	"6.4,3.2,2024-08-20,sixth,virginica",
}

func loadCSV(t *testing.T, rows ...string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(strings.Join(rows, "\n")), "iris.csv", dataset.DefaultLoadOptions())
	require.NoError(t, err, "read csv")
	return ds
}

// permutations returns every ordering of rows.
func permutations(rows []string) [][]string {
	if len(rows) <= 1 {
		return [][]string{append([]string{}, rows...)}
	}
	var out [][]string
	for i := range rows {
		rest := append(append([]string{}, rows[:i]...), rows[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{rows[i]}, p...))
		}
	}
	return out
}

func TestShapeMatchesColumnLengths(t *testing.T) {
	ds := loadCSV(t, csvRows...)
	rows, cols := Shape(ds)
	assert.Equal(t, 6, rows)
	assert.Equal(t, 5, cols)
	for _, c := range ds.Columns {
		assert.Len(t, c.Values, rows, c.Name)
	}
	assert.Equal(t, strings.Split(csvRows[0], ","), ColumnNames(ds))
}

func TestColumnTypes(t *testing.T) {
	ds := loadCSV(t, csvRows...)
	want := map[string]Kind{
		"sepal_length": KindNumeric,
		"sepal_width":  KindNumeric,
		"measured_on":  KindDatetime,
		"note":         KindCategorical,
		"class":        KindCategorical,
	}
	for _, ct := range ColumnTypes(ds) {
		assert.Equal(t, want[ct.Name], ct.Kind, ct.Name)
	}
}

func TestColumnTypesStableUnderRowReordering(t *testing.T) {
	rows := append([]string{}, csvRows...)
	reversed := []string{rows[0]}
	for i := len(rows) - 1; i > 0; i-- {
		reversed = append(reversed, rows[i])
	}
	assert.Equal(t, ColumnTypes(loadCSV(t, rows...)), ColumnTypes(loadCSV(t, reversed...)))
}

func TestColumnTypesMixedNumbersAndDatesAnyOrder(t *testing.T) {
	header := "mixed,n,d"
	body := []string{
		"1,1,2024-01-01",
		"2024-01-02,2,2024-01-02",
		"2024-01-03,3,2024-01-03",
	}
	want := []ColumnType{
		{Name: "mixed", Kind: KindCategorical},
		{Name: "n", Kind: KindNumeric},
		{Name: "d", Kind: KindDatetime},
	}
	for _, p := range permutations(body) {
		got := ColumnTypes(loadCSV(t, append([]string{header}, p...)...))
		assert.Equal(t, want, got, "rows %v", p)
	}
}

func TestColumnTypesTextAndEmpty(t *testing.T) {
	rows := []string{"comment,blank"}
	for i := 0; i < 30; i++ {
		rows = append(rows, "free text entry number "+strings.Repeat("x", i)+",")
	}
	types := ColumnTypes(loadCSV(t, rows...))
	assert.Equal(t, KindText, types[0].Kind)
	assert.Equal(t, KindNumeric, types[1].Kind, "all-absent column")
}

func TestDescribe(t *testing.T) {
	ds := loadCSV(t, "x,label", "1,a", "2,b", "3,c", "4,d")
	got := Describe(ds)
	require.Len(t, got, 1)
	s := got[0]
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.2909944487358056, s.Std, 1e-9)
	assert.InDelta(t, 1, s.Min, 1e-9)
	assert.InDelta(t, 1.75, s.P25, 1e-9)
	assert.InDelta(t, 2.5, s.P50, 1e-9)
	assert.InDelta(t, 3.25, s.P75, 1e-9)
	assert.InDelta(t, 4, s.Max, 1e-9)
}

func TestDescribeSkipsAbsentAndHandlesSingleValue(t *testing.T) {
	ds := loadCSV(t, "x,y", "1,", "NA,", "3,7")
	got := Describe(ds)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 2.0, got[0].Mean)
	assert.Equal(t, 1, got[1].Count)
	assert.True(t, math.IsNaN(got[1].Std))
	assert.Equal(t, 7.0, got[1].Min)
}

func TestDescribeNonFinite(t *testing.T) {
	ds := loadCSV(t, "x", "1", "inf", "3")
	got := Describe(ds)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, 1.0, got[0].Min)
	assert.True(t, math.IsInf(got[0].Max, 1))

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"max":null`)
}

func TestDescribeEmptyForCategoricalData(t *testing.T) {
	ds := loadCSV(t, "color,size", "red,S", "blue,M")
	got := Describe(ds)
	require.NotNil(t, got)
	assert.Empty(t, got)

	cat := DescribeCategorical(ds)
	require.Len(t, cat, 2)
	assert.Equal(t, 2, cat[0].Unique)
	assert.Equal(t, "blue", cat[0].Top)
	assert.Equal(t, 1, cat[0].Freq)
}

func TestCountValues(t *testing.T) {
	ds := loadCSV(t, "x,class", "1,A", "2,A", "3,B")
	vc, err := CountValues(ds, TargetColumn)
	require.NoError(t, err)
	assert.Equal(t, "class", vc.Column)
	assert.Equal(t, []ValueCount{{"A", 2}, {"B", 1}}, vc.Entries)
}

func TestCountValuesSumToRowCount(t *testing.T) {
	ds := loadCSV(t, csvRows...)
	for i := range ds.Columns {
		vc, err := CountValues(ds, i)
		require.NoError(t, err, "column %d", i)
		assert.Equal(t, ds.NumRows(), vc.Total()+vc.Absent, vc.Column)
	}
}

func TestCountValuesOrderingAndNumericKeys(t *testing.T) {
	ds := loadCSV(t, "n", "1", "1.0", "2", "1e0", "3", "2")
	vc, err := CountValues(ds, 0)
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{{"1", 3}, {"2", 2}, {"3", 1}}, vc.Entries)
}

func TestCountValuesInvalidColumn(t *testing.T) {
	ds := loadCSV(t, "a,b", "1,2")
	for _, idx := range []int{2, -3, 99} {
		_, err := CountValues(ds, idx)
		assert.ErrorIs(t, err, ErrInvalidColumn, "index %d", idx)
	}
	_, err := CountValues(&dataset.Dataset{}, TargetColumn)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = CountValuesByName(ds, "missing")
	assert.ErrorIs(t, err, ErrInvalidColumn)

	vc, err := CountValuesByName(ds, "A")
	require.NoError(t, err)
	assert.Equal(t, "a", vc.Column)
}

func TestCorrelate(t *testing.T) {
	ds := loadCSV(t, "x,y,z,label", "1,2,3,a", "2,4,1,b", "3,6,2,c")
	m := Correlate(ds)
	require.Equal(t, []string{"x", "y", "z"}, m.Columns)
	r, ok := m.Get("x", "y")
	require.True(t, ok)
	assert.InDelta(t, 1, r, 1e-12)
	for i := range m.Columns {
		assert.Equal(t, 1.0, m.Values[i][i], "diagonal %d", i)
		for j := range m.Columns {
			assert.Equal(t, m.Values[i][j], m.Values[j][i], "symmetry at %d,%d", i, j)
		}
	}
	r, _ = m.Get("x", "z")
	assert.InDelta(t, -0.5, r, 1e-12)
}

func TestCorrelateDegenerate(t *testing.T) {
	assert.True(t, Correlate(loadCSV(t, "x,label", "1,a", "2,b")).Empty(), "single numeric column")
	assert.True(t, Correlate(loadCSV(t, "a,b", "u,v")).Empty(), "categorical data")

	m := Correlate(loadCSV(t, "x,c,p", "1,5,1", "2,5,", "3,5,"))
	r, _ := m.Get("x", "c")
	assert.True(t, math.IsNaN(r), "constant column corr = %v", r)
	r, _ = m.Get("x", "p")
	assert.True(t, math.IsNaN(r), "single paired observation corr = %v", r)
	assert.Equal(t, 1.0, m.Values[1][1])
}

func TestGroupCount(t *testing.T) {
	ds := loadCSV(t, "class,x,y", "b,1,", "a,2,3", "b,,4", ",5,6", "a,7,8")
	gc, err := GroupCount(ds, "class", []string{"x", "Y"})
	require.NoError(t, err)
	assert.Equal(t, "class", gc.By)
	assert.Equal(t, []string{"x", "y"}, gc.Columns)
	require.Len(t, gc.Groups, 2)

	a, b := gc.Groups[0], gc.Groups[1]
	assert.Equal(t, "a", a.Key)
	assert.Equal(t, 2, a.Size)
	assert.Equal(t, []int{2, 2}, a.Counts)
	assert.Equal(t, "b", b.Key)
	assert.Equal(t, 2, b.Size)
	assert.Equal(t, []int{1, 1}, b.Counts)

	_, err = GroupCount(ds, "nope", nil)
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = GroupCount(ds, "class", []string{"nope"})
	assert.ErrorIs(t, err, ErrInvalidColumn)
}

func TestGroupCountNumericKeysSortNumerically(t *testing.T) {
	ds := loadCSV(t, "k", "10", "9", "10.0", "2")
	gc, err := GroupCount(ds, "k", nil)
	require.NoError(t, err)
	var keys []string
	for _, g := range gc.Groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"2", "9", "10"}, keys)
	assert.Equal(t, 2, gc.Groups[2].Size)
}

func TestDispatch(t *testing.T) {
	ds := loadCSV(t, csvRows...)
	res, err := Dispatch(ds, Request{Op: OpShape})
	require.NoError(t, err)
	require.NotNil(t, res.Shape)
	assert.Equal(t, ShapeResult{Rows: 6, Columns: 5}, *res.Shape)

	res, err = Dispatch(ds, Request{Op: OpValueCounts, Column: TargetColumn})
	require.NoError(t, err)
	require.NotNil(t, res.ValueCounts)
	assert.Equal(t, "virginica", res.ValueCounts.Entries[0].Value)

	res, err = Dispatch(ds, Request{Op: OpValueCounts, ColumnName: "note"})
	require.NoError(t, err)
	assert.Equal(t, "note", res.ValueCounts.Column)

	_, err = Dispatch(ds, Request{Op: OpValueCounts, Column: 7})
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = Dispatch(ds, Request{Op: "pie"})
	assert.ErrorIs(t, err, ErrUnknownOp)

	for _, op := range Ops {
		_, err := Dispatch(ds, Request{Op: op, Column: TargetColumn, By: "class"})
		assert.NoError(t, err, "Dispatch(%s)", op)
	}
}

func TestParseOp(t *testing.T) {
	cases := map[string]Op{
		"shape":        OpShape,
		" Describe ":   OpDescribe,
		"dtypes":       OpTypes,
		"corr":         OpCorrelation,
		"value-counts": OpValueCounts,
	}
	for in, want := range cases {
		got, err := ParseOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOp("heatmap")
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestJSONWritesNullForUndefinedStats(t *testing.T) {
	ds := loadCSV(t, "x,y", "1,", "2,")
	b, err := json.Marshal(Describe(ds))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"y","kind":"numeric","count":0,"mean":null`)
	assert.Contains(t, string(b), `"25%":1.25`)

	b, err = json.Marshal(Correlate(ds))
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["x","y"],"values":[[1,null],[null,1]]}`, string(b))
}

func TestBuildReportAndMarkdown(t *testing.T) {
	ds := loadCSV(t, csvRows...)
	opt := DefaultReportOptions()
	opt.SampleRows = 2
	opt.Correlations = true
	rep := BuildReport(ds, opt)

	assert.Equal(t, 6, rep.Rows)
	assert.Equal(t, 5, rep.Cols)
	assert.Len(t, rep.Samples, 2)

	md := rep.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: iris.csv",
		"Rows: 6",
		"- sepal_width: numeric (missing 16.7%)",
		"- measured_on: datetime (missing 16.7%)",
		"[DESCRIBE]",
		"| sepal_length | 6 | 5.933 |",
		"[VALUE COUNTS: class]",
		"- virginica: 3",
		"[CORRELATIONS]",
		"- sepal_length ~ sepal_width: r=",
		"[HEAD AND SAMPLE ROWS]",
		"| 5.1 | 3.5 | 2024-08-10 | first | setosa |",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[NOTES]")
}

func TestBuildReportClipsLongSampleValuesByRune(t *testing.T) {
	long := strings.Repeat("é", 100)
	ds := loadCSV(t, "id,label", "1,"+long)
	opt := DefaultReportOptions()
	opt.SampleRows = 1
	md := BuildReport(ds, opt).Markdown()

	assert.True(t, utf8.ValidString(md))
	assert.Contains(t, md, "| 1 | "+strings.Repeat("é", 77)+"... |")
}

func TestBuildReportEmptyDataset(t *testing.T) {
	rep := BuildReport(&dataset.Dataset{Name: "empty.csv"}, DefaultReportOptions())
	md := rep.Markdown()
	assert.Contains(t, md, "Rows: 0")
	assert.Contains(t, md, "Columns: 0")
	assert.Nil(t, rep.Target)
	assert.Empty(t, rep.Warnings)
}
