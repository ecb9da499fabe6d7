package cmd

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dsexplorer/internal/analysis"
	"github.com/KaramelBytes/dsexplorer/internal/testutil"
)

const irisCSV = `sepal,petal,species
5.1,1.4,setosa
4.9,1.3,setosa
6.3,4.9,versicolor
5.8,,versicolor
7.1,5.9,virginica
6.5,5.1,virginica
`

// runCmd executes the root command with args and returns what it wrote to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values and Changed state persist across invocations
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(testutil.Writer(t))
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupDatasets isolates HOME and returns a datasets folder holding iris.csv.
func setupDatasets(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "iris.csv", irisCSV)
	return dir
}

func TestCLI_Files(t *testing.T) {
	dir := setupDatasets(t)
	testutil.WriteFile(t, dir, "notes.txt", "not a dataset")
	testutil.WriteFile(t, dir, "more.tsv", "a\tb\n1\t2\n")

	out := mustRun(t, "files", "--dir", dir, "--format", "json")
	var got struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"iris.csv", "more.tsv"}, got.Files)
}

func TestCLI_ShapeColumnsTypes(t *testing.T) {
	dir := setupDatasets(t)

	out := mustRun(t, "shape", "iris.csv", "--dir", dir, "--format", "json")
	var shape analysis.ShapeResult
	require.NoError(t, json.Unmarshal([]byte(out), &shape))
	assert.Equal(t, analysis.ShapeResult{Rows: 6, Columns: 3}, shape)

	assert.Equal(t, "6\n", mustRun(t, "shape", "iris.csv", "--dir", dir, "--by", "rows"))
	assert.Equal(t, "3\n", mustRun(t, "shape", "iris.csv", "--dir", dir, "--by", "columns"))

	out = mustRun(t, "columns", "iris.csv", "--dir", dir, "--format", "json")
	var cols []string
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	assert.Equal(t, []string{"sepal", "petal", "species"}, cols)

	out = mustRun(t, "types", filepath.Join(dir, "iris.csv"), "--format", "json")
	var types []analysis.ColumnType
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.Len(t, types, 3)
	assert.Equal(t, analysis.KindNumeric, types[1].Kind)
	assert.Equal(t, analysis.KindCategorical, types[2].Kind)
}

func TestCLI_DescribeAll(t *testing.T) {
	dir := setupDatasets(t)
	out := mustRun(t, "describe", "iris.csv", "--dir", dir)
	assert.Contains(t, out, "sepal")
	assert.NotContains(t, out, "setosa")

	out = mustRun(t, "describe", "iris.csv", "--dir", dir, "--all")
	assert.Contains(t, out, "species")
	assert.Contains(t, out, "setosa")
}

func TestCLI_ValueCounts(t *testing.T) {
	dir := setupDatasets(t)

	out := mustRun(t, "value-counts", "iris.csv", "--dir", dir, "--format", "json")
	var vc analysis.ValueCounts
	require.NoError(t, json.Unmarshal([]byte(out), &vc))
	assert.Equal(t, "species", vc.Column)
	assert.Equal(t, 6, vc.Total())
	assert.Equal(t, analysis.ValueCount{Value: "setosa", Count: 2}, vc.Entries[0])

	out = mustRun(t, "value-counts", "iris.csv", "--dir", dir, "--column", "PETAL", "--format", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &vc))
	assert.Equal(t, "petal", vc.Column)
	assert.Equal(t, 1, vc.Absent)

	_, err := runCmd(t, "value-counts", "iris.csv", "--dir", dir, "--index", "9")
	assert.ErrorIs(t, err, analysis.ErrInvalidColumn)
}

func TestCLI_CorrAndGroupCount(t *testing.T) {
	dir := setupDatasets(t)

	out := mustRun(t, "corr", "iris.csv", "--dir", dir, "--format", "json")
	var m struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, []string{"sepal", "petal"}, m.Columns)
	require.NotNil(t, m.Values[0][1])
	assert.Greater(t, *m.Values[0][1], 0.9)

	out = mustRun(t, "group-count", "iris.csv", "--dir", dir, "--by", "species", "--columns", "petal", "--format", "json")
	var gc analysis.GroupCounts
	require.NoError(t, json.Unmarshal([]byte(out), &gc))
	require.Len(t, gc.Groups, 3)
	assert.Equal(t, "versicolor", gc.Groups[1].Key)
	assert.Equal(t, 2, gc.Groups[1].Size)
	assert.Equal(t, []int{1}, gc.Groups[1].Counts)

	_, err := runCmd(t, "group-count", "iris.csv", "--dir", dir)
	assert.Error(t, err)
}

func TestCLI_Show(t *testing.T) {
	dir := setupDatasets(t)
	out := mustRun(t, "show", "iris.csv", "--dir", dir, "-n", "2", "--columns", "species,sepal")
	assert.Contains(t, out, "(2 rows x 2 columns)")
	assert.Contains(t, out, "setosa")
	assert.NotContains(t, out, "virginica")

	out = mustRun(t, "show", "iris.csv", "--dir", dir, "--rows=-1")
	assert.Contains(t, out, "(6 rows x 3 columns)")
	assert.Contains(t, out, "NaN")
}

func TestCLI_LoadOptionFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	p := testutil.WriteFile(t, dir, "euro.csv", "name;amount\na;1.234,5\nb;2,5\n")

	out := mustRun(t, "describe", p, "--delimiter", ";", "--decimal", ",", "--thousands", ".", "--format", "json")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "amount", rows[0]["name"])
	assert.InDelta(t, 1237.0, rows[0]["max"].(float64)+rows[0]["min"].(float64), 1e-9)
}

func TestCLI_MissingFile(t *testing.T) {
	dir := setupDatasets(t)
	_, err := runCmd(t, "shape", "nope.csv", "--dir", dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCLI_Plot(t *testing.T) {
	dir := setupDatasets(t)
	outDir := t.TempDir()

	png := filepath.Join(outDir, "species.png")
	out := mustRun(t, "plot", "iris.csv", "--dir", dir, "--kind", "pie", "-o", png)
	assert.Contains(t, out, "✓ Wrote pie chart")
	b, err := os.ReadFile(png)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))

	svg := filepath.Join(outDir, "series.svg")
	mustRun(t, "plot", "iris.csv", "--dir", dir, "--kind", "area", "--columns", "sepal,petal", "-o", svg)
	b, err = os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")

	_, err = runCmd(t, "plot", "iris.csv", "--dir", dir, "--kind", "box", "-o", png)
	assert.Error(t, err)
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	mustRun(t, "config", "set", "sample_rows", "7")
	mustRun(t, "config", "set", "output_format", "md")
	out := mustRun(t, "config", "show")
	assert.Contains(t, out, "sample_rows: 7")
	assert.Contains(t, out, "output_format: markdown")

	b, err := os.ReadFile(filepath.Join(home, ".dsexplorer", "config.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "sample_rows: 7"))

	_, err = runCmd(t, "config", "set", "nope", "1")
	assert.Error(t, err)
	_, err = runCmd(t, "config", "set", "chart_format", "gif")
	assert.Error(t, err)
}

func TestCLI_Stdin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(testutil.Writer(t))
	rootCmd.SetIn(strings.NewReader(irisCSV))
	rootCmd.SetArgs([]string{"shape", "-", "--by", "rows"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "6\n", out.String())
}
