package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dsexplorer/internal/analysis"
	"github.com/KaramelBytes/dsexplorer/internal/render"
	"github.com/KaramelBytes/dsexplorer/internal/utils"
)

var (
	sumOutput     string
	sumSampleRows int
	sumCorr       bool
	sumTarget     string
	sumTopValues  int
	sumQuiet      bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary <files...>",
	Short: "Write a full report for one or more datasets (globs allowed)",
	Long: `Builds a report with shape, schema, descriptive statistics, value counts of the
target column, optional correlations and sample rows. With several inputs, -o names a
directory and each report is written as <name>.summary.md (or .json with --format json).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		f := outputFormat()
		if f == render.FormatTable {
			f = render.FormatMarkdown
		}

		opt := analysis.DefaultReportOptions()
		opt.SampleRows = cfg.SampleRows
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = sumSampleRows
		}
		opt.Correlations = cfg.Correlations || sumCorr
		opt.TopValues = sumTopValues

		toDir := sumOutput != "" && (len(files) > 1 || isDir(sumOutput))
		total := len(files)
		for i, path := range files {
			if !sumQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := loadDataset(path)
			if err != nil {
				return err
			}
			o := opt
			if sumTarget != "" {
				idx := ds.ColumnIndex(sumTarget)
				if idx < 0 {
					return fmt.Errorf("%w: %q", analysis.ErrInvalidColumn, sumTarget)
				}
				o.Target = idx
			}
			rep := analysis.BuildReport(ds, o)

			var buf bytes.Buffer
			if err := render.Report(&buf, rep, f); err != nil {
				return err
			}
			if sumOutput == "" {
				if _, err := out.Write(buf.Bytes()); err != nil {
					return err
				}
				continue
			}
			dest := sumOutput
			if toDir {
				dest = uniquePath(filepath.Join(sumOutput, reportName(path, f)))
			}
			if err := utils.SafeWriteFile(dest, buf.Bytes()); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !sumQuiet {
				fmt.Fprintf(out, "✓ Wrote summary to %s\n", dest)
			}
		}
		return nil
	},
}

// expandInputs resolves globs and bare names, dropping duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 && filepath.Base(arg) == arg && cfg.DatasetsDir != "" {
			matches, _ = filepath.Glob(filepath.Join(cfg.DatasetsDir, arg))
		}
		if len(matches) == 0 {
			// treat as literal path; loading reports a missing file
			matches = []string{resolveFile(arg)}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func reportName(path string, f render.Format) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if f == render.FormatJSON {
		return base + ".summary.json"
	}
	return base + ".summary.md"
}

// uniquePath appends __2, __3, ... before the suffix until path is unused.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	dir, name := filepath.Split(path)
	stem, suffix := name, ""
	if i := strings.Index(name, ".summary."); i >= 0 {
		stem, suffix = name[:i], name[i:]
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, idx, suffix))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			logger.Warn("existing summary detected, writing alongside", "path", cand)
			return cand
		}
	}
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "output file (one input) or directory (several inputs)")
	summaryCmd.Flags().IntVar(&sumSampleRows, "sample-rows", 5, "number of sample rows to include (overrides config)")
	summaryCmd.Flags().BoolVar(&sumCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	summaryCmd.Flags().StringVar(&sumTarget, "target", "", "column for value counts (default: the last column)")
	summaryCmd.Flags().IntVar(&sumTopValues, "top", 10, "maximum value-count entries to list (0 = all)")
	summaryCmd.Flags().BoolVar(&sumQuiet, "quiet", false, "suppress progress and non-essential output")
}
