package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dsexplorer/internal/chart"
	"github.com/KaramelBytes/dsexplorer/internal/utils"
)

var (
	plotKind    string
	plotColumn  string
	plotColumns []string
	plotBy      string
	plotBins    int
	plotTitle   string
	plotOutput  string
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Draw a pie, bar, line, area or histogram chart to a PNG or SVG file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := chart.ParseKind(plotKind)
		if err != nil {
			return err
		}
		fallback, err := chart.ParseFormat(cfg.ChartFormat)
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		out := plotOutput
		if out == "" {
			base := filepath.Base(ds.Name)
			out = fmt.Sprintf("%s.%s.%s", strings.TrimSuffix(base, filepath.Ext(base)), kind, fallback)
		}
		spec := chart.Spec{
			Kind:    kind,
			Column:  plotColumn,
			Columns: plotColumns,
			By:      plotBy,
			Bins:    plotBins,
			Title:   plotTitle,
			Width:   cfg.ChartWidth,
			Height:  cfg.ChartHeight,
			Format:  chart.FormatFor(out, fallback),
		}
		logger.Debug("rendering chart", "kind", string(kind), "format", string(spec.Format), "out", out)
		var buf bytes.Buffer
		if err := chart.Render(&buf, ds, spec); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", kind, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotKind, "kind", "bar", "chart kind: pie|bar|line|area|hist")
	plotCmd.Flags().StringVar(&plotColumn, "column", "", "pie/bar/hist column (default: last column, or first numeric for hist)")
	plotCmd.Flags().StringSliceVar(&plotColumns, "columns", nil, "line/area series, or stacked counts for bar with --by")
	plotCmd.Flags().StringVar(&plotBy, "by", "", "bar: group by this column")
	plotCmd.Flags().IntVar(&plotBins, "bins", 10, "hist: number of bins")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", "chart title")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "output image path (.png or .svg)")
}
