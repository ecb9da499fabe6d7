package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dsexplorer/internal/analysis"
	"github.com/KaramelBytes/dsexplorer/internal/dataset"
	"github.com/KaramelBytes/dsexplorer/internal/render"
)

var (
	showRows    int
	showColumns []string

	shapeBy string

	describeAll bool

	vcColumn string
	vcIndex  int

	gcBy      string
	gcColumns []string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List loadable datasets in the datasets folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := dataset.ListFiles(cfg.DatasetsDir)
		if err != nil {
			return err
		}
		return render.Files(cmd.OutOrStdout(), cfg.DatasetsDir, names, outputFormat())
	},
}

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the first rows of a dataset, optionally for selected columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		if len(showColumns) > 0 {
			if ds, err = dataset.Select(ds, showColumns); err != nil {
				return err
			}
		}
		if showRows >= 0 {
			if ds, err = dataset.Head(ds, showRows); err != nil {
				return err
			}
		}
		return render.Dataset(cmd.OutOrStdout(), ds, outputFormat())
	},
}

var shapeCmd = &cobra.Command{
	Use:   "shape <file>",
	Short: "Print the number of rows and columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		rows, cols := analysis.Shape(ds)
		switch shapeBy {
		case "":
			return runOp(cmd, ds, analysis.Request{Op: analysis.OpShape})
		case "rows":
			fmt.Fprintln(cmd.OutOrStdout(), rows)
		case "columns", "cols":
			fmt.Fprintln(cmd.OutOrStdout(), cols)
		default:
			return fmt.Errorf("invalid --by: %s (use rows|columns)", shapeBy)
		}
		return nil
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List column names in order",
	Args:  cobra.ExactArgs(1),
	RunE:  opRunner(func() analysis.Request { return analysis.Request{Op: analysis.OpColumns} }),
}

var typesCmd = &cobra.Command{
	Use:     "types <file>",
	Aliases: []string{"dtypes"},
	Short:   "Show the inferred kind of every column",
	Args:    cobra.ExactArgs(1),
	RunE:    opRunner(func() analysis.Request { return analysis.Request{Op: analysis.OpTypes} }),
}

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Descriptive statistics of numeric columns (--all adds categorical ones)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		if err := runOp(cmd, ds, analysis.Request{Op: analysis.OpDescribe}); err != nil {
			return err
		}
		if !describeAll {
			return nil
		}
		return runOp(cmd, ds, analysis.Request{Op: analysis.OpDescribeCategorical})
	},
}

var valueCountsCmd = &cobra.Command{
	Use:   "value-counts <file>",
	Short: "Count distinct values of a column (default: the last column)",
	Args:  cobra.ExactArgs(1),
	RunE: opRunner(func() analysis.Request {
		return analysis.Request{Op: analysis.OpValueCounts, Column: vcIndex, ColumnName: vcColumn}
	}),
}

var corrCmd = &cobra.Command{
	Use:     "corr <file>",
	Aliases: []string{"correlation"},
	Short:   "Pearson correlation matrix of numeric columns",
	Args:    cobra.ExactArgs(1),
	RunE:    opRunner(func() analysis.Request { return analysis.Request{Op: analysis.OpCorrelation} }),
}

var groupCountCmd = &cobra.Command{
	Use:   "group-count <file>",
	Short: "Count non-absent values per group of a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if gcBy == "" {
			return fmt.Errorf("--by is required")
		}
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		return runOp(cmd, ds, analysis.Request{Op: analysis.OpGroupCount, By: gcBy, Columns: gcColumns})
	},
}

// opRunner builds a RunE that loads args[0] and runs a single operation.
func opRunner(req func() analysis.Request) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		return runOp(cmd, ds, req())
	}
}

func runOp(cmd *cobra.Command, ds *dataset.Dataset, req analysis.Request) error {
	logger.Debug("running operation", "op", string(req.Op), "file", ds.Name)
	res, err := analysis.Dispatch(ds, req)
	if err != nil {
		return err
	}
	return render.Result(cmd.OutOrStdout(), res, outputFormat())
}

func init() {
	rootCmd.AddCommand(filesCmd, showCmd, shapeCmd, columnsCmd, typesCmd, describeCmd, valueCountsCmd, corrCmd, groupCountCmd)

	showCmd.Flags().IntVarP(&showRows, "rows", "n", 5, "number of leading rows to show (negative shows all)")
	showCmd.Flags().StringSliceVar(&showColumns, "columns", nil, "comma-separated column names to show")

	shapeCmd.Flags().StringVar(&shapeBy, "by", "", "print only rows or columns")

	describeCmd.Flags().BoolVar(&describeAll, "all", false, "also summarize categorical and text columns")

	valueCountsCmd.Flags().StringVar(&vcColumn, "column", "", "column name (takes precedence over --index)")
	valueCountsCmd.Flags().IntVar(&vcIndex, "index", analysis.TargetColumn, "column index; negative counts from the end")

	groupCountCmd.Flags().StringVar(&gcBy, "by", "", "column to group by")
	groupCountCmd.Flags().StringSliceVar(&gcColumns, "columns", nil, "comma-separated columns to count (default: group sizes only)")
}
