package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dsexplorer/internal/config"
	"github.com/KaramelBytes/dsexplorer/internal/dataset"
	"github.com/KaramelBytes/dsexplorer/internal/logging"
	"github.com/KaramelBytes/dsexplorer/internal/render"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagLogLevel string
	flagDir      string
	flagFormat   string

	// Loading flags (override config if set)
	flagDelimiter  string
	flagDecimal    string
	flagThousands  string
	flagMaxRows    int
	flagSheetName  string
	flagSheetIndex int

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "dsexplorer",
	Short: "Explore tabular datasets from the terminal",
	Long: `dsexplorer loads CSV, TSV and XLSX files and summarizes them: shape, column
types, descriptive statistics, value counts, correlations, grouped counts and charts.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: applyFlags,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.dsexplorer/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug output")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	pf.StringVar(&flagDir, "dir", "", "datasets folder used to resolve bare file names (overrides config)")
	pf.StringVar(&flagFormat, "format", "", "output format: table|markdown|json (overrides config)")

	pf.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default by extension)")
	pf.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|','")
	pf.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	pf.IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to load")
	pf.IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so commands still run
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		d := cfgpkg.Defaults()
		c = &d
	}
	cfg = c
}

// applyFlags layers command-line overrides on top of the loaded config and
// builds the logger.
func applyFlags(cmd *cobra.Command, _ []string) error {
	if cfg == nil {
		loadConfig()
	}
	f := cmd.Root().PersistentFlags()
	if f.Changed("dir") {
		cfg.DatasetsDir = flagDir
	}
	if f.Changed("format") {
		cfg.OutputFormat = flagFormat
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		cfg.DecimalSeparator = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.ThousandsSeparator = flagThousands
		if flagThousands == "space" {
			cfg.ThousandsSeparator = " "
		}
	}
	if f.Changed("max-rows") {
		cfg.MaxRows = flagMaxRows
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := render.ParseFormat(cfg.OutputFormat); err != nil {
		return err
	}
	l, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, debug)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func outputFormat() render.Format {
	f, err := render.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return render.FormatTable
	}
	return f
}

// resolveFile maps a bare file name into the datasets folder when it exists
// there; other paths are used as given.
func resolveFile(name string) string {
	if filepath.Base(name) != name || cfg.DatasetsDir == "" {
		return name
	}
	inDir := filepath.Join(cfg.DatasetsDir, name)
	if _, err := os.Stat(inDir); err == nil {
		return inDir
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return inDir
}

func loadOptions() dataset.LoadOptions {
	opt := cfg.LoadOptions()
	opt.Sheet = flagSheetName
	opt.SheetIndex = flagSheetIndex
	return opt
}

// loadDataset resolves and loads one dataset, logging any loader warnings.
// "-" reads CSV from stdin.
func loadDataset(name string) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	if name == "-" {
		logger.Debug("loading dataset", "path", "stdin")
		ds, err = dataset.Read(rootCmd.InOrStdin(), "stdin", loadOptions())
		if err != nil {
			return nil, fmt.Errorf("load stdin: %w", err)
		}
	} else {
		path := resolveFile(name)
		logger.Debug("loading dataset", "path", path)
		if ds, err = dataset.Load(path, loadOptions()); err != nil {
			return nil, err
		}
	}
	for _, w := range ds.Warnings {
		logger.Warn(w, "file", ds.Name)
	}
	logger.Debug("dataset loaded", "file", ds.Name, "rows", ds.NumRows(), "columns", ds.NumColumns())
	return ds, nil
}
