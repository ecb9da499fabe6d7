package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dsexplorer/internal/chart"
	cfgpkg "github.com/KaramelBytes/dsexplorer/internal/config"
	"github.com/KaramelBytes/dsexplorer/internal/logging"
	"github.com/KaramelBytes/dsexplorer/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set dsexplorer configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "datasets_dir: %s\n", cfg.DatasetsDir)
		if cfg.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(w, "decimal_separator: %q\n", cfg.DecimalSeparator)
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(w, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(w, "max_rows: %d\n", cfg.MaxRows)
		fmt.Fprintf(w, "missing_values: %s\n", strings.Join(cfg.MissingValues, ","))
		fmt.Fprintf(w, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(w, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(w, "correlations: %t\n", cfg.Correlations)
		fmt.Fprintf(w, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(w, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(w, "chart_format: %s\n", cfg.ChartFormat)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file and env, not from this run's flag overrides.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			if cfgFile == "" || fileExists(cfgFile) {
				return err
			}
			d := cfgpkg.Defaults()
			c = &d
		}
		switch key {
		case "datasets_dir":
			c.DatasetsDir = val
		case "delimiter":
			c.Delimiter = val
		case "decimal_separator":
			c.DecimalSeparator = val
		case "thousands_separator":
			if val == "space" {
				val = " "
			}
			c.ThousandsSeparator = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			c.MaxRows = i
		case "missing_values":
			c.MissingValues = splitList(val)
		case "sample_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for sample_rows: %v", val)
			}
			c.SampleRows = i
		case "output_format":
			f, err := render.ParseFormat(val)
			if err != nil {
				return err
			}
			c.OutputFormat = string(f)
		case "correlations":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for correlations: %w", err)
			}
			c.Correlations = b
		case "chart_width", "chart_height":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			if key == "chart_width" {
				c.ChartWidth = i
			} else {
				c.ChartHeight = i
			}
		case "chart_format":
			f, err := chart.ParseFormat(val)
			if err != nil {
				return err
			}
			c.ChartFormat = string(f)
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// splitList splits a comma-separated value; an empty value yields an empty list.
func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
