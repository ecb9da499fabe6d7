package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// Global configuration structure.
type Global struct {
	DatasetsDir string `mapstructure:"datasets_dir" yaml:"datasets_dir"`

	// Loading
	Delimiter          string   `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string   `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string   `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int      `mapstructure:"max_rows" yaml:"max_rows"`
	MissingValues      []string `mapstructure:"missing_values" yaml:"missing_values"`

	// Output
	SampleRows   int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	Correlations bool   `mapstructure:"correlations" yaml:"correlations"`

	// Charts
	ChartWidth  int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height"`
	ChartFormat string `mapstructure:"chart_format" yaml:"chart_format"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Defaults returns the built-in configuration.
func Defaults() Global {
	return Global{
		DatasetsDir:      "datasets",
		DecimalSeparator: ".",
		MissingValues:    append([]string(nil), dataset.DefaultMissing...),
		SampleRows:       5,
		OutputFormat:     "table",
		ChartWidth:       800,
		ChartHeight:      500,
		ChartFormat:      "png",
		LogLevel:         "warn",
	}
}

// Dir returns ~/.dsexplorer.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dsexplorer"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dsexplorer/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command-line flags are applied
// on top by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DSEXPLORER")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("datasets_dir", d.DatasetsDir)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("decimal_separator", d.DecimalSeparator)
	v.SetDefault("thousands_separator", d.ThousandsSeparator)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("missing_values", d.MissingValues)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("correlations", d.Correlations)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("chart_format", d.ChartFormat)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks separator settings.
func (c *Global) Validate() error {
	if _, err := sep(c.Delimiter, "delimiter"); err != nil {
		return err
	}
	if _, err := sep(c.DecimalSeparator, "decimal_separator"); err != nil {
		return err
	}
	if _, err := sep(c.ThousandsSeparator, "thousands_separator"); err != nil {
		return err
	}
	if c.DecimalSeparator != "" && c.DecimalSeparator == c.ThousandsSeparator {
		return errors.New("decimal_separator and thousands_separator must differ")
	}
	if c.MaxRows < 0 {
		return errors.New("max_rows must be >= 0")
	}
	return nil
}

// LoadOptions maps the loading settings onto dataset.LoadOptions.
func (c *Global) LoadOptions() dataset.LoadOptions {
	opt := dataset.DefaultLoadOptions()
	opt.Delimiter, _ = sep(c.Delimiter, "delimiter")
	if r, _ := sep(c.DecimalSeparator, "decimal_separator"); r != 0 {
		opt.Format.DecimalSeparator = r
	}
	opt.Format.ThousandsSeparator, _ = sep(c.ThousandsSeparator, "thousands_separator")
	opt.MaxRows = c.MaxRows
	if c.MissingValues != nil {
		opt.Missing = c.MissingValues
	}
	return opt
}

// sep parses a single-rune separator; "tab" and `\t` mean a tab.
func sep(s, key string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid %s: %q (want a single character)", key, s)
	}
	return r[0], nil
}
