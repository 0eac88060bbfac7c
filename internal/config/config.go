// Package config loads calculator configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/form"
	"github.com/ducminhle1904/dca-calculator/internal/leverage"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for a config file
const DefaultPath = "configs/config.yaml"

type Config struct {
	App        AppConfig        `yaml:"app"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Leverage   leverage.Limits  `yaml:"leverage"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Output     OutputConfig     `yaml:"output"`
}

type AppConfig struct {
	Env string `yaml:"env"`
}

// CalculatorConfig holds engine options and the form defaults
type CalculatorConfig struct {
	Variant             string     `yaml:"variant"`
	PercentageTolerance float64    `yaml:"percentage_tolerance"`
	Defaults            form.Input `yaml:"defaults"`
}

// LoggingConfig configures zap and lumberjack rotation. An empty File
// disables file output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type ServerConfig struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		App: AppConfig{Env: "development"},
		Calculator: CalculatorConfig{
			Variant:             string(calculator.VariantManualRisk),
			PercentageTolerance: 0,
			Defaults:            form.DefaultInput(),
		},
		Leverage: leverage.DefaultLimits(),
		Logging: LoggingConfig{
			Level:      "info",
			Console:    true,
			File:       "",
			MaxSizeMB:  50,
			MaxBackups: 10,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Server: ServerConfig{
			ListenAddress:   ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Output: OutputConfig{Directory: "results"},
	}
}

// Load reads path over the defaults, then applies DCA_* environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config YAML: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DCA_ENV"); v != "" {
		c.App.Env = v
	}
	if v := os.Getenv("DCA_VARIANT"); v != "" {
		c.Calculator.Variant = v
	}
	if v := os.Getenv("DCA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DCA_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("DCA_LISTEN_ADDRESS"); v != "" {
		c.Server.ListenAddress = v
	}
	if v := os.Getenv("DCA_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("DCA_DEFAULT_CAPITAL"); v != "" {
		c.Calculator.Defaults.AvailableAmount = v
	}
	if v := os.Getenv("DCA_PERCENTAGE_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DCA_PERCENTAGE_TOLERANCE: %w", err)
		}
		c.Calculator.PercentageTolerance = f
	}
	if v := os.Getenv("DCA_MAX_LEVERAGE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DCA_MAX_LEVERAGE: %w", err)
		}
		c.Leverage.Max = f
	}
	return nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var problems []string

	if _, err := calculator.ParseVariant(c.Calculator.Variant); err != nil {
		problems = append(problems, fmt.Sprintf("calculator.variant: %v", err))
	}
	if c.Calculator.PercentageTolerance < 0 || c.Calculator.PercentageTolerance > 1 {
		problems = append(problems, fmt.Sprintf("calculator.percentage_tolerance must be between 0 and 1, got: %g", c.Calculator.PercentageTolerance))
	}
	if c.Leverage.Min <= 0 {
		problems = append(problems, fmt.Sprintf("leverage.min must be positive, got: %g", c.Leverage.Min))
	}
	if c.Leverage.Max < c.Leverage.Min {
		problems = append(problems, fmt.Sprintf("leverage.max (%g) must be >= leverage.min (%g)", c.Leverage.Max, c.Leverage.Min))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be one of debug, info, warn, error, got: %q", c.Logging.Level))
	}
	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		problems = append(problems, fmt.Sprintf("logging.max_size_mb must be positive, got: %d", c.Logging.MaxSizeMB))
	}
	if c.Server.ListenAddress == "" {
		problems = append(problems, "server.listen_address is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdown_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		problems = append(problems, "server.max_body_bytes must be positive")
	}

	if len(problems) == 0 {
		return nil
	}
	if len(problems) == 1 {
		return fmt.Errorf("config validation error: %s", problems[0])
	}
	return fmt.Errorf("config validation errors:\n  - %s", strings.Join(problems, "\n  - "))
}

// Variant returns the parsed calculator variant. Call after Validate.
func (c *Config) Variant() calculator.Variant {
	v, _ := calculator.ParseVariant(c.Calculator.Variant)
	return v
}

// EngineOptions returns the calculator options
func (c *Config) EngineOptions() calculator.Options {
	return calculator.Options{PercentageTolerance: c.Calculator.PercentageTolerance}
}
