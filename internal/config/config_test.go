package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, calculator.VariantManualRisk, cfg.Variant())
	assert.Equal(t, "5", cfg.Calculator.Defaults.RiskPercentage)
	assert.Equal(t, "4", cfg.Calculator.Defaults.NumberOfPositions)
	assert.Equal(t, "40,30,30", cfg.Calculator.Defaults.BuyPercentages)
	assert.Equal(t, 125.0, cfg.Leverage.Max)
	assert.Equal(t, ":8080", cfg.Server.ListenAddress)
	assert.Equal(t, calculator.Options{}, cfg.EngineOptions())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
calculator:
  variant: derived
  percentage_tolerance: 0.01
  defaults:
    available_amount: "2500"
    total_buys: "4"
    buy_percentages: "25,25,25,25"
leverage:
  max: 50
logging:
  level: debug
server:
  listen_address: "127.0.0.1:9090"
  shutdown_timeout: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, calculator.VariantDerivedRisk, cfg.Variant())
	assert.Equal(t, 0.01, cfg.EngineOptions().PercentageTolerance)
	assert.Equal(t, "2500", cfg.Calculator.Defaults.AvailableAmount)
	assert.Equal(t, "25,25,25,25", cfg.Calculator.Defaults.BuyPercentages)
	assert.Equal(t, "5", cfg.Calculator.Defaults.RiskPercentage, "unset keys keep defaults")
	assert.Equal(t, 50.0, cfg.Leverage.Max)
	assert.Equal(t, 1.0, cfg.Leverage.Min)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DCA_VARIANT", "derived")
	t.Setenv("DCA_LOG_LEVEL", "warn")
	t.Setenv("DCA_DEFAULT_CAPITAL", "10000")
	t.Setenv("DCA_PERCENTAGE_TOLERANCE", "0.001")
	t.Setenv("DCA_MAX_LEVERAGE", "20")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, calculator.VariantDerivedRisk, cfg.Variant())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "10000", cfg.Calculator.Defaults.AvailableAmount)
	assert.Equal(t, 0.001, cfg.Calculator.PercentageTolerance)
	assert.Equal(t, 20.0, cfg.Leverage.Max)
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("DCA_MAX_LEVERAGE", "lots")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DCA_MAX_LEVERAGE")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "calculator: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		message string
	}{
		{"variant", func(c *Config) { c.Calculator.Variant = "magic" }, "calculator.variant"},
		{"tolerance", func(c *Config) { c.Calculator.PercentageTolerance = -1 }, "percentage_tolerance"},
		{"leverage min", func(c *Config) { c.Leverage.Min = 0 }, "leverage.min"},
		{"leverage order", func(c *Config) { c.Leverage.Max = 0.5 }, "leverage.max"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"listen", func(c *Config) { c.Server.ListenAddress = "" }, "server.listen_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Calculator.Variant = "magic"
	cfg.Logging.Level = "trace"
	assert.Contains(t, cfg.Validate().Error(), "config validation errors:")
}
