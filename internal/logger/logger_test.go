package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuild_InvalidLevel(t *testing.T) {
	_, err := Build(config.LoggingConfig{Level: "loud", Console: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing log level")
}

func TestBuild_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(config.LoggingConfig{Level: "warn", Console: true}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", zap.Int("positions", 4))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
}

func TestBuild_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "calc.log")
	log, err := build(config.LoggingConfig{Level: "info", File: path, MaxSizeMB: 1}, &bytes.Buffer{})
	require.NoError(t, err)

	log.Info("calculation completed")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"calculation completed"`)
}

func TestBuild_NoSinksIsNop(t *testing.T) {
	log, err := build(config.LoggingConfig{Level: "info"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestResultFields(t *testing.T) {
	res := &calculator.CalculationResult{
		Variant:           calculator.VariantDerivedRisk,
		PositionType:      calculator.PositionShort,
		NumberOfPositions: 2,
		AverageEntryPrice: 101.5,
	}

	keys := map[string]bool{}
	for _, f := range ResultFields(res) {
		keys[f.Key] = true
	}
	assert.True(t, keys["average_entry"])
	assert.True(t, keys["leverage"])

	res.Variant = calculator.VariantManualRisk
	keys = map[string]bool{}
	for _, f := range ResultFields(res) {
		keys[f.Key] = true
	}
	assert.False(t, keys["average_entry"])
}
