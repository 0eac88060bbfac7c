// Package logger builds the zap loggers used by the calculator commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Build creates a zap.Logger from cfg. The console core writes to stderr so
// stdout stays free for command output; the file core writes JSON through
// lumberjack rotation when cfg.File is set.
func Build(cfg config.LoggingConfig) (*zap.Logger, error) {
	return build(cfg, os.Stderr)
}

func build(cfg config.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(fileWriter),
			lvl,
		))
	}

	if cfg.Console {
		consoleCfg := encoderCfg
		consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(console),
			lvl,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// ResultFields summarizes a calculation for structured logs
func ResultFields(res *calculator.CalculationResult) []zap.Field {
	fields := []zap.Field{
		zap.String("variant", string(res.Variant)),
		zap.String("position_type", res.PositionType.String()),
		zap.Int("positions", res.NumberOfPositions),
		zap.Int("orders", len(res.LimitOrders)),
		zap.Float64("investment_per_position", res.InvestmentPerPosition),
		zap.Float64("risk_per_position", res.RiskAmountPerPosition),
		zap.Float64("total_risk", res.TotalRiskAmount),
		zap.Float64("leverage", res.Leverage),
		zap.Float64("reference_price", res.ReferencePrice),
	}
	if res.HasAverageEntry() {
		fields = append(fields, zap.Float64("average_entry", res.AverageEntryPrice))
	}
	return fields
}
