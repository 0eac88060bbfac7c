package main

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/ducminhle1904/dca-calculator/cmd/common"
	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/config"
	calcerr "github.com/ducminhle1904/dca-calculator/internal/errors"
	"github.com/ducminhle1904/dca-calculator/internal/form"
	"github.com/ducminhle1904/dca-calculator/internal/leverage"
	"github.com/ducminhle1904/dca-calculator/internal/logger"
	"github.com/ducminhle1904/dca-calculator/pkg/reporting"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const AppName = "dca-calculator"

// Exit codes
const (
	exitOK         = 0
	exitRejected   = 1
	exitUsage      = 2
	exitInfraError = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app is the wiring shared by one-shot and interactive mode
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	console  *common.Console
	engine   *calculator.Engine
	leverage *leverage.Calculator
	reports  *reporting.ReportingManager
	variant  calculator.Variant
	stdout   io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := NewCalcFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if common.CheckHelpAndVersion(stdout, fs, flags.Common, buildUsage()) {
		return exitOK
	}

	console := common.NewConsole(stderr).FromFlags(flags.Common)

	if err := ValidateCalcFlags(flags); err != nil {
		console.Error("%v", err)
		return exitUsage
	}

	if _, err := common.LoadEnvFile(*flags.Common.EnvFile); err != nil {
		console.Warn("%v", err)
	}

	cfg, err := config.Load(*flags.Common.ConfigPath)
	if err != nil {
		console.Error("Configuration error: %v", err)
		return exitInfraError
	}
	flags.Common.ApplyToConfig(cfg)
	// zap writes to the console only with -verbose
	cfg.Logging.Console = *flags.Common.Verbose

	log, err := logger.Build(cfg.Logging)
	if err != nil {
		console.Error("Logger error: %v", err)
		return exitInfraError
	}
	defer log.Sync()

	variant := cfg.Variant()
	if *flags.Variant != "" {
		variant, _ = calculator.ParseVariant(*flags.Variant)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		console:  console,
		engine:   calculator.NewEngine(cfg.EngineOptions()),
		leverage: leverage.NewCalculatorWithLimits(cfg.Leverage),
		reports: reporting.NewReportingManager(reporting.ReportingConfig{
			OutputDirectory: cfg.Output.Directory,
			PlainTables:     *flags.Common.NoColors,
		}),
		variant: variant,
		stdout:  stdout,
	}

	input := flags.Input(cfg.Calculator.Defaults)

	if *flags.Interactive {
		session := form.NewSession(a.engine, variant, cfg.Calculator.Defaults)
		session.SetInput(input)
		if err := newInteractive(a, session, stdin).Run(); err != nil {
			console.Error("%v", err)
			return exitInfraError
		}
		return exitOK
	}

	format, _ := reporting.ParseFormat(*flags.Format)
	return a.oneShot(input, format, *flags.Out)
}

func (a *app) oneShot(input form.Input, format reporting.Format, out string) int {
	params, err := form.Collect(input, a.variant)
	if err != nil {
		return a.rejected(err)
	}

	res, err := a.engine.Compute(params)
	if err != nil {
		return a.rejected(err)
	}

	rep := a.report(res)

	if format == reporting.FormatXLSX || out != "" {
		path, err := a.reports.Export(rep, format, out)
		if err != nil {
			a.log.Error("export failed", zap.String("format", string(format)), zap.Error(err))
			a.console.Error("Export failed: %v", err)
			return exitInfraError
		}
		a.log.Info("report exported", zap.String("path", path), zap.String("id", rep.ID))
		a.console.Success("Report written to %s", path)
		return exitOK
	}

	if err := a.reports.Reporter().Write(a.stdout, rep, format); err != nil {
		a.console.Error("Output failed: %v", err)
		return exitInfraError
	}
	return exitOK
}

// report wraps a result with an ID and its leverage assessment
func (a *app) report(res *calculator.CalculationResult) reporting.Report {
	rep := reporting.Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Result:      res,
		Assessment:  a.leverage.Assess(res),
	}
	a.log.Info("calculation completed", append(logger.ResultFields(res), zap.String("id", rep.ID))...)
	return rep
}

// rejected reports a validation failure, logged at info
func (a *app) rejected(err error) int {
	if ce, ok := calcerr.AsCalcError(err); ok {
		a.log.Info("calculation rejected", zap.String("kind", string(ce.Kind)), zap.String("field", ce.Field))
		a.console.Error("%s", ce.UserMessage())
		return exitRejected
	}
	a.console.Error("%v", err)
	return exitInfraError
}
