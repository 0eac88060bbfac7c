package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ducminhle1904/dca-calculator/cmd/common"
	"github.com/ducminhle1904/dca-calculator/internal/api"
	"github.com/ducminhle1904/dca-calculator/internal/config"
	"github.com/ducminhle1904/dca-calculator/internal/logger"
	"go.uber.org/zap"
)

const AppName = "dca-server"

func main() {
	fs := flag.NewFlagSet(AppName, flag.ExitOnError)
	commonFlags := common.RegisterCommonFlags(fs)
	listen := fs.String("listen", "", "Listen address (overrides server.listen_address)")
	fs.Parse(os.Args[1:])

	usage := common.NewUsageFormatter(AppName, "HTTP API for the DCA investment calculator").
		AddExample("dca-server -config configs/config.yaml", "Serve with a config file").
		AddExample("DCA_LISTEN_ADDRESS=:9090 dca-server -verbose", "Serve on another port with debug logs")
	if common.CheckHelpAndVersion(os.Stdout, fs, commonFlags, usage) {
		return
	}

	if err := run(commonFlags, *listen); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(flags *common.CommonFlags, listen string) error {
	envLoaded, envErr := common.LoadEnvFile(*flags.EnvFile)

	cfg, err := config.Load(*flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	flags.ApplyToConfig(cfg)
	if listen != "" {
		cfg.Server.ListenAddress = listen
	}

	log, err := logger.Build(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger error: %w", err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Warn("environment file not loaded", zap.Error(envErr))
	} else if envLoaded {
		log.Debug("environment loaded", zap.String("path", *flags.EnvFile))
	}

	log.Info("starting",
		zap.String("app", AppName),
		zap.String("version", common.GetFullVersion()),
		zap.String("env", cfg.App.Env),
		zap.String("variant", cfg.Variant().String()),
		zap.Float64("percentage_tolerance", cfg.Calculator.PercentageTolerance),
		zap.Float64("max_leverage", cfg.Leverage.Max))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(cfg, log).Run(ctx); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
