// Package main is the entry point for the PRT relighting viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/prt-relight/internal/app"
	"github.com/Faultbox/prt-relight/internal/assets"
	"github.com/Faultbox/prt-relight/internal/config"
	"github.com/Faultbox/prt-relight/internal/logger"
	"github.com/Faultbox/prt-relight/internal/viewer"
	"github.com/Faultbox/prt-relight/pkg/sh"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== PRT Relight Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr := assets.NewManagerFromConfig(cfg.Assets, logger.Named("assets"))
	defer mgr.Close()
	loader := assets.NewLoader(mgr, logger.Named("loader"))
	defer loader.Close()

	ctrl, err := app.New(cfg, sh.DefaultLibrary(), loader, logger.Named("app"))
	if err != nil {
		logger.Error("failed to create controller", zap.Error(err))
		os.Exit(1)
	}

	v, err := viewer.New(cfg, ctrl)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
