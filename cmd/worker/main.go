package main

import (
	"context"
	"os/signal"
	"syscall"

	"go-employee-mgmt/internal/app"
	"go-employee-mgmt/internal/config"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Format: cfg.Log.Format,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	apperror.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunWorker(ctx, cfg); err != nil {
		log.Fatal("run worker failed", zap.Error(err))
	}
}
