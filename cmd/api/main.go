package main

import (
	"time"

	"go-employee-mgmt/internal/app"
	"go-employee-mgmt/internal/bootstrap"
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

	a, err := app.BuildApp(cfg)
	if err != nil {
		log.Fatal("build app failed", zap.Error(err))
	}

	err = bootstrap.StartHTTPServer(
		bootstrap.WithCORS(a.Router, cfg.CORS.AllowedOrigins),
		bootstrap.ServerConfig{
			Port:            cfg.App.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: bootstrap.DefaultShutdownTimeout,
		},
		func() {
			if err := a.Close(); err != nil {
				log.Error("close resources failed", zap.Error(err))
			}
		},
	)
	if err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}
