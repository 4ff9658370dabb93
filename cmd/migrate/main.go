package main

import (
	"context"
	"fmt"
	"os"

	"go-employee-mgmt/internal/app"
	"go-employee-mgmt/internal/config"
	"go-employee-mgmt/internal/job"
	"go-employee-mgmt/internal/migration"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/rbac/infra"
	"go-employee-mgmt/internal/shared/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var down, skipSeed bool

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.BoolVar(&down, "down", false, "revert the most recent migration instead of applying pending ones")
	flagSet.BoolVar(&skipSeed, "skip-seed", false, "do not seed the job catalog")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level, File: cfg.Log.File})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx := context.Background()

	gormDB, sqlDB, err := app.OpenDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	runner := migration.NewRunner(sqlDB)

	if down {
		v, err := runner.Down(ctx)
		if err != nil {
			return err
		}
		log.Info("rollback finished", zap.Int("version", v))
		return nil
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		return err
	}
	log.Info("migrations finished", zap.Ints("applied", applied))

	if skipSeed {
		return nil
	}

	enforcer, err := infra.NewEnforcer(rbac.DefaultRules())
	if err != nil {
		return err
	}
	jobs := job.NewService(job.NewRepository(gormDB), rbac.NewService(enforcer), nil)

	added, err := jobs.Seed(ctx, job.DefaultTitles)
	if err != nil {
		return err
	}
	log.Info("job catalog seeded", zap.Int64("added", added))
	return nil
}
