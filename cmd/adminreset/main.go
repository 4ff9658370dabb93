package main

import (
	"context"
	"fmt"
	"os"

	"go-employee-mgmt/internal/app"
	"go-employee-mgmt/internal/auth"
	"go-employee-mgmt/internal/config"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/rbac/infra"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/logger"
	"go-employee-mgmt/internal/user"

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
	var req user.BulkResetRequest

	flagSet := pflag.NewFlagSet("adminreset", pflag.ContinueOnError)
	flagSet.StringVar(&req.Email, "email", "", "email of the admin to create")
	flagSet.StringVar(&req.Password, "password", "", "password of the admin to create (falls back to ADMIN_PASSWORD)")
	flagSet.BoolVar(&req.Confirm, "confirm", false, "confirm that every existing user and employee is deleted")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "Deletes ALL users (employees cascade) and creates a single admin.")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage: adminreset --email EMAIL --password PASSWORD --confirm")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if req.Password == "" {
		req.Password = os.Getenv("ADMIN_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level, File: cfg.Log.File})
	defer log.Sync()
	zap.ReplaceGlobals(log)

	apperror.Init()

	gormDB, sqlDB, err := app.OpenDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	enforcer, err := infra.NewEnforcer(rbac.DefaultRules())
	if err != nil {
		return err
	}

	svc := user.NewService(
		sqlDB,
		user.NewRepository(gormDB),
		auth.NewRepository(gormDB),
		rbac.NewService(enforcer),
		cfg.App.BcryptCost,
	)

	res, err := svc.BulkReset(context.Background(), user.Operator, req)
	if err != nil {
		if apperror.IsInternal(err) {
			return err
		}
		return fmt.Errorf("%s", apperror.ToHTTP(err).Message)
	}

	fmt.Printf("deleted %d users (%d employees), admin %s created with id %d\n",
		res.UsersDeleted, res.EmployeesDeleted, res.AdminEmail, res.AdminID)
	return nil
}
