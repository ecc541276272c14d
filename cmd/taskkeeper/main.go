package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/taskkeeper/internal/cli"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/config"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/services"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}

}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	db, err := dbx.Open(ctx, cfg.DatabaseDSN, cfg.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if cfg.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		logger.Info(ctx, "migrations applied")
	}

	tasks := services.NewTaskService(db, rm, logger)
	auth := services.NewAuthManager(db, rm, tasks, logger, cfg)

	if cfg.AdminPassword != "" {
		password := []byte(cfg.AdminPassword)
		_, err := auth.SeedAdmin(ctx, cfg.AdminUserName, password)
		common.WipeByteArray(password)
		if err != nil {
			return fmt.Errorf("admin bootstrap: %w", err)
		}
	}

	cli.NewApp(auth, tasks, logger, cfg, os.Stdin, os.Stdout).Run(ctx)
	return nil
}
