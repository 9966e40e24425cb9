package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	financeapp "github.com/duka/backend/internal/application/finance"
	inventoryapp "github.com/duka/backend/internal/application/inventory"
	"github.com/duka/backend/internal/infrastructure/config"
	"github.com/duka/backend/internal/infrastructure/logger"
	"github.com/duka/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel string
		timeout  time.Duration
	)

	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Maximum run time")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: logger.MapGormLogLevel(logLevel),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch command {
	case "debt-due-dates":
		debtService := financeapp.NewDebtService(
			persistence.NewGormTransactionScope(db.DB),
			persistence.NewRepositories(db.DB),
			inventoryapp.NewLedger(log),
			cfg.App.Location(),
			log,
		)
		changed, err := debtService.FixAutoDebtDueDates(ctx)
		if err != nil {
			log.Fatal("Backfill failed", zap.String("command", command), zap.Error(err))
		}
		log.Info("Auto-debt due dates fixed", zap.Int("changed", changed))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Duka Data Backfill Tool

Usage:
  backfill [flags] <command>

Commands:
  debt-due-dates        Reset auto-created debts to fall due 7 days after their sale

Flags:
  -timeout duration     Maximum run time (default: 10m)
  -log-level string     Log level (default: info)

Configuration is read from config.toml and DUKA_* environment variables.`)
}
