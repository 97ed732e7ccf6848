// Command reminders sends milestone reminder emails that have come due.
// It runs one sweep and exits; schedule it with cron.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"career-coach/internal/adapter/email"
	repo "career-coach/internal/adapter/repository"
	"career-coach/internal/config"
	"career-coach/internal/usecase"
	infra "career-coach/pkg/infrastructure"

	"go.uber.org/zap"
)

var configFile = flag.String("config", "", "path to the config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := infra.NewLogger("career-coach-reminders", cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := infra.NewDB(ctx, cfg.Database.DSN, infra.DBOptions{MaxOpenConns: 2})
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	sender := email.NewAPISender(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From)
	sweeper := usecase.NewReminderSweeper(repo.NewRemindersRepo(db), sender, cfg.Reminders.BatchSize, logger)

	res, err := sweeper.Sweep(ctx)
	if err != nil {
		logger.Error("sweep failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("sweep finished", zap.Int("sent", res.Sent), zap.Int("failed", res.Failed))
	if res.Failed > 0 {
		os.Exit(2)
	}
}
