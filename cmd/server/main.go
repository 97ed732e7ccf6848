package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"career-coach/internal/adapter/auth"
	"career-coach/internal/adapter/email"
	httpadapter "career-coach/internal/adapter/http"
	repo "career-coach/internal/adapter/repository"
	"career-coach/internal/adapter/storage"
	"career-coach/internal/config"
	"career-coach/internal/infrastructure/migration"
	"career-coach/internal/metrics"
	"career-coach/internal/usecase"
	"career-coach/pkg/ai"
	infra "career-coach/pkg/infrastructure"
	"career-coach/pkg/pdftext"

	"go.uber.org/zap"
)

var configFile = flag.String("config", "", "path to the config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := infra.NewLogger("career-coach", cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// infra setup
	db, err := infra.NewDB(ctx, cfg.Database.DSN, infra.DBOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := migration.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	}

	ledger, err := newLedger(ctx, cfg, db)
	if err != nil {
		return err
	}

	signer, err := newSigner(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	maxArtifact, _ := cfg.Storage.MaxArtifactBytes()
	fetcher := storage.NewFetcher(signer, maxArtifact, logger)

	extractor := pdftext.New(pdftext.WithObserver(func(strategy, outcome string) {
		metrics.ExtractionTotal.WithLabelValues(strategy, outcome).Inc()
	}))

	provider, err := newProvider(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	llm := ai.NewClient(provider, cfg.LLM.Timeout, logger, ai.WithObserver(func(task string, took time.Duration, _ error) {
		metrics.LLMCallDuration.WithLabelValues(task).Observe(took.Seconds())
	}))

	verifier := newVerifier(cfg.Auth)
	gate := auth.NewGate(verifier, logger)

	results := repo.NewResultsRepo(db)
	plans := repo.NewPlansRepo(db)
	reminders := repo.NewRemindersRepo(db)
	jobs := usecase.NewJobCache(repo.NewJobsRepo(db))

	runner := usecase.NewTaskRunner(ledger, cfg.Limit, fetcher, extractor, llm, results, plans, logger)
	coach := usecase.NewCoach(runner, plans, reminders, jobs, logger)

	hasher, err := usecase.NewTokenHasher(cfg.Invitations.HashSecret)
	if err != nil {
		return fmt.Errorf("invitations: %w", err)
	}
	notifier := email.NewNotifier(email.NewAPISender(cfg.Email.APIURL, cfg.Email.APIKey, cfg.Email.From), logger)
	invitations := usecase.NewInvitations(repo.NewInvitationsRepo(db), plans, notifier, hasher,
		cfg.Invitations.TTL, cfg.Invitations.AcceptURL, logger)

	renderer := infra.NewChromedpRenderer(cfg.Export.ChromePath, cfg.Export.Timeout)
	exporter := usecase.NewExporter(results, renderer, logger)
	usage := usecase.NewUsage(repo.NewUsageRepo(db), cfg.Limit, logger)

	bodyLimit, _ := cfg.Server.BodyLimitBytes()
	app := httpadapter.NewApp(httpadapter.AppConfig{
		BodyLimit:    bodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, logger)
	httpadapter.NewHandler(coach, invitations, exporter, usage, db, logger).Register(app, gate)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("http server starting",
			zap.String("addr", addr),
			zap.String("llm_provider", provider.Name()),
			zap.String("quota_backend", cfg.Quota.Backend),
			zap.String("auth_mode", cfg.Auth.Mode))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	// invitation emails still in flight
	notifier.Wait()
	return nil
}

func newLedger(ctx context.Context, cfg *config.Config, db *sql.DB) (usecase.QuotaLedger, error) {
	switch cfg.Quota.Backend {
	case "redis":
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return repo.NewRedisQuotaLedger(client), nil
	case "memory":
		return repo.NewMemoryQuotaLedger(), nil
	default:
		return repo.NewPostgresQuotaLedger(db), nil
	}
}

func newSigner(ctx context.Context, s config.StorageConfig) (storage.Signer, error) {
	if s.Provider == "s3" {
		return storage.NewS3Signer(ctx, s.Region, s.Endpoint, s.AccessKeyID, s.SecretAccessKey, s.Bucket)
	}
	return storage.NewMinioSigner(s.Endpoint, s.AccessKeyID, s.SecretAccessKey, s.Region, s.Bucket, s.UseSSL)
}

func newProvider(ctx context.Context, c config.LLMConfig) (ai.Provider, error) {
	if c.Provider == "googleai" {
		return ai.NewGoogleAIProvider(ctx, c.APIKey, c.Model)
	}
	return ai.NewAnthropicProvider(c.APIKey, c.Model), nil
}

func newVerifier(a config.AuthConfig) auth.Verifier {
	if a.Mode == "remote" {
		return auth.NewRemoteVerifier(a.URL, a.AnonKey)
	}
	return auth.NewJWTVerifier(a.JWTSecret)
}
