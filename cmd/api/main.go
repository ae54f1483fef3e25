package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeforge/internal/api"
	"resumeforge/internal/auth"
	"resumeforge/internal/config"
	"resumeforge/internal/database"
	"resumeforge/internal/editor"
	"resumeforge/internal/importer"
	"resumeforge/internal/metrics"
	"resumeforge/internal/render"
	"resumeforge/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("database ready", slog.String("host", cfg.Database.Host), slog.String("db", cfg.Database.Name))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init storage client: %w", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	authService, err := auth.NewAuthServiceFromFiles(
		cfg.Auth.PrivateKeyPath,
		cfg.Auth.PublicKeyPath,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	renderer, err := render.New(logger)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	history := editor.NewRedisHistoryStore(redisClient, cfg.Editor.HistoryTTL, cfg.Editor.HistorySize)
	editorService := editor.NewService(db, history, logger, cfg.API.MaxResumes)

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, api.Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Queue:    asynqClient,
		Storage:  storageClient,
		Auth:     authService,
		Editor:   editorService,
		Renderer: renderer,
		Importer: newImporter(ctx, cfg, logger),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newImporter 按配置装配病毒扫描与 Gemini 解析；未配置 API key 时只用规则解析。
func newImporter(ctx context.Context, cfg *config.Config, logger *slog.Logger) *importer.Importer {
	opts := []importer.Option{
		importer.WithLogger(logger),
		importer.WithMaxBytes(cfg.Import.MaxBytes),
		importer.WithAITimeout(cfg.Gemini.Timeout),
		importer.WithObserver(func(source importer.Source) {
			metrics.ObserveImportParse(string(source))
		}),
	}
	if cfg.Import.ClamdAddr != "" {
		opts = append(opts, importer.WithScanner(importer.NewClamdScanner(cfg.Import.ClamdAddr)))
	}

	parser, err := importer.NewGeminiParser(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	switch {
	case err == nil:
		opts = append(opts, importer.WithAI(parser))
		logger.Info("gemini resume parser enabled", slog.String("model", cfg.Gemini.Model))
	case errors.Is(err, importer.ErrAIUnavailable):
		logger.Info("gemini api key not set, using heuristic resume parser")
	default:
		logger.Warn("gemini client init failed, using heuristic resume parser", slog.Any("error", err))
	}

	return importer.New(opts...)
}
