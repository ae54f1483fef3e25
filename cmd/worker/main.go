package main

import (
	"context"
	"fmt"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"resumeforge/internal/config"
	"resumeforge/internal/database"
	"resumeforge/internal/editor"
	"resumeforge/internal/metrics"
	"resumeforge/internal/pdf"
	"resumeforge/internal/render"
	"resumeforge/internal/storage"
	"resumeforge/internal/tasks"
	"resumeforge/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	logger.Info("database connection ready for worker")

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init storage client: %w", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	renderer, err := render.New(logger)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	// worker 只读快照与写导出状态，不记录编辑历史。
	resumes := editor.NewService(db, editor.NewMemoryHistoryStore(1), logger, 0)

	pdfHandler := worker.NewPDFTaskHandler(
		resumes,
		renderer,
		pdf.NewRodPrinter(logger, cfg.Worker.RenderTimeout),
		storageClient,
		worker.NewRedisNotifier(redisClient),
		logger,
	)

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypePDFGenerate, pdfHandler)

	if cfg.Worker.MetricsPort > 0 {
		go serveMetrics(logger, cfg.Worker.MetricsPort)
	}

	logger.Info("worker service started",
		slog.String("redis_addr", cfg.Redis.Addr()),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)
	return server.Run(mux)
}

// serveMetrics 暴露 worker 进程的 Prometheus 指标，只应在内网可达。
func serveMetrics(logger *slog.Logger, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("worker metrics server stopped", slog.Any("error", err))
	}
}
