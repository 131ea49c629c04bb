package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/httpx"
	"github.com/kdiomande/rewards-platform/internal/pkg/cache"
	"github.com/kdiomande/rewards-platform/internal/pkg/telemetry"
	"github.com/kdiomande/rewards-platform/internal/storage/sqlite"
	"github.com/kdiomande/rewards-platform/internal/workflow"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "rewards-server"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	db, err := sqlite.Open(getEnv("DB_PATH", "./data/rewards.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	policy, err := workflow.ParseReservationPolicy(getEnv("RESERVE_STOCK_AT", "add"))
	if err != nil {
		slog.Error("invalid reservation policy", "error", err)
		os.Exit(1)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	validator := auth.NewValidator([]byte(secret))

	redisCache := cache.NewRedisCache(getEnv("REDIS_ADDR", "localhost:6379"), "rewards")

	handler := httpx.NewHandler(
		workflow.NewCatalogService(db, redisCache),
		workflow.NewCartService(db, policy),
		workflow.NewOrderWorkflow(db, policy),
		workflow.NewStockService(db),
		workflow.NewNotificationService(db),
	)

	addr := ":" + getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(httpx.NewRouter(handler, validator), "rewards-api"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("rewards API running", "addr", addr, "reservation_policy", policy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("rewards API stopped")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
