package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/gift-cart/internal/cart/app"
	"github.com/jcmexdev/gift-cart/internal/cart/httpx"
	"github.com/jcmexdev/gift-cart/internal/cart/journal"
	"github.com/jcmexdev/gift-cart/internal/cart/journal/sqlite"
	"github.com/jcmexdev/gift-cart/internal/pkg/cache"
	"github.com/jcmexdev/gift-cart/internal/pkg/config"
	"github.com/jcmexdev/gift-cart/internal/pkg/interceptors"
	"github.com/jcmexdev/gift-cart/internal/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		slog.Error("cart api stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled or a server fails.
// Every resource it opens is released before it returns.
func run(ctx context.Context) error {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := telemetry.InitLogger(cfg.LogLevel)

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Environment: cfg.AppEnv,
		})
		if err != nil {
			return fmt.Errorf("initialise tracer: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	replay := newReplayCache(ctx, cfg, log)

	var repo journal.Repository
	if cfg.JournalPath != "" {
		db, err := sqlite.Open(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("open journal %q: %w", cfg.JournalPath, err)
		}
		defer db.Close()
		repo = db
		log.Info("cart journal enabled", "path", cfg.JournalPath)
	}

	svc := app.NewService(repo, log)
	router := httpx.NewRouter(httpx.NewHandler(svc, log), httpx.RouterConfig{
		Replay:      replay,
		ReplayTTL:   cfg.IdempotencyTTL,
		Log:         log,
		ServiceName: cfg.Tracing.ServiceName,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCAddr, err)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor(log)),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	errs := make(chan error, 2)
	go func() {
		log.Info("cart api http running", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("cart api grpc health running", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			errs <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errs:
		log.Error("server failed", "error", runErr)
	}

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", "error", err)
	}
	grpcServer.GracefulStop()

	return runErr
}

// newReplayCache prefers Redis and falls back to process memory when no
// address is configured or Redis does not answer.
func newReplayCache(ctx context.Context, cfg config.Config, log *slog.Logger) cache.Cache {
	const namespace = "cart"
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(namespace)
	}

	rc := cache.NewRedisCache(cfg.RedisAddr, namespace)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, rc); err != nil {
		log.Warn("redis unavailable, using in-memory replay cache", "addr", cfg.RedisAddr, "error", err)
		return cache.NewMemoryCache(namespace)
	}
	return rc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
