package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"pulsedesk.app/pulse/common/id"
	"pulsedesk.app/pulse/common/logger"
	"pulsedesk.app/pulse/common/otel"
	"pulsedesk.app/pulse/core/config"
	"pulsedesk.app/pulse/core/db"
	"pulsedesk.app/pulse/internal/http/middleware"
	httprouter "pulsedesk.app/pulse/internal/http/router"
	"pulsedesk.app/pulse/internal/queue"
	"pulsedesk.app/pulse/internal/secrets"
	"pulsedesk.app/pulse/internal/sender"
	"pulsedesk.app/pulse/internal/service"
	"pulsedesk.app/pulse/internal/signature"
	"pulsedesk.app/pulse/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet, OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "pulse server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Queue.Stream)

	eventProducer := queue.NewRedisProducer(redisClient, cfg.Queue.Stream, slog.Default())
	defer eventProducer.Close()

	stores := store.NewStores(database.Pool())

	secretsSvc, err := secrets.NewService(stores.Secrets(), cfg.Secrets.EncryptionKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize secrets service", "error", err)
		os.Exit(1)
	}

	services := service.NewServices(
		stores,
		service.NewTxRunner(database),
		eventProducer,
		sender.New(cfg.Sender, secretsSvc, slog.Default()),
		cfg.Jobs,
		slog.Default(),
	)

	scheduler, err := setupScheduler(ctx, cfg.Jobs, services)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, stores, secretsSvc)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Let an in-flight cron run finish before closing the pool.
	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		slog.WarnContext(shutdownCtx, "scheduler jobs still running at shutdown deadline")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupScheduler(ctx context.Context, jobs config.JobsConfig, services *service.Services) (*cron.Cron, error) {
	loc, err := time.LoadLocation(jobs.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", jobs.Timezone, err)
	}

	scheduler := cron.New(cron.WithLocation(loc))

	dispatch := services.Dispatch()
	if _, err := scheduler.AddFunc(jobs.DispatchSpec, func() {
		stats, err := dispatch.DispatchBatch(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "dispatch run failed", "error", err)
			return
		}
		if stats.Picked > 0 {
			slog.InfoContext(ctx, "dispatch run complete",
				"picked", stats.Picked,
				"sent", stats.Sent,
				"failed", stats.Failed)
		}
	}); err != nil {
		return nil, fmt.Errorf("scheduling dispatch job: %w", err)
	}

	digest := services.Digest()
	if _, err := scheduler.AddFunc(jobs.DigestSpec, func() {
		if err := digest.RunDaily(ctx); err != nil {
			slog.ErrorContext(ctx, "digest run failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("scheduling digest job: %w", err)
	}

	mentions := services.Mentions()
	if _, err := scheduler.AddFunc(jobs.MentionsSpec, func() {
		if err := mentions.BatchRecent(ctx); err != nil {
			slog.ErrorContext(ctx, "mentions batch failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("scheduling mentions job: %w", err)
	}

	slog.InfoContext(ctx, "scheduler configured",
		"dispatch", jobs.DispatchSpec,
		"digest", jobs.DigestSpec,
		"mentions", jobs.MentionsSpec,
		"timezone", jobs.Timezone)

	return scheduler, nil
}

func setupRouter(cfg config.Config, services *service.Services, stores *store.Stores, secretsSvc *secrets.Service) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, stores, secretsSvc,
		signature.NewVerifier(cfg.Ingest.HMACSecret),
		httprouter.RouterConfig{
			AdminAPIKey: cfg.AdminAPIKey,
			TraceHeader: cfg.Queue.TraceHeaderName,
		})

	return router
}

const banner = `
██████╗ ██╗   ██╗██╗     ███████╗███████╗    ███████╗███████╗██████╗ ██╗   ██╗███████╗██████╗
██╔══██╗██║   ██║██║     ██╔════╝██╔════╝    ██╔════╝██╔════╝██╔══██╗██║   ██║██╔════╝██╔══██╗
██████╔╝██║   ██║██║     ███████╗█████╗      ███████╗█████╗  ██████╔╝██║   ██║█████╗  ██████╔╝
██╔═══╝ ██║   ██║██║     ╚════██║██╔══╝      ╚════██║██╔══╝  ██╔══██╗╚██╗ ██╔╝██╔══╝  ██╔══██╗
██║     ╚██████╔╝███████╗███████║███████╗    ███████║███████╗██║  ██║ ╚████╔╝ ███████╗██║  ██║
╚═╝      ╚═════╝ ╚══════╝╚══════╝╚══════╝    ╚══════╝╚══════╝╚═╝  ╚═╝  ╚═══╝  ╚══════╝╚═╝  ╚═╝
`
