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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"

	"epaper-clip/internal/adapter/clip_http"
	"epaper-clip/internal/di"
	"epaper-clip/internal/infra"
	"epaper-clip/internal/infra/config"
	"epaper-clip/internal/infra/logger"
	clipotel "epaper-clip/internal/infra/otel"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize OpenTelemetry and Logger
	otelCfg := clipotel.ConfigFrom(cfg, version)
	shutdownOTel, err := clipotel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize otel: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownOTel(sctx)
	}()

	log := logger.NewWithOTel(otelCfg.Enabled)
	slog.SetDefault(log)

	// 3. Initialize DB (optional)
	var dbPool *pgxpool.Pool
	if cfg.DatabaseEnabled() {
		dbPool, err = infra.NewPostgresDB(ctx, cfg.DSN(), infra.PoolConfig{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			log.Error("failed to connect to db", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
	} else {
		log.Info("DB_HOST not set, clip images will be embedded as data urls")
	}

	// 4. Wire components
	app := di.NewApplicationComponents(cfg, dbPool, log, di.Options{})
	if app.ClipImageRepo != nil {
		if err := app.ClipImageRepo.EnsureSchema(ctx); err != nil {
			log.Error("failed to prepare clip image schema", "error", err)
			os.Exit(1)
		}
	}
	if _, err := app.Branding.Snapshot(ctx); err != nil {
		// Not fatal: the next request retries the fetch.
		log.Warn("initial branding fetch failed", "error", err)
	}

	// 5. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = clip_http.NewValidator()
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(clip_http.OTelStatus())
	}
	e.Use(clip_http.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// 6. Register Handlers
	shareLimiter := clip_http.NewRateLimiter(rate.Limit(cfg.ShareRateLimit), cfg.ShareBurst)
	go shareLimiter.Run(ctx)

	handler := clip_http.NewHandler(app.ClipShare, app.Branding, app.ImageStore, cfg.PublicBaseURL, cfg.ShareCaption, log)
	handler.RegisterRoutes(e, shareLimiter.Middleware())

	// 7. Health Checks and Metrics
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if dbPool != nil {
			if err := dbPool.Ping(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// 8. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr, "version", version)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	// 9. Graceful Shutdown
	<-ctx.Done()
	log.Info("Shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}
