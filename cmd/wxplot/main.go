package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/cmatteri/wxplot/internal/api/http"
	"github.com/cmatteri/wxplot/internal/cache"
	"github.com/cmatteri/wxplot/internal/config"
	"github.com/cmatteri/wxplot/internal/logger"
	"github.com/cmatteri/wxplot/internal/plot"
	"github.com/cmatteri/wxplot/internal/scheduler"
	"github.com/cmatteri/wxplot/internal/store"
	"github.com/cmatteri/wxplot/internal/units"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Archive database and reader, with a circuit breaker at the edge.
	db, err := store.Connect(cfg.DB)
	if err != nil {
		zlog.Fatal("failed to connect to archive database", zap.Error(err))
	}
	defer db.Close()

	pg := store.NewPostgres(db)
	reader := store.NewBreaker(pg, zlog)

	engine := plot.NewEngine(reader, units.Resolver{}, cfg.Timezone)

	seriesCache, err := cache.New(cfg.CacheMaxEntries, cfg.CacheTTL)
	if err != nil {
		zlog.Fatal("failed to create series cache", zap.Error(err))
	}
	defer seriesCache.Close()

	// Periodic archive-stats heartbeat.
	sched := scheduler.New(cfg.Bindings, cfg.StatsInterval, pg, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "wxplot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "wxplot",
		})
	})

	// API routes.
	handler := httpapi.NewHandler(engine, seriesCache, cfg.Bindings, zlog)
	httpapi.RegisterRoutes(app, handler)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()
	zlog.Info("wxplot listening", zap.String("port", cfg.Port))

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
