package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"task-notifier/api"
	"task-notifier/cache"
	"task-notifier/common"
	"task-notifier/component"
	"task-notifier/config"
	"task-notifier/middleware"
	"task-notifier/storage"
	"task-notifier/storage/sqlite"
	handler "task-notifier/system"
	"task-notifier/ws"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "task-notifier",
		Usage:   "Task tracker with login notification summaries",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			summaryCmd(),
		},
	}
}

func InitLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	})

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(encoder, w, level),
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	)
	return zap.New(core, zap.AddCaller()), nil
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	common.SetJWTSecret(cfg.JWTSecret)
	return cfg, logger, nil
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(c.Context, cfg, logger)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	store := storage.NewStore(db)

	var limiter *middleware.RateLimiter
	if err := cache.InitRedis(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, caching and rate limiting disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		limiter = middleware.NewRateLimiter(cache.RedisClient, cfg.RateLimit, cfg.RateWindow)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := ws.NewHub(logger.Named("ws"))
	go hub.Run(ctx.Done())

	pool := handler.NewNotificationWorkerPool(store, hub, cfg.Workers, logger.Named("worker"))
	pool.Start(ctx)

	h := handler.NewHandler(store, handler.Options{
		Pool:         pool,
		Hub:          hub,
		Logger:       logger.Named("http"),
		Metrics:      handler.NewSummaryMetrics(reg),
		Announcement: cfg.Announcement(),
		CacheTTL:     cfg.CacheTTL,
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.NewRouter(api.RouterConfig{
			Handler:     h,
			Hub:         hub,
			RateLimiter: limiter,
			Metrics:     middleware.NewMetrics(reg),
			Gatherer:    reg,
			RateLimit:   cfg.RateLimit,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	pool.Stop()
	logger.Info("server stopped")
	return nil
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			db, err := sqlite.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}
}

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Print the login summary of a user as JSON",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: "User ID"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			db, err := sqlite.Open(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			now := time.Now()
			bundle, err := storage.NewStore(db).LoadBundle(c.Context, c.Int("user"), now)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(handler.SummaryResponse{
				Visible: component.ShouldOpen(bundle),
				Summary: component.Render(bundle, now),
			})
		},
	}
}
