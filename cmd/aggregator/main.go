package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feed_ingestor/internal/cache"
	"feed_ingestor/internal/config"
	"feed_ingestor/internal/db"
	"feed_ingestor/internal/fetcher"
	"feed_ingestor/internal/ingest"
	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/metrics"
	"feed_ingestor/internal/parser"
	"feed_ingestor/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	logger.Init()
	defer logger.Log.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadEnv(".env"); err != nil {
		logger.Log.Fatalf("Env load error: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Log.Fatalf("Config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("Invalid config: %v", err)
	}

	database, err := db.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("DB connection error: %v", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		logger.Log.Fatalf("DB migration error: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []ingest.Option{
		ingest.WithWorkers(cfg.Workers),
		ingest.WithMetrics(m),
	}
	if cfg.RedisAddr != "" {
		seen := cache.New(cfg.RedisAddr, cache.DefaultTTL)
		defer seen.Close()
		if err := seen.Ping(ctx); err != nil {
			logger.Log.Warnf("Redis unavailable, continuing without seen-URL cache: %v", err)
		} else {
			opts = append(opts, ingest.WithCache(seen))
		}
	}

	var p parser.Parser = parser.NewPattern()
	if cfg.Parser == config.ParserGofeed {
		p = parser.NewGofeed()
	}

	orchestrator := ingest.New(
		database,
		fetcher.New(cfg.FetchTimeoutDuration(), cfg.UserAgent),
		p,
		cfg.Registry(),
		opts...,
	)

	if len(cfg.Poll.Users) > 0 {
		go ingest.StartPolling(
			ctx,
			orchestrator,
			cfg.Poll.Users,
			time.Duration(cfg.Poll.IntervalMinutes)*time.Minute,
			cfg.Poll.Window,
		)
	}

	srv := server.NewServer(orchestrator, database, m, reg)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Log.Errorf("Forced shutdown: %v", err)
	}
}
