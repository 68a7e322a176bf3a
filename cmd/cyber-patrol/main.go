package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-cyber-patrol/internal/api"
	"github.com/mr1hm/go-cyber-patrol/internal/config"
	"github.com/mr1hm/go-cyber-patrol/internal/ingestion"
	"github.com/mr1hm/go-cyber-patrol/internal/logging"
	"github.com/mr1hm/go-cyber-patrol/internal/metrics"
	"github.com/mr1hm/go-cyber-patrol/internal/repository"
	"github.com/mr1hm/go-cyber-patrol/internal/statsclient"
	"github.com/mr1hm/go-cyber-patrol/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "views", cfg.Views.Names())

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	broadcaster := stream.NewBroadcaster()

	mgr := ingestion.NewManager(cfg, db, broadcaster, m)
	if err := mgr.Seed(ctx); err != nil {
		logging.Fatalf("Failed to seed records: %v", err)
	}
	mgr.Start(ctx)

	stats := statsclient.New(cfg.StatsBaseURL(),
		statsclient.WithHTTPClient(statsclient.NewHTTPClient(cfg.Stats.Timeout)),
		statsclient.WithObserver(m.ObserveFetch),
	)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(db, broadcaster, stats, cfg.Views, m)
	router := api.NewRouter(handler, cfg.RateLimit)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close() // ends open record streams

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
