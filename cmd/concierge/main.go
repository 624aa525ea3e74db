package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/halcyonlabs/concierge/internal/audit"
	"github.com/halcyonlabs/concierge/internal/bot"
	"github.com/halcyonlabs/concierge/internal/config"
	"github.com/halcyonlabs/concierge/internal/httpadmin"
	"github.com/halcyonlabs/concierge/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archive, err := audit.NewArchive(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("audit archive init failed: %v", err)
	}
	defer archive.Close()

	stream := audit.NewBroadcaster()

	b, err := bot.New(cfg, logger, metrics, archive, stream)
	if err != nil {
		log.Fatalf("bot init failed: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("discord connect failed: %v", err)
	}
	defer b.Close()

	admin := httpadmin.New(cfg, b, archive, stream)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: admin.Router(),
	}

	go func() {
		logger.Info("admin server listening", zap.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		_ = httpServer.Close()
	}

	logger.Info("shutdown complete")
}
