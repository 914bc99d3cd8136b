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

	"github.com/na2kera/ai-rent-navi/internal/address"
	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/extract"
	"github.com/na2kera/ai-rent-navi/internal/extract/gemini"
	"github.com/na2kera/ai-rent-navi/internal/history"
	"github.com/na2kera/ai-rent-navi/internal/prediction"
	"github.com/na2kera/ai-rent-navi/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		logger.Error("failed to open history store", "error", err, "driver", cfg.History.Driver)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("history store close", "error", err)
		}
	}()

	predictor := prediction.NewClient(cfg.Prediction, logger)

	var lookup server.AddressLookup
	if cfg.AddressEnabled() {
		lookup = address.NewClient(cfg.Address, logger)
	} else {
		logger.Info("address lookup disabled, missing ADDRESS_API_URL or credentials")
	}

	var extractor extract.FieldExtractor
	if cfg.ExtractEnabled() {
		gem, err := gemini.NewClient(ctx, cfg.Extract, logger)
		if err != nil {
			logger.Error("failed to build extraction client", "error", err)
			os.Exit(1)
		}
		extractor = gem
	} else {
		logger.Info("image extraction disabled, missing GEMINI_API_KEY")
	}

	srv := server.New(predictor, lookup, extractor, store, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http.serving", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve failed", "error", err)
			os.Exit(1)
		}
	}
}
