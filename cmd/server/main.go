package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/tenderbrief/internal/api"
	"github.com/dgallion1/tenderbrief/internal/config"
	"github.com/dgallion1/tenderbrief/internal/heuristic"
	"github.com/dgallion1/tenderbrief/internal/pipeline"
	"github.com/dgallion1/tenderbrief/internal/remote"
	"github.com/dgallion1/tenderbrief/internal/summarizer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client is built even without a key so api-mode requests get the
	// missing-key error rather than a nil dereference.
	llm := remote.NewClient(remote.Config{
		APIKey:    cfg.OpenRouterAPIKey,
		Model:     cfg.OpenRouterModel,
		BaseURL:   cfg.OpenRouterBaseURL,
		Timeout:   cfg.OpenRouterTimeout,
		RateLimit: cfg.OpenRouterRateLimit,
	}, log)

	svc := summarizer.New(
		heuristic.New(heuristic.WithCurrencySymbols(cfg.CurrencySymbols...)),
		llm,
		summarizer.Options{
			DefaultMode:    summarizer.Mode(cfg.DefaultMode),
			MaxInputBytes:  cfg.MaxInputBytes,
			FallbackToMock: cfg.FallbackToMock,
		},
		log,
	)

	orch := pipeline.NewOrchestrator(cfg, svc, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, svc, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		llm.Close()
	}()

	log.Info("starting tenderbrief",
		"port", cfg.Port,
		"default_mode", cfg.DefaultMode,
		"model", llm.Model(),
		"auth", cfg.APIKey != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
