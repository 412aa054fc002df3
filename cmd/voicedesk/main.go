package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tailored-agentic-units/voicedesk/kernel"
	"github.com/tailored-agentic-units/voicedesk/observability"
	"github.com/tailored-agentic-units/voicedesk/server"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile    = flag.String("config", "", "Path to voicedesk config JSON file")
		addr          = flag.String("addr", ":8080", "HTTP listen address")
		issuesPath    = flag.String("issues-db", "", "Path to the issues SQLite file (overrides config)")
		systemPrompt  = flag.String("system-prompt", "", "System prompt (overrides config)")
		maxIterations = flag.Int("max-iterations", -1, "Maximum reasoning cycles per request (overrides config)")
		verbose       = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := kernel.DefaultConfig()
	if *configFile != "" {
		loaded, err := kernel.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *issuesPath != "" {
		cfg.Issues.Path = *issuesPath
	}
	if *systemPrompt != "" {
		cfg.SystemPrompt = *systemPrompt
	}
	if *maxIterations > 0 {
		cfg.MaxIterations = *maxIterations
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metricsObserver, err := observability.NewPrometheusObserver(registry)
	if err != nil {
		logger.Fatal("failed to create metrics observer", zap.Error(err))
	}
	observer := observability.NewMultiObserver(
		observability.NewZapObserver(logger),
		metricsObserver,
	)

	runtime, err := kernel.New(&cfg, kernel.WithObserver(observer))
	if err != nil {
		logger.Fatal("failed to create kernel runtime", zap.Error(err))
	}
	defer runtime.Close()

	registerBuiltinTools(runtime)

	srv := &http.Server{
		Addr: *addr,
		Handler: server.New(runtime,
			server.WithLogger(logger),
			server.WithGatherer(registry),
		).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("failed to register tool: %v", err))
	}
}
