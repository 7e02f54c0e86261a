package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/athlos-ai/athlos/internal/adapters/http/api"
	"github.com/athlos-ai/athlos/internal/adapters/notify"
	"github.com/athlos-ai/athlos/internal/adapters/store"
	"github.com/athlos-ai/athlos/internal/ai"
	service "github.com/athlos-ai/athlos/internal/app"
	"github.com/athlos-ai/athlos/internal/brain"
	"github.com/athlos-ai/athlos/internal/config"
	"github.com/athlos-ai/athlos/internal/domain/knowledge"
	"github.com/athlos-ai/athlos/internal/eventbus"
	"github.com/athlos-ai/athlos/internal/processor"
	"github.com/athlos-ai/athlos/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	busDrainTimeout   = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Durable store: badger on disk, or in memory when no dir is set.
	st, err := store.OpenBadger(cfg.BadgerDir,
		store.WithBadgerMaxDocumentBytes(cfg.MaxDocumentBytes),
	)
	if err != nil {
		os.Stderr.WriteString("failed to open store: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	bus := eventbus.New(
		eventbus.WithQueueSize(cfg.EventQueueSize),
		eventbus.WithLogger(logger.Named("eventbus")),
	)

	notifier := notify.NewLogNotifier()
	registry, err := processor.NewRegistry(notifier)
	if err != nil {
		os.Stderr.WriteString("failed to build processor table: " + err.Error() + "\n")
		return
	}

	// AI provider: real client when configured, otherwise the engine runs on
	// deterministic fallbacks alone.
	var provider ai.Provider
	if cfg.AIMode == "openai" {
		p, err := ai.NewOpenAIProvider(cfg.OpenAIAPIKey, ai.WithModel(cfg.OpenAIModel))
		if err != nil {
			os.Stderr.WriteString("failed to build AI provider: " + err.Error() + "\n")
			return
		}
		provider = p
		log.Info(ctx, "AI provider enabled", logger.String("model", cfg.OpenAIModel))
	} else {
		log.Info(ctx, "AI provider off; deterministic fallbacks only")
	}

	engine := brain.New(bus, st, provider, knowledge.NewCorpus(),
		brain.WithProviderTimeout(time.Duration(cfg.AITimeoutMS)*time.Millisecond),
		brain.WithLogger(logger.Named("brain")),
	)
	engine.Start()
	defer engine.Stop()

	svc := service.New(st, registry, bus, engine,
		service.WithLogger(log),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithViewerRole(cfg.ViewerRole, ""),
		service.WithNotifier(notifier),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	// Let in-flight events reach their listeners before the bus closes.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), busDrainTimeout)
	defer cancelDrain()
	if err := bus.Drain(drainCtx); err != nil {
		log.Warn(ctx, "event bus drain incomplete", logger.Error(err))
	}
	bus.Close()

	log.Info(ctx, "server stopped")
}
