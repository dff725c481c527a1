package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead_funnel_backend/internal/addresslookup"
	"lead_funnel_backend/internal/config"
	"lead_funnel_backend/internal/enrichment"
	"lead_funnel_backend/internal/flows"
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/http/router"
	"lead_funnel_backend/internal/installers"
	"lead_funnel_backend/internal/leads"
	"lead_funnel_backend/internal/mockaddress"
	"lead_funnel_backend/internal/tracking"
	"lead_funnel_backend/internal/wizard"
	"lead_funnel_backend/platform/events"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")

	registry, err := flows.Load(cfg.FlowConfigPath)
	if err != nil {
		log.Error("failed to load flow configuration", "error", err)
		panic("failed to load flow configuration: " + err.Error())
	}
	log.Info("flows loaded", "flows", registry.IDs())

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	eventBus.Subscribe(tracking.EventName, tracking.NewLogHandler(log))
	tracker := tracking.NewBusTracker(eventBus)

	// Shared validator instance for dependency injection
	val := validator.New()

	enrichmentModule := enrichment.NewModule(cfg.EnrichmentURL, cfg.EnrichmentMinDuration, log)
	addressClient := addresslookup.New(cfg.AddressLookupURL, log)
	installerClient := installers.New(cfg.InstallersURL, log)
	submitter := leads.NewSubmitter(cfg.LeadWebhookURL, log)

	wizardModule := wizard.NewModule(
		wizard.Config{
			SessionTTL:              cfg.SessionTTL,
			AddressDebounce:         cfg.AddressDebounce,
			CompletionRedirectURL:   cfg.CompletionRedirectURL,
			CompletionRedirectDelay: cfg.CompletionRedirectDelay,
		},
		rdb,
		registry,
		enrichmentModule.Service(),
		addressClient,
		installerClient,
		submitter,
		tracker,
		val,
		log,
	)

	modules := []apphttp.Module{wizardModule}
	if cfg.MockAddressEnabled {
		modules = append(modules, mockaddress.NewModule())
		log.Info("mock address lookup enabled")
	}

	engine := router.New(cfg, log, modules)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
