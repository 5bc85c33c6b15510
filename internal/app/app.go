package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/OlegEV/moysklad-autoproduction/internal/config"
	"github.com/OlegEV/moysklad-autoproduction/internal/event"
	handler "github.com/OlegEV/moysklad-autoproduction/internal/handler/http"
	"github.com/OlegEV/moysklad-autoproduction/internal/moysklad"
	"github.com/OlegEV/moysklad-autoproduction/internal/service"
	"github.com/OlegEV/moysklad-autoproduction/pkg/health"
	"github.com/OlegEV/moysklad-autoproduction/pkg/httpclient"
	pkgkafka "github.com/OlegEV/moysklad-autoproduction/pkg/kafka"
	"github.com/OlegEV/moysklad-autoproduction/pkg/tracing"
)

// App wires together all dependencies and runs the service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	kafkaProducer  *pkgkafka.Producer
	tracerShutdown func(context.Context) error
}

// NewApp creates the application, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "autoproduction",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Outbound HTTP client, optionally behind a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Timeout()
	baseClient := httpclient.New(clientCfg)

	var doer moysklad.Doer = baseClient
	if cfg.CBEnabled {
		doer = httpclient.NewCircuitBreakerClient(baseClient, httpclient.DefaultCircuitBreakerConfig("moysklad"), logger)
		logger.Info("circuit breaker enabled for outbound requests")
	}

	msClient := moysklad.New(moysklad.Config{
		BaseURL:       cfg.BaseURL,
		Token:         cfg.Token,
		TriggerEntity: cfg.TriggerEntity,
		HTTPClient:    doer,
		Logger:        logger,
	})

	// Outcome events are optional; without Kafka the producer stays nil
	// and publishing becomes a no-op.
	var kafkaProducer *pkgkafka.Producer
	if cfg.KafkaEnabled {
		kafkaProducer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(kafkaProducer, logger)

	processor := service.NewProcessor(msClient, service.ProcessorConfig{
		StoreName:         cfg.StoreName,
		TechCardFieldName: cfg.TechCardFieldName,
		MinStockThreshold: cfg.MinStockThreshold,
	}, events, logger)

	hc := health.New(5 * time.Second)
	if cfg.KafkaEnabled {
		hc.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	h := handler.NewHandler(processor, cfg, logger)
	router := handler.NewRouter(h, hc, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		kafkaProducer:  kafkaProducer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
