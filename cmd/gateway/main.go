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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/example/kingdom-gateway/internal/bus"
	"github.com/example/kingdom-gateway/internal/command"
	"github.com/example/kingdom-gateway/internal/config"
	"github.com/example/kingdom-gateway/internal/datastore"
	"github.com/example/kingdom-gateway/internal/infrastructure/kafka"
	"github.com/example/kingdom-gateway/internal/logging"
	"github.com/example/kingdom-gateway/internal/metrics"
	"github.com/example/kingdom-gateway/internal/relay"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar().Named("gateway")

	log.Infow("Kingdom gateway starting",
		"store", cfg.Store.BaseURL,
		"kafka", cfg.Kafka.Brokers,
		"command_topic", cfg.Kafka.CommandTopic,
		"broadcast_topic", cfg.Kafka.BroadcastTopic,
		"group", cfg.Kafka.ConsumerGroup,
		"namespace", cfg.CommandNamespace,
		"relay", cfg.Relay.Enabled)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	store := datastore.NewClient(
		datastore.Config{
			BaseURL:    cfg.Store.BaseURL,
			APIKey:     cfg.Store.APIKey,
			DataSource: cfg.Store.DataSource,
		},
		datastore.WithHTTPClient(&http.Client{Timeout: cfg.Store.Timeout}),
		datastore.WithLogger(logger.Sugar().Named("datastore")),
		datastore.WithMetrics(m),
	)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.BroadcastTopic)
	defer producer.Close()
	broadcaster := bus.NewKafkaBus(producer)

	dispatcher := command.NewDispatcher(
		command.DispatcherConfig{
			Namespace:       cfg.CommandNamespace,
			ResultNamespace: cfg.ResultNamespace,
		},
		command.NewRegistry(store),
		broadcaster,
		logger.Sugar().Named("dispatcher"),
		m,
	)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.CommandTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
		Workers: cfg.Kafka.Workers,
	}, logger.Sugar().Named("kafka"))
	defer consumer.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting command consumer")
		return consumer.Consume(ctx, dispatcher.HandleEvent)
	})

	if cfg.Relay.Enabled {
		poller := relay.NewPoller(relay.Config{
			BaseURL:     cfg.Relay.BaseURL,
			Endpoint:    cfg.Relay.Endpoint,
			APIKey:      cfg.Relay.APIKey,
			Source:      cfg.Relay.Source,
			MinInterval: cfg.Relay.MinInterval,
			MaxBackoff:  cfg.Relay.MaxBackoff,
		}, &http.Client{Timeout: cfg.Relay.Timeout}, broadcaster, logger.Sugar().Named("relay"), m)

		g.Go(func() error {
			return poller.Run(ctx)
		})
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Infow("Serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	log.Info("Shutting down")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

