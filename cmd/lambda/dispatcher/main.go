package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/kingdom-gateway/internal/bus"
	"github.com/example/kingdom-gateway/internal/command"
	"github.com/example/kingdom-gateway/internal/config"
	"github.com/example/kingdom-gateway/internal/datastore"
	"github.com/example/kingdom-gateway/internal/infrastructure/kafka"
	"github.com/example/kingdom-gateway/internal/infrastructure/kinesis"
	"github.com/example/kingdom-gateway/internal/logging"
)

var (
	dispatcher *command.Dispatcher
	log        *zap.SugaredLogger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Lambda Dispatcher] Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[Lambda Dispatcher] Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	log = logger.Sugar().Named("lambda")

	store := datastore.NewClient(
		datastore.Config{
			BaseURL:    cfg.Store.BaseURL,
			APIKey:     cfg.Store.APIKey,
			DataSource: cfg.Store.DataSource,
		},
		datastore.WithHTTPClient(&http.Client{Timeout: cfg.Store.Timeout}),
		datastore.WithLogger(logger.Sugar().Named("datastore")),
	)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.BroadcastTopic)

	dispatcher = command.NewDispatcher(
		command.DispatcherConfig{
			Namespace:       cfg.CommandNamespace,
			ResultNamespace: cfg.ResultNamespace,
		},
		command.NewRegistry(store),
		bus.NewKafkaBus(producer),
		logger.Sugar().Named("dispatcher"),
		nil,
	)

	log.Infow("Initialized", "store", cfg.Store.BaseURL, "broadcast_topic", cfg.Kafka.BroadcastTopic)
}

// handler dispatches every record in order. Failed records are logged and
// never reported back, so the batch is not retried.
func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	log.Infow("Received records", "count", len(kinesisEvent.Records))

	envelopes, errs := kinesis.BatchConvertFromKinesisEvent(kinesisEvent)
	for _, err := range errs {
		log.Errorw("Failed to convert record", "error", err)
	}

	completed := 0
	for _, env := range envelopes {
		outcome, _ := dispatcher.Dispatch(ctx, env)
		if outcome == command.OutcomeCompleted {
			completed++
		}
	}

	log.Infow("Processed records", "completed", completed, "total", len(kinesisEvent.Records))
	return events.KinesisEventResponse{}, nil
}

func main() {
	lambda.Start(handler)
}
