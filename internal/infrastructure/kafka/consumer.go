package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// Workers bounds how many messages are handled at once.
	Workers int
}

type Consumer struct {
	reader  *kafka.Reader
	workers int
	logger  *zap.SugaredLogger
}

func NewConsumer(cfg ConsumerConfig, logger *zap.SugaredLogger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Consumer{reader: reader, workers: workers, logger: logger}
}

// Consume reads messages until ctx is cancelled. Offsets are committed on
// read, so each message is handed to handler at most once. Handler errors
// are logged and never stop the loop.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	var g errgroup.Group
	g.SetLimit(c.workers)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				_ = g.Wait()
				return ctx.Err()
			}
			c.logger.Errorw("Error reading message", "error", err)
			continue
		}

		// Blocks while all workers are busy.
		g.Go(func() error {
			if err := handler(ctx, msg.Key, msg.Value); err != nil {
				c.logger.Warnw("Error handling message",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err)
			}
			return nil
		})
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
