// Package bus is the boundary to the host event bus: result commands and
// display messages leave the gateway through it.
package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	KindCommand = "command"
	KindMessage = "message"
)

// Broadcaster delivers outbound traffic to the host.
type Broadcaster interface {
	// RunCommand sends a command string such as "system:insertOne {...}".
	RunCommand(ctx context.Context, command string) error

	// SendMessage shows plain text to every connected consumer.
	SendMessage(ctx context.Context, text string) error
}

// Record is one outbound bus entry.
type Record struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher writes a keyed, JSON-encoded value to a topic.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaBus publishes records through a Kafka producer, keyed by record id.
type KafkaBus struct {
	publisher Publisher
	now       func() time.Time
}

var _ Broadcaster = (*KafkaBus)(nil)

func NewKafkaBus(publisher Publisher) *KafkaBus {
	return &KafkaBus{
		publisher: publisher,
		now:       time.Now,
	}
}

func (b *KafkaBus) RunCommand(ctx context.Context, command string) error {
	return b.publish(ctx, KindCommand, command)
}

func (b *KafkaBus) SendMessage(ctx context.Context, text string) error {
	return b.publish(ctx, KindMessage, text)
}

func (b *KafkaBus) publish(ctx context.Context, kind, body string) error {
	rec := Record{
		ID:        uuid.New().String(),
		Kind:      kind,
		Body:      body,
		Timestamp: b.now().UTC(),
	}
	if err := b.publisher.Publish(ctx, rec.ID, rec); err != nil {
		return fmt.Errorf("publish %s record: %w", kind, err)
	}
	return nil
}
