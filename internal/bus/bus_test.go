package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	Key   string
	Event any
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, key string, event any) error {
	f.calls = append(f.calls, publishCall{Key: key, Event: event})
	return f.err
}

func TestKafkaBus_RunCommand(t *testing.T) {
	pub := &fakePublisher{}
	b := NewKafkaBus(pub)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	err := b.RunCommand(context.Background(), `system:insertOne {"insertedId":"123"}`)

	require.NoError(t, err)
	require.Len(t, pub.calls, 1)
	rec, ok := pub.calls[0].Event.(Record)
	require.True(t, ok)
	assert.Equal(t, KindCommand, rec.Kind)
	assert.Equal(t, `system:insertOne {"insertedId":"123"}`, rec.Body)
	assert.Equal(t, fixed, rec.Timestamp)
	assert.Equal(t, rec.ID, pub.calls[0].Key)
	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
}

func TestKafkaBus_SendMessage(t *testing.T) {
	pub := &fakePublisher{}
	b := NewKafkaBus(pub)

	require.NoError(t, b.SendMessage(context.Background(), "Message from Discord: hi"))
	require.NoError(t, b.SendMessage(context.Background(), "Message from Discord: again"))

	require.Len(t, pub.calls, 2)
	first := pub.calls[0].Event.(Record)
	second := pub.calls[1].Event.(Record)
	assert.Equal(t, KindMessage, first.Kind)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestKafkaBus_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	b := NewKafkaBus(pub)

	err := b.RunCommand(context.Background(), "system:find []")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish command record")
	assert.ErrorIs(t, err, pub.err)
}
