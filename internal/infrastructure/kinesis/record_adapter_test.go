package kinesis

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kingdom-gateway/internal/command"
)

func kinesisRecord(id, data string) events.KinesisEventRecord {
	return events.KinesisEventRecord{
		EventID: id,
		Kinesis: events.KinesisRecord{
			Data:           []byte(data),
			SequenceNumber: "seq-" + id,
		},
	}
}

func TestConvertFromKinesisRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    command.Envelope
		wantErr bool
	}{
		{
			name: "string payload",
			data: `{"identifier":"Kingdom:find","payload":"{\"database\":\"d\",\"collection\":\"c\"}"}`,
			want: command.Envelope{Identifier: "Kingdom:find", Payload: `{"database":"d","collection":"c"}`},
		},
		{
			name: "inline payload",
			data: `{"identifier":"Kingdom:count","payload":{"database":"d","collection":"c"}}`,
			want: command.Envelope{Identifier: "Kingdom:count", Payload: `{"database":"d","collection":"c"}`},
		},
		{
			name:    "empty data",
			data:    "",
			wantErr: true,
		},
		{
			name:    "not json",
			data:    "Kingdom:find",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ConvertFromKinesisRecord(kinesisRecord("1", tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, command.ErrDecode)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, env)
		})
	}
}

func TestBatchConvertFromKinesisEvent(t *testing.T) {
	event := events.KinesisEvent{Records: []events.KinesisEventRecord{
		kinesisRecord("a", `{"identifier":"Kingdom:find","payload":"{}"}`),
		kinesisRecord("b", `garbage`),
		kinesisRecord("c", `{"identifier":"Other:foo","payload":"{}"}`),
	}}

	envelopes, errs := BatchConvertFromKinesisEvent(event)

	require.Len(t, envelopes, 2)
	assert.Equal(t, "Kingdom:find", envelopes[0].Identifier)
	assert.Equal(t, "Other:foo", envelopes[1].Identifier)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "record b")
}
