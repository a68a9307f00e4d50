package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Envelope decoding
// ============================================

func TestDecodeEnvelope_StringPayload(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"identifier":"Kingdom:insertOne","payload":"{\"database\":\"d\",\"collection\":\"c\",\"name\":\"Alice\"}"}`))

	require.NoError(t, err)
	assert.Equal(t, "Kingdom:insertOne", env.Identifier)
	assert.JSONEq(t, `{"database":"d","collection":"c","name":"Alice"}`, env.Payload)
}

func TestDecodeEnvelope_InlinePayload(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"identifier":"Kingdom:find","payload":{"database":"d","collection":"c"}}`))

	require.NoError(t, err)
	assert.JSONEq(t, `{"database":"d","collection":"c"}`, env.Payload)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"identifier":`))

	assert.ErrorIs(t, err, ErrDecode)
}

// ============================================
// Payload routing
// ============================================

func TestParsePayload_SplitsRouting(t *testing.T) {
	req, err := ParsePayload(`{"database":"d","collection":"c","name":"Alice","role":"queen"}`)

	require.NoError(t, err)
	assert.Equal(t, "d", req.Database)
	assert.Equal(t, "c", req.Collection)
	assert.JSONEq(t, `{"name":"Alice","role":"queen"}`, string(req.Data))
}

func TestParsePayload_EmptyActionData(t *testing.T) {
	req, err := ParsePayload(`{"database":"d","collection":"c"}`)

	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(req.Data))
}

func TestParsePayload_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{database:d}`},
		{"empty", ``},
		{"array", `[1,2]`},
		{"null", `null`},
		{"missing database", `{"collection":"c"}`},
		{"missing collection", `{"database":"d"}`},
		{"database not a string", `{"database":1,"collection":"c"}`},
		{"collection null", `{"database":"d","collection":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayload(tt.payload)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestResult_Command(t *testing.T) {
	r := Result{Action: "insertOne", Result: []byte(`{"insertedId":"123"}`)}

	assert.Equal(t, `system:insertOne {"insertedId":"123"}`, r.Command("system"))
}
