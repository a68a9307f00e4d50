package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "https://store.example.com")

	cfg, err := load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", cfg.Store.BaseURL)
	assert.Equal(t, "Kingdom", cfg.Store.DataSource)
	assert.Equal(t, 30*time.Second, cfg.Store.Timeout)
	assert.Equal(t, "Kingdom", cfg.CommandNamespace)
	assert.Equal(t, "system", cfg.ResultNamespace)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "kingdom-commands", cfg.Kafka.CommandTopic)
	assert.Equal(t, "kingdom-gateway", cfg.Kafka.ConsumerGroup)
	assert.Equal(t, "kingdom-broadcasts", cfg.Kafka.BroadcastTopic)
	assert.Equal(t, 8, cfg.Kafka.Workers)
	assert.False(t, cfg.Relay.Enabled)
	assert.Equal(t, "http://localhost:3000", cfg.Relay.BaseURL)
	assert.Equal(t, "minecraft", cfg.Relay.Endpoint)
	assert.Equal(t, "Discord", cfg.Relay.Source)
	assert.Equal(t, 60*time.Second, cfg.Relay.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Relay.MinInterval)
	assert.Equal(t, 30*time.Second, cfg.Relay.MaxBackoff)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "https://store.example.com")
	t.Setenv("STORE_API_KEY", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("DISPATCH_WORKERS", "2")
	t.Setenv("RELAY_ENABLED", "true")
	t.Setenv("RELAY_MAX_BACKOFF", "5s")
	t.Setenv("RESULT_NAMESPACE", "results")
	t.Setenv("METRICS_ADDR", "")

	cfg, err := load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Store.APIKey)
	assert.Equal(t, "secret", cfg.Relay.APIKey)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2, cfg.Kafka.Workers)
	assert.True(t, cfg.Relay.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Relay.MaxBackoff)
	assert.Equal(t, "results", cfg.ResultNamespace)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_RelayKeyOverridesStoreKey(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "https://store.example.com")
	t.Setenv("STORE_API_KEY", "store")
	t.Setenv("RELAY_API_KEY", "relay")

	cfg, err := load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, "store", cfg.Store.APIKey)
	assert.Equal(t, "relay", cfg.Relay.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing store url", map[string]string{"STORE_BASE_URL": ""}, "STORE_BASE_URL is required"},
		{"bad duration", map[string]string{"STORE_TIMEOUT": "soon"}, "invalid STORE_TIMEOUT"},
		{"bad workers", map[string]string{"DISPATCH_WORKERS": "many"}, "invalid DISPATCH_WORKERS"},
		{"zero workers", map[string]string{"DISPATCH_WORKERS": "0"}, "DISPATCH_WORKERS must be positive"},
		{"bad bool", map[string]string{"RELAY_ENABLED": "maybe"}, "invalid RELAY_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORE_BASE_URL", "https://store.example.com")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load(viper.New())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
