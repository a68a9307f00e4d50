// Package config loads the gateway's static configuration from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingStoreURL = errors.New("STORE_BASE_URL is required")

type Store struct {
	BaseURL    string
	APIKey     string
	DataSource string
	Timeout    time.Duration
}

type Kafka struct {
	Brokers        []string
	CommandTopic   string
	ConsumerGroup  string
	BroadcastTopic string
	Workers        int
}

type Relay struct {
	Enabled     bool
	BaseURL     string
	Endpoint    string
	APIKey      string
	Source      string
	Timeout     time.Duration
	MinInterval time.Duration
	MaxBackoff  time.Duration
}

type Config struct {
	Store            Store
	Kafka            Kafka
	Relay            Relay
	CommandNamespace string
	ResultNamespace  string
	MetricsAddr      string
	LogLevel         string
	LogFormat        string
}

var defaults = map[string]any{
	"STORE_DATA_SOURCE":     "Kingdom",
	"STORE_TIMEOUT":         "30s",
	"COMMAND_NAMESPACE":     "Kingdom",
	"RESULT_NAMESPACE":      "system",
	"KAFKA_BROKERS":         "localhost:9092",
	"KAFKA_COMMAND_TOPIC":   "kingdom-commands",
	"KAFKA_CONSUMER_GROUP":  "kingdom-gateway",
	"KAFKA_BROADCAST_TOPIC": "kingdom-broadcasts",
	"DISPATCH_WORKERS":      "8",
	"RELAY_ENABLED":         "false",
	"RELAY_BASE_URL":        "http://localhost:3000",
	"RELAY_ENDPOINT":        "minecraft",
	"RELAY_SOURCE":          "Discord",
	"RELAY_TIMEOUT":         "60s",
	"RELAY_MIN_INTERVAL":    "100ms",
	"RELAY_MAX_BACKOFF":     "30s",
	"METRICS_ADDR":          ":9090",
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "json",
}

// Load reads .env (if present) and the process environment. Environment
// variables win over .env entries.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	// An explicitly empty METRICS_ADDR disables the listener.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	p := parser{v: v}
	cfg := Config{
		Store: Store{
			BaseURL:    v.GetString("STORE_BASE_URL"),
			APIKey:     v.GetString("STORE_API_KEY"),
			DataSource: v.GetString("STORE_DATA_SOURCE"),
			Timeout:    p.duration("STORE_TIMEOUT"),
		},
		Kafka: Kafka{
			Brokers:        splitList(v.GetString("KAFKA_BROKERS")),
			CommandTopic:   v.GetString("KAFKA_COMMAND_TOPIC"),
			ConsumerGroup:  v.GetString("KAFKA_CONSUMER_GROUP"),
			BroadcastTopic: v.GetString("KAFKA_BROADCAST_TOPIC"),
			Workers:        p.int("DISPATCH_WORKERS"),
		},
		Relay: Relay{
			Enabled:     p.bool("RELAY_ENABLED"),
			BaseURL:     v.GetString("RELAY_BASE_URL"),
			Endpoint:    v.GetString("RELAY_ENDPOINT"),
			APIKey:      v.GetString("RELAY_API_KEY"),
			Source:      v.GetString("RELAY_SOURCE"),
			Timeout:     p.duration("RELAY_TIMEOUT"),
			MinInterval: p.duration("RELAY_MIN_INTERVAL"),
			MaxBackoff:  p.duration("RELAY_MAX_BACKOFF"),
		},
		CommandNamespace: v.GetString("COMMAND_NAMESPACE"),
		ResultNamespace:  v.GetString("RESULT_NAMESPACE"),
		MetricsAddr:      v.GetString("METRICS_ADDR"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if cfg.Relay.APIKey == "" {
		cfg.Relay.APIKey = cfg.Store.APIKey
	}

	if strings.TrimSpace(cfg.Store.BaseURL) == "" {
		return Config{}, ErrMissingStoreURL
	}
	if cfg.Kafka.Workers < 1 {
		return Config{}, fmt.Errorf("DISPATCH_WORKERS must be positive, got %d", cfg.Kafka.Workers)
	}
	return cfg, nil
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) duration(key string) time.Duration {
	d, err := time.ParseDuration(p.v.GetString(key))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}

func (p *parser) int(key string) int {
	n, err := strconv.Atoi(p.v.GetString(key))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return n
}

func (p *parser) bool(key string) bool {
	b, err := strconv.ParseBool(p.v.GetString(key))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
