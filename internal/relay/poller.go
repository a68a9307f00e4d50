// Package relay long-polls an external notification endpoint and shows
// every received message through the bus.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/example/kingdom-gateway/internal/bus"
	"github.com/example/kingdom-gateway/internal/metrics"
)

// Config describes the polling endpoint and pacing.
type Config struct {
	BaseURL  string
	Endpoint string
	APIKey   string
	// Source names the origin in display text: "Message from <Source>: ...".
	Source string
	// MinInterval is the pause between two polls.
	MinInterval time.Duration
	// MaxBackoff caps the pause after consecutive failures.
	MaxBackoff time.Duration
}

// Notification is the body of a successful poll. Message is required.
type Notification struct {
	Message *string `json:"message"`
}

var errNoMessage = errors.New("decode notification: missing message")

// pollResult classifies one cycle.
type pollResult string

const (
	pollMessage pollResult = "message"
	pollIdle    pollResult = "idle"
	pollFailed  pollResult = "failed"
)

// StatusError is a poll answered with an unexpected status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("poll rejected: status %d: %s", e.StatusCode, e.Body)
}

// Poller repeats the poll until its context is cancelled. No response or
// error ends the loop.
type Poller struct {
	cfg         Config
	httpClient  *http.Client
	broadcaster bus.Broadcaster
	logger      *zap.SugaredLogger
	metrics     *metrics.Metrics
}

func NewPoller(cfg Config, httpClient *http.Client, broadcaster bus.Broadcaster, logger *zap.SugaredLogger, m *metrics.Metrics) *Poller {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 100 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinInterval {
		cfg.MaxBackoff = cfg.MinInterval
	}
	if cfg.Source == "" {
		cfg.Source = "Discord"
	}
	return &Poller{
		cfg:         cfg,
		httpClient:  httpClient,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     m,
	}
}

// URL is the polling endpoint.
func (p *Poller) URL() string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + "/" + strings.TrimLeft(p.cfg.Endpoint, "/")
}

// Run polls until ctx is cancelled and then returns ctx.Err(). After a
// failure the next poll waits with exponential backoff; any success
// resets it to MinInterval.
func (p *Poller) Run(ctx context.Context) error {
	b := p.newBackOff()
	failures := 0

	p.logger.Infow("Polling server for messages", "url", p.URL(), "source", p.cfg.Source)

	for {
		result, err := p.poll(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.metrics.ObserveRelayPoll(string(result))

		wait := p.cfg.MinInterval
		if result == pollFailed {
			failures++
			wait = b.NextBackOff()
			p.logger.Warnw("Error polling server", "error", err, "consecutive_failures", failures, "retry_in", wait)
		} else {
			failures = 0
			b.Reset()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *Poller) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.MinInterval
	b.MaxInterval = p.cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	// Never give up.
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// poll performs one request and forwards a received message.
func (p *Poller) poll(ctx context.Context) (pollResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(), http.NoBody)
	if err != nil {
		return pollFailed, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("api-key", p.cfg.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return pollFailed, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pollFailed, fmt.Errorf("read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusRequestTimeout:
		// The long poll expired without news.
		return pollIdle, nil
	default:
		return pollFailed, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return pollFailed, fmt.Errorf("decode notification: %w", err)
	}
	if n.Message == nil {
		return pollFailed, errNoMessage
	}

	p.logger.Infow("Received message", "source", p.cfg.Source, "message", *n.Message)

	if err := p.broadcaster.SendMessage(ctx, FormatMessage(p.cfg.Source, *n.Message)); err != nil {
		return pollFailed, fmt.Errorf("broadcast message: %w", err)
	}
	return pollMessage, nil
}

// FormatMessage renders a notification for display.
func FormatMessage(source, text string) string {
	return fmt.Sprintf("Message from %s: %s", source, text)
}
