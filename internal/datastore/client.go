package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/kingdom-gateway/internal/metrics"
)

// Config is the connection to the remote store. It is fixed for the
// lifetime of a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	DataSource string
}

// Client translates store operations into POST <BaseURL>/action/<kind>
// requests. It keeps no state between calls and is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
}

var _ StoreInterface = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport. Timeouts belong there.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for call tracing.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the collectors for request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a store client.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request is the body sent for every action.
type request struct {
	DataSource string          `json:"dataSource"`
	Database   string          `json:"database"`
	Collection string          `json:"collection"`
	Document   json.RawMessage `json:"document,omitempty"`
	Documents  json.RawMessage `json:"documents,omitempty"`
	Filter     json.RawMessage `json:"filter,omitempty"`
	Update     json.RawMessage `json:"update,omitempty"`
	Pipeline   json.RawMessage `json:"pipeline,omitempty"`
}

// Do sends one action and returns the response body unchanged. The body
// must be JSON; its shape is not checked.
func (c *Client) Do(ctx context.Context, action Action, database, collection string, args Args) (json.RawMessage, error) {
	var body request
	var err error
	for _, arg := range []struct {
		field string
		value any
		dst   *json.RawMessage
	}{
		{"document", args.Document, &body.Document},
		{"documents", args.Documents, &body.Documents},
		{"filter", args.Filter, &body.Filter},
		{"update", args.Update, &body.Update},
		{"pipeline", args.Pipeline, &body.Pipeline},
	} {
		if *arg.dst, err = encodeArg(action, arg.field, arg.value); err != nil {
			return nil, err
		}
	}

	raw, err := c.do(ctx, action, database, collection, body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode %s response: invalid JSON: %q", action, truncate(raw, 200))
	}
	return json.RawMessage(raw), nil
}

func (c *Client) InsertOne(ctx context.Context, database, collection string, document any) (InsertOneResult, error) {
	return call[InsertOneResult](ctx, c, ActionInsertOne, database, collection, Args{Document: document})
}

func (c *Client) InsertMany(ctx context.Context, database, collection string, documents any) (InsertManyResult, error) {
	return call[InsertManyResult](ctx, c, ActionInsertMany, database, collection, Args{Documents: documents})
}

func (c *Client) FindOne(ctx context.Context, database, collection string, filter any) (json.RawMessage, error) {
	return c.Do(ctx, ActionFindOne, database, collection, Args{Filter: filter})
}

func (c *Client) Find(ctx context.Context, database, collection string, filter any) (json.RawMessage, error) {
	return c.Do(ctx, ActionFind, database, collection, Args{Filter: filter})
}

func (c *Client) UpdateOne(ctx context.Context, database, collection string, filter, update any) (UpdateResult, error) {
	return call[UpdateResult](ctx, c, ActionUpdateOne, database, collection, Args{Filter: filter, Update: update})
}

func (c *Client) UpdateMany(ctx context.Context, database, collection string, filter, update any) (UpdateResult, error) {
	return call[UpdateResult](ctx, c, ActionUpdateMany, database, collection, Args{Filter: filter, Update: update})
}

func (c *Client) DeleteOne(ctx context.Context, database, collection string, filter any) (DeleteResult, error) {
	return call[DeleteResult](ctx, c, ActionDeleteOne, database, collection, Args{Filter: filter})
}

func (c *Client) DeleteMany(ctx context.Context, database, collection string, filter any) (DeleteResult, error) {
	return call[DeleteResult](ctx, c, ActionDeleteMany, database, collection, Args{Filter: filter})
}

// Count returns the number of documents matching filter.
func (c *Client) Count(ctx context.Context, database, collection string, filter any) (int64, error) {
	res, err := call[CountResult](ctx, c, ActionCount, database, collection, Args{Filter: filter})
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

func (c *Client) Aggregate(ctx context.Context, database, collection string, pipeline any) (json.RawMessage, error) {
	return c.Do(ctx, ActionAggregate, database, collection, Args{Pipeline: pipeline})
}

// call is Do followed by a decode into T. Members T does not declare are
// dropped; callers that need the full response use Do.
func call[T any](ctx context.Context, c *Client, action Action, database, collection string, args Args) (T, error) {
	var out T

	raw, err := c.Do(ctx, action, database, collection, args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s response: %w", action, err)
	}
	return out, nil
}

// do is the single call boundary: every action is traced, sent and
// measured here.
func (c *Client) do(ctx context.Context, action Action, database, collection string, body request) ([]byte, error) {
	body.DataSource = c.cfg.DataSource
	body.Database = database
	body.Collection = collection

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", action, err)
	}

	c.logger.Debugw("Calling store action", "action", action, "arguments", string(data))

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/action/" + string(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &RemoteStoreError{Action: action, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveStoreRequest(string(action), 0, time.Since(start))
		return nil, &RemoteStoreError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	c.metrics.ObserveStoreRequest(string(action), resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, &RemoteStoreError{Action: action, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RemoteStoreError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(payload)),
		}
	}
	return payload, nil
}

// encodeArg turns a caller argument into raw JSON. Absent arguments stay
// nil so they are omitted from the body instead of sent as null.
func encodeArg(action Action, field string, v any) (json.RawMessage, error) {
	switch arg := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(arg) == 0 {
			return nil, nil
		}
		return arg, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", action, field, err)
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
