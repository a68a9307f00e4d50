package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/kingdom-gateway/internal/bus"
	"github.com/example/kingdom-gateway/internal/datastore"
	"github.com/example/kingdom-gateway/internal/metrics"
)

// Outcome is how a single envelope ended.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

type DispatcherConfig struct {
	// Namespace is the identifier prefix this dispatcher accepts.
	Namespace string
	// ResultNamespace prefixes outbound result commands.
	ResultNamespace string
}

// Dispatcher routes command envelopes to the registry and broadcasts the
// results. It holds no per-envelope state, so envelopes may be dispatched
// concurrently.
type Dispatcher struct {
	cfg         DispatcherConfig
	registry    *Registry
	broadcaster bus.Broadcaster
	logger      *zap.SugaredLogger
	metrics     *metrics.Metrics
}

func NewDispatcher(
	cfg DispatcherConfig,
	registry *Registry,
	broadcaster bus.Broadcaster,
	logger *zap.SugaredLogger,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		registry:    registry,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     m,
	}
}

// HandleEvent decodes a raw envelope and dispatches it.
func (d *Dispatcher) HandleEvent(ctx context.Context, key, value []byte) error {
	env, err := DecodeEnvelope(value)
	if err != nil {
		d.logger.Errorw("Failed to decode envelope", "key", string(key), "error", err)
		return err
	}
	_, err = d.Dispatch(ctx, env)
	return err
}

// Dispatch handles one envelope. Envelopes outside the configured
// namespace are ignored without error. Every other failure is logged and
// returned; none of them affect later envelopes.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (Outcome, error) {
	d.logger.Debugw("Received event", "identifier", env.Identifier)

	name, ok := strings.CutPrefix(env.Identifier, d.cfg.Namespace+":")
	if !ok {
		return OutcomeIgnored, nil
	}

	fields, err := decodeObject(env.Payload)
	if err != nil {
		return d.fail(name, env, err)
	}

	action, handler, ok := d.registry.Lookup(name)
	if !ok {
		d.logger.Warnw("Unknown action", "action", name)
		d.metrics.ObserveDispatch("unknown", string(OutcomeRejected))
		return OutcomeRejected, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}

	req, err := route(fields)
	if err != nil {
		return d.fail(name, env, err)
	}

	result, err := handler(ctx, req.Database, req.Collection, req.Data)
	if err != nil {
		return d.fail(name, env, err)
	}

	// The store's body is forwarded as is, only compacted onto one line.
	var compact bytes.Buffer
	if err := json.Compact(&compact, result); err != nil {
		return d.fail(name, env, fmt.Errorf("%w: %s result: %v", ErrDecode, action, err))
	}

	out := Result{Action: action.String(), Result: compact.Bytes()}
	if err := d.broadcaster.RunCommand(ctx, out.Command(d.cfg.ResultNamespace)); err != nil {
		return d.fail(name, env, fmt.Errorf("broadcast %s result: %w", action, err))
	}

	d.logger.Infow("Action executed successfully",
		"action", action,
		"database", req.Database,
		"collection", req.Collection)
	d.metrics.ObserveDispatch(action.String(), string(OutcomeCompleted))
	return OutcomeCompleted, nil
}

func (d *Dispatcher) fail(name string, env Envelope, err error) (Outcome, error) {
	label := name
	if _, ok := datastore.ParseAction(name); !ok {
		label = "unknown"
	}

	fields := []any{"identifier", env.Identifier, "error", err}
	var storeErr *datastore.RemoteStoreError
	if errors.As(err, &storeErr) {
		fields = append(fields, "status", storeErr.StatusCode)
	}
	d.logger.Errorw("Error processing event", fields...)
	d.metrics.ObserveDispatch(label, string(OutcomeFailed))
	return OutcomeFailed, err
}
