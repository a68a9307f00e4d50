package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/example/kingdom-gateway/internal/datastore"
)

// MockStore is a mock implementation of datastore.StoreInterface for testing
type MockStore struct {
	mu sync.Mutex

	// Responses holds the raw body returned per action; "{}" is used when unset.
	Responses map[datastore.Action]json.RawMessage
	// Errors makes the given action fail.
	Errors map[datastore.Action]error

	// For tracking calls in tests
	Calls []Call
}

// Call records the arguments of one store call, re-encoded as JSON.
// Absent arguments stay nil.
type Call struct {
	Action     datastore.Action
	Database   string
	Collection string
	Document   json.RawMessage
	Documents  json.RawMessage
	Filter     json.RawMessage
	Update     json.RawMessage
	Pipeline   json.RawMessage
}

var _ datastore.StoreInterface = (*MockStore)(nil)

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Responses: make(map[datastore.Action]json.RawMessage),
		Errors:    make(map[datastore.Action]error),
		Calls:     make([]Call, 0),
	}
}

// SetResponse configures the body returned for action. A string or
// json.RawMessage is used as raw JSON; anything else is marshalled.
func (m *MockStore) SetResponse(action datastore.Action, v any) {
	var raw json.RawMessage
	switch body := v.(type) {
	case string:
		raw = json.RawMessage(body)
	case json.RawMessage:
		raw = body
	default:
		raw, _ = json.Marshal(v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[action] = raw
}

// SetError makes action fail with err
func (m *MockStore) SetError(action datastore.Action, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[action] = err
}

// CallsFor returns the recorded calls of one action
func (m *MockStore) CallsFor(action datastore.Action) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Call
	for _, c := range m.Calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockStore) Do(_ context.Context, action datastore.Action, database, collection string, args datastore.Args) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, Call{
		Action:     action,
		Database:   database,
		Collection: collection,
		Document:   toRaw(args.Document),
		Documents:  toRaw(args.Documents),
		Filter:     toRaw(args.Filter),
		Update:     toRaw(args.Update),
		Pipeline:   toRaw(args.Pipeline),
	})
	if err := m.Errors[action]; err != nil {
		return nil, err
	}
	if raw, ok := m.Responses[action]; ok {
		return raw, nil
	}
	return json.RawMessage(`{}`), nil
}

func toRaw(v any) json.RawMessage {
	switch arg := v.(type) {
	case nil:
		return nil
	case json.RawMessage:
		if len(arg) == 0 {
			return nil
		}
		return arg
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
