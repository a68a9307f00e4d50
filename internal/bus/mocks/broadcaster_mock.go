package mocks

import (
	"context"
	"sync"

	"github.com/example/kingdom-gateway/internal/bus"
)

// MockBroadcaster is a mock implementation of bus.Broadcaster for testing
type MockBroadcaster struct {
	mu       sync.Mutex
	commands []string
	messages []string
	// err, when set, is returned by every call after recording it.
	err error
}

var _ bus.Broadcaster = (*MockBroadcaster)(nil)

// NewMockBroadcaster creates a new MockBroadcaster
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) RunCommand(_ context.Context, command string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, command)
	return m.err
}

func (m *MockBroadcaster) SendMessage(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return m.err
}

// Commands returns a copy of the recorded commands
func (m *MockBroadcaster) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// Messages returns a copy of the recorded messages
func (m *MockBroadcaster) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// SetErr changes the error returned by later calls
func (m *MockBroadcaster) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
