package eventlog

import (
	"sync"

	"mintlock.io/mintlock/addr"
)

// Memory is an in-process Sink for tests and single-binary deployments.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewMemory creates an empty sink.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Emit(collection addr.Address, name string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{Collection: collection, Name: name, Payload: payload})
	return nil
}

// Events returns a copy of everything emitted so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// FailingSink rejects every emit with Err. For atomicity tests.
type FailingSink struct {
	Err error
}

func (f FailingSink) Emit(addr.Address, string, map[string]any) error { return f.Err }
