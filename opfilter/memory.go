package opfilter

import (
	"errors"
	"sync"

	"mintlock.io/mintlock/addr"
)

// ErrNotRegistered rejects a subscription by an unregistered collection.
var ErrNotRegistered = errors.New("opfilter: collection not registered")

// Memory is an in-process Registry with reference-based subscriptions.
//
// Each registrant owns a blocked set and at most one subscription edge.
// IsOperatorFiltered walks subscription edges at query time, so changes to
// the subscribed-to set propagate to subscribers automatically.
type Memory struct {
	mu      sync.RWMutex
	entries map[addr.Address]*entry
}

type entry struct {
	blocked    map[addr.Address]bool
	target     addr.Address
	subscribed bool
}

// NewMemory creates an empty registry.
func NewMemory() *Memory {
	return &Memory{entries: make(map[addr.Address]*entry)}
}

// Register creates a registrant entry. Re-registering is a no-op: the
// existing blocked set and subscription survive a re-link.
func (m *Memory) Register(collection addr.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[collection]; !ok {
		m.entries[collection] = &entry{blocked: make(map[addr.Address]bool)}
	}
	return nil
}

// Unregister removes the registrant entry, its blocked set, and its
// subscription edge. Unknown registrants are a no-op.
func (m *Memory) Unregister(collection addr.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, collection)
	return nil
}

// Subscribe points collection's filtered-set lookup at target. The edge is a
// reference resolved on every query, never a snapshot.
func (m *Memory) Subscribe(collection, target addr.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[collection]
	if !ok {
		return ErrNotRegistered
	}
	e.target = target
	e.subscribed = target.Defined()
	return nil
}

// SetFiltered marks or unmarks operator in registrant's blocked set. The
// registrant is created on demand so a subscription target can be populated
// before anyone registers it.
func (m *Memory) SetFiltered(registrant, operator addr.Address, filtered bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[registrant]
	if !ok {
		e = &entry{blocked: make(map[addr.Address]bool)}
		m.entries[registrant] = e
	}
	if filtered {
		e.blocked[operator] = true
	} else {
		delete(e.blocked, operator)
	}
}

// IsOperatorFiltered reports whether caller or operator is blocked for
// collection, following subscription edges at query time. Unregistered
// collections are never filtered (fail-open by absence).
func (m *Memory) IsOperatorFiltered(collection, caller, operator addr.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[addr.Address]bool{}
	cur := collection
	for {
		if seen[cur] {
			return false // subscription cycle, treat as empty set
		}
		seen[cur] = true
		e, ok := m.entries[cur]
		if !ok {
			return false
		}
		if !e.subscribed {
			return e.blocked[operator] || e.blocked[caller]
		}
		cur = e.target
	}
}
