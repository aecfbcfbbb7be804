package collection

import (
	"encoding/binary"
	"sort"
	"sync"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/eventlog"
	"mintlock.io/mintlock/storage"
)

// Registry hosts the collections served by one daemon process. Collection
// addresses are derived from the creator, the collection parameters, and a
// per-registry sequence number, so they are unique and reproducible within
// one registry lifetime.
type Registry struct {
	mu     sync.Mutex
	byAddr map[addr.Address]*Collection
	seq    uint64

	metadata storage.CAS
	sink     eventlog.Sink
}

// NewRegistry creates an empty registry. All hosted collections share the
// metadata store and event sink; either may be nil for the defaults.
func NewRegistry(metadata storage.CAS, sink eventlog.Sink) *Registry {
	if metadata == nil {
		metadata = storage.NewMemory()
	}
	if sink == nil {
		sink = eventlog.Discard{}
	}
	return &Registry{
		byAddr:   make(map[addr.Address]*Collection),
		metadata: metadata,
		sink:     sink,
	}
}

// Create derives an address for the new collection and hosts it.
func (r *Registry) Create(cfg Config) (*Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], r.seq)
	address := addr.Derive([]byte("collection"), cfg.Owner[:], []byte(cfg.Name), []byte(cfg.Symbol), seq[:])

	cfg.Metadata = r.metadata
	cfg.Sink = r.sink
	c, err := New(address, cfg)
	if err != nil {
		return nil, err
	}
	r.seq++
	r.byAddr[address] = c
	return c, nil
}

// Get returns the hosted collection at address.
func (r *Registry) Get(address addr.Address) (*Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byAddr[address]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns the hosted collections sorted by address.
func (r *Registry) List() []*Collection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Collection, 0, len(r.byAddr))
	for _, c := range r.byAddr {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr().String() < out[j].Addr().String() })
	return out
}
