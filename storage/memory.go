package storage

import (
	"sync"

	"github.com/ipfs/go-cid"

	"mintlock.io/mintlock/cidutil"
)

// Memory is an in-process CAS for tests and single-binary deployments.
type Memory struct {
	mu    sync.RWMutex
	blobs map[cid.Cid][]byte
}

var _ CAS = (*Memory)(nil)

// NewMemory creates an empty in-memory CAS.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[cid.Cid][]byte)}
}

func (m *Memory) Put(bytes []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		m.blobs[id] = append([]byte(nil), bytes...)
	}
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[id]
	return ok
}
