package collection_test

import (
	"testing"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/collection"
	"mintlock.io/mintlock/eventlog"
)

func TestRegistryCreateGetList(t *testing.T) {
	reg := collection.NewRegistry(nil, eventlog.NewMemory())

	a, err := reg.Create(collection.Config{Name: "Alpha", Symbol: "A", Owner: owner})
	if err != nil {
		t.Fatalf("Create(Alpha): %v", err)
	}
	b, err := reg.Create(collection.Config{Name: "Beta", Symbol: "B", Owner: owner})
	if err != nil {
		t.Fatalf("Create(Beta): %v", err)
	}
	if a.Addr() == b.Addr() {
		t.Fatalf("derived addresses collide: %v", a.Addr())
	}

	got, err := reg.Get(a.Addr())
	if err != nil || got != a {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := reg.Get(addr.MustParse("0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddead")); err != collection.ErrNotFound {
		t.Fatalf("Get unknown: got %v", err)
	}
	if got := len(reg.List()); got != 2 {
		t.Fatalf("List length = %d, want 2", got)
	}
}

func TestRegistryIdenticalParamsGetDistinctAddresses(t *testing.T) {
	reg := collection.NewRegistry(nil, nil)
	cfg := collection.Config{Name: "Twin", Symbol: "TW", Owner: owner}

	a, err := reg.Create(cfg)
	if err != nil {
		t.Fatalf("Create(1): %v", err)
	}
	b, err := reg.Create(cfg)
	if err != nil {
		t.Fatalf("Create(2): %v", err)
	}
	if a.Addr() == b.Addr() {
		t.Fatalf("sequence number did not separate identical configs")
	}
}

func TestRegistrySharedSink(t *testing.T) {
	sink := eventlog.NewMemory()
	reg := collection.NewRegistry(nil, sink)

	c, err := reg.Create(collection.Config{Name: "Sunk", Symbol: "S", Owner: owner})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := c.Mint(owner, alice); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	evs := sink.Events()
	if len(evs) != 1 || evs[0].Collection != c.Addr() {
		t.Fatalf("sink events = %+v", evs)
	}
}
