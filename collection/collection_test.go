package collection_test

import (
	"errors"
	"reflect"
	"testing"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/cidutil"
	"mintlock.io/mintlock/collection"
	"mintlock.io/mintlock/eventlog"
	"mintlock.io/mintlock/opfilter"
	"mintlock.io/mintlock/policy"
	"mintlock.io/mintlock/policy/builtin"
	"mintlock.io/mintlock/royalty"
	"mintlock.io/mintlock/storage"
)

var (
	owner    = addr.MustParse("0x1111111111111111111111111111111111111111")
	alice    = addr.MustParse("0x2222222222222222222222222222222222222222")
	bob      = addr.MustParse("0x3333333333333333333333333333333333333333")
	carol    = addr.MustParse("0x4444444444444444444444444444444444444444")
	colAddr  = addr.MustParse("0xc011ec7104c011ec7104c011ec7104c011ec7104")
	filtAddr = addr.MustParse("0xf117e4f117e4f117e4f117e4f117e4f117e4f117")
)

func newCollection(t *testing.T, sink eventlog.Sink) *collection.Collection {
	t.Helper()
	c, err := collection.New(colAddr, collection.Config{
		Name:   "Glass Gardens",
		Symbol: "GLG",
		Owner:  owner,
		Sink:   sink,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsZeroAddresses(t *testing.T) {
	if _, err := collection.New(addr.Zero, collection.Config{Owner: owner}); err != collection.ErrZeroAddress {
		t.Fatalf("zero collection address: got %v", err)
	}
	if _, err := collection.New(colAddr, collection.Config{}); err != collection.ErrZeroAddress {
		t.Fatalf("zero owner: got %v", err)
	}
}

func TestMintSequentialAndGated(t *testing.T) {
	c := newCollection(t, nil)

	id1, err := c.Mint(owner, alice)
	if err != nil {
		t.Fatalf("Mint(1): %v", err)
	}
	id2, err := c.Mint(owner, bob)
	if err != nil {
		t.Fatalf("Mint(2): %v", err)
	}
	if id1 != 1 || id2 != 2 {
		t.Fatalf("ids = %d,%d; want 1,2", id1, id2)
	}

	if _, err := c.Mint(alice, alice); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("non-minter mint: got %v", err)
	}
	if err := c.RegisterMinter(owner, alice); err != nil {
		t.Fatalf("RegisterMinter: %v", err)
	}
	if _, err := c.Mint(alice, alice); err != nil {
		t.Fatalf("registered minter mint: %v", err)
	}

	if _, err := c.Mint(owner, addr.Zero); err != collection.ErrZeroAddress {
		t.Fatalf("mint to zero: got %v", err)
	}
	if got := c.TotalMinted(); got != 3 {
		t.Fatalf("TotalMinted = %d, want 3", got)
	}
}

func TestMintAtCollisionAndSequenceAdvance(t *testing.T) {
	c := newCollection(t, nil)

	if err := c.MintAt(owner, alice, 10); err != nil {
		t.Fatalf("MintAt(10): %v", err)
	}
	if err := c.MintAt(owner, bob, 10); err != collection.ErrTokenAlreadyMinted {
		t.Fatalf("duplicate MintAt: got %v", err)
	}
	if err := c.MintAt(owner, bob, 0); err != collection.ErrTokenDoesNotExist {
		t.Fatalf("MintAt(0): got %v", err)
	}

	// Sequential minting continues past the explicit id.
	id, err := c.Mint(owner, bob)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if id != 11 {
		t.Fatalf("next sequential id = %d, want 11", id)
	}
}

func TestSupplyCapAndFreeze(t *testing.T) {
	c, err := collection.New(colAddr, collection.Config{
		Name: "Capped", Symbol: "CAP", Owner: owner, SupplyCap: 2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Mint(owner, alice); err != nil {
		t.Fatalf("Mint(1): %v", err)
	}
	if _, err := c.Mint(owner, alice); err != nil {
		t.Fatalf("Mint(2): %v", err)
	}
	if _, err := c.Mint(owner, alice); err != collection.ErrSupplyCapReached {
		t.Fatalf("over cap: got %v", err)
	}

	c2 := newCollection(t, nil)
	if err := c2.FreezeSupply(alice); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("non-owner freeze: got %v", err)
	}
	if err := c2.FreezeSupply(owner); err != nil {
		t.Fatalf("FreezeSupply: %v", err)
	}
	if !c2.Frozen() {
		t.Fatalf("Frozen = false after freeze")
	}
	if err := c2.FreezeSupply(owner); err != collection.ErrSupplyFrozen {
		t.Fatalf("double freeze: got %v", err)
	}
	if _, err := c2.Mint(owner, alice); err != collection.ErrSupplyFrozen {
		t.Fatalf("mint after freeze: got %v", err)
	}
}

func TestTransferAuthorization(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	if err := c.TransferFrom(bob, alice, bob, id); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("stranger transfer: got %v", err)
	}
	if err := c.TransferFrom(alice, bob, carol, id); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("wrong from: got %v", err)
	}
	if err := c.TransferFrom(alice, alice, addr.Zero, id); err != collection.ErrZeroAddress {
		t.Fatalf("transfer to zero: got %v", err)
	}
	if err := c.TransferFrom(alice, alice, carol, 99); err != collection.ErrTokenDoesNotExist {
		t.Fatalf("missing token: got %v", err)
	}

	// Holder transfers directly.
	if err := c.TransferFrom(alice, alice, bob, id); err != nil {
		t.Fatalf("holder transfer: %v", err)
	}
	got, err := c.OwnerOf(id)
	if err != nil || got != bob {
		t.Fatalf("OwnerOf = %v, %v; want %v", got, err, bob)
	}
}

func TestSafeTransferCarriesData(t *testing.T) {
	sink := eventlog.NewMemory()
	c := newCollection(t, sink)
	id, _ := c.Mint(owner, alice)

	if err := c.SafeTransferFrom(bob, alice, bob, id, []byte{0x01}); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("stranger safe transfer: got %v", err)
	}
	if err := c.SafeTransferFrom(alice, alice, bob, id, []byte{0xde, 0xad}); err != nil {
		t.Fatalf("SafeTransferFrom: %v", err)
	}
	got, err := c.OwnerOf(id)
	if err != nil || got != bob {
		t.Fatalf("OwnerOf = %v, %v; want %v", got, err, bob)
	}

	evs := sink.Events()
	last := evs[len(evs)-1]
	if last.Name != eventlog.Transfer {
		t.Fatalf("last event = %q, want %q", last.Name, eventlog.Transfer)
	}
	if last.Payload["data"] != "dead" {
		t.Fatalf("data payload = %v, want \"dead\"", last.Payload["data"])
	}
}

func TestApprovalSingleUse(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	if err := c.Approve(bob, carol, id); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("stranger approve: got %v", err)
	}
	if err := c.Approve(alice, carol, id); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got, _ := c.GetApproved(id); got != carol {
		t.Fatalf("GetApproved = %v, want %v", got, carol)
	}

	if err := c.TransferFrom(carol, alice, carol, id); err != nil {
		t.Fatalf("approved transfer: %v", err)
	}
	// The approval does not survive the transfer.
	if got, _ := c.GetApproved(id); got.Defined() {
		t.Fatalf("approval survived transfer: %v", got)
	}
	if err := c.TransferFrom(carol, carol, bob, id); err != nil {
		t.Fatalf("new holder transfer: %v", err)
	}
}

func TestOperatorApproval(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	if err := c.SetApprovalForAll(alice, addr.Zero, true); err != collection.ErrZeroAddress {
		t.Fatalf("zero operator: got %v", err)
	}
	if err := c.SetApprovalForAll(alice, alice, true); err != collection.ErrZeroAddress {
		t.Fatalf("self operator: got %v", err)
	}
	if err := c.SetApprovalForAll(alice, bob, true); err != nil {
		t.Fatalf("SetApprovalForAll: %v", err)
	}
	if !c.IsApprovedForAll(alice, bob) {
		t.Fatalf("IsApprovedForAll = false after grant")
	}

	// Operators may approve and transfer on the holder's behalf.
	if err := c.Approve(bob, carol, id); err != nil {
		t.Fatalf("operator Approve: %v", err)
	}
	if err := c.TransferFrom(bob, alice, carol, id); err != nil {
		t.Fatalf("operator transfer: %v", err)
	}

	if err := c.SetApprovalForAll(alice, bob, false); err != nil {
		t.Fatalf("revoke operator: %v", err)
	}
	if c.IsApprovedForAll(alice, bob) {
		t.Fatalf("IsApprovedForAll = true after revoke")
	}
}

func TestBalanceOf(t *testing.T) {
	c := newCollection(t, nil)
	c.Mint(owner, alice)
	c.Mint(owner, alice)
	c.Mint(owner, bob)
	if got := c.BalanceOf(alice); got != 2 {
		t.Fatalf("BalanceOf(alice) = %d, want 2", got)
	}
	if got := c.BalanceOf(carol); got != 0 {
		t.Fatalf("BalanceOf(carol) = %d, want 0", got)
	}
}

func TestOperatorFilterGatesTransfers(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	reg := opfilter.NewMemory()
	if err := c.SetOperatorFilter(alice, reg, filtAddr, addr.Zero); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("non-owner link: got %v", err)
	}
	if err := c.SetOperatorFilter(owner, reg, filtAddr, addr.Zero); err != nil {
		t.Fatalf("SetOperatorFilter: %v", err)
	}
	if got := c.OperatorFilterAddr(); got != filtAddr {
		t.Fatalf("OperatorFilterAddr = %v, want %v", got, filtAddr)
	}

	reg.SetFiltered(colAddr, bob, true)
	if err := c.TransferFrom(bob, alice, bob, id); !errors.Is(err, policy.ErrAddressFiltered) {
		t.Fatalf("filtered transfer: got %v", err)
	}
	if err := c.Approve(alice, bob, id); !errors.Is(err, policy.ErrAddressFiltered) {
		t.Fatalf("approve filtered operator: got %v", err)
	}
	if err := c.SetApprovalForAll(alice, bob, true); !errors.Is(err, policy.ErrAddressFiltered) {
		t.Fatalf("grant filtered operator: got %v", err)
	}
	// Unfiltered parties are unaffected.
	if err := c.TransferFrom(alice, alice, carol, id); err != nil {
		t.Fatalf("unfiltered transfer: %v", err)
	}

	// Unlinking reverts to fail-open.
	if err := c.ClearOperatorFilter(owner); err != nil {
		t.Fatalf("ClearOperatorFilter: %v", err)
	}
	if err := c.TransferFrom(carol, carol, bob, id); err != nil {
		t.Fatalf("transfer after unlink: %v", err)
	}
	// Clearing again is a no-op success.
	if err := c.ClearOperatorFilter(owner); err != nil {
		t.Fatalf("second ClearOperatorFilter: %v", err)
	}
}

// stubRegistry scripts registry failures and records registrations.
type stubRegistry struct {
	registerErr  error
	subscribeErr error
	registered   map[addr.Address]bool
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{registered: map[addr.Address]bool{}}
}

func (r *stubRegistry) Register(c addr.Address) error {
	if r.registerErr != nil {
		return r.registerErr
	}
	r.registered[c] = true
	return nil
}

func (r *stubRegistry) Unregister(c addr.Address) error {
	delete(r.registered, c)
	return nil
}

func (r *stubRegistry) Subscribe(c, target addr.Address) error { return r.subscribeErr }

func (r *stubRegistry) IsOperatorFiltered(c, caller, operator addr.Address) bool { return false }

// flipSink forwards to a memory sink until failure is switched on.
type flipSink struct {
	fail bool
	err  error
	mem  *eventlog.Memory
}

func (s *flipSink) Emit(c addr.Address, name string, payload map[string]any) error {
	if s.fail {
		return s.err
	}
	return s.mem.Emit(c, name, payload)
}

func TestFilterLinkFailureEmitsNothing(t *testing.T) {
	sink := eventlog.NewMemory()
	c := newCollection(t, sink)

	if err := c.SetOperatorFilter(owner, nil, filtAddr, addr.Zero); !errors.Is(err, opfilter.ErrNilRegistry) {
		t.Fatalf("nil registry: got %v", err)
	}

	regErr := errors.New("registry refused")
	reg := newStubRegistry()
	reg.registerErr = regErr
	if err := c.SetOperatorFilter(owner, reg, filtAddr, addr.Zero); !errors.Is(err, regErr) {
		t.Fatalf("failing Register: got %v", err)
	}

	subErr := errors.New("subscription refused")
	reg = newStubRegistry()
	reg.subscribeErr = subErr
	if err := c.SetOperatorFilter(owner, reg, filtAddr, bob); !errors.Is(err, subErr) {
		t.Fatalf("failing Subscribe: got %v", err)
	}
	// The registration is unwound when the subscription fails.
	if len(reg.registered) != 0 {
		t.Fatalf("failed link left the collection registered")
	}

	if c.OperatorFilterAddr().Defined() {
		t.Fatalf("failed links left the collection linked")
	}
	if got := len(sink.Events()); got != 0 {
		t.Fatalf("failed links mirrored %d events to the sink", got)
	}
	if got := len(c.Events()); got != 0 {
		t.Fatalf("failed links recorded %d local events", got)
	}
}

func TestFilterSinkFailureRollsBackLink(t *testing.T) {
	sinkErr := errors.New("sink down")
	sink := &flipSink{err: sinkErr, mem: eventlog.NewMemory()}
	c := newCollection(t, sink)
	reg := newStubRegistry()

	sink.fail = true
	if err := c.SetOperatorFilter(owner, reg, filtAddr, addr.Zero); !errors.Is(err, sinkErr) {
		t.Fatalf("link with failing sink: got %v", err)
	}
	if c.OperatorFilterAddr().Defined() {
		t.Fatalf("link committed despite sink failure")
	}
	if len(reg.registered) != 0 {
		t.Fatalf("registration survived the aborted link")
	}

	sink.fail = false
	if err := c.SetOperatorFilter(owner, reg, filtAddr, addr.Zero); err != nil {
		t.Fatalf("SetOperatorFilter: %v", err)
	}

	sink.fail = true
	if err := c.ClearOperatorFilter(owner); !errors.Is(err, sinkErr) {
		t.Fatalf("unlink with failing sink: got %v", err)
	}
	if got := c.OperatorFilterAddr(); got != filtAddr {
		t.Fatalf("aborted unlink cleared the link: %v", got)
	}
	if !reg.registered[colAddr] {
		t.Fatalf("aborted unlink left the collection unregistered")
	}

	sink.fail = false
	if err := c.ClearOperatorFilter(owner); err != nil {
		t.Fatalf("ClearOperatorFilter: %v", err)
	}
	if got := len(c.Events()); got != len(sink.mem.Events()) {
		t.Fatalf("local log (%d) and sink (%d) diverged", got, len(sink.mem.Events()))
	}
}

func TestMetadataOwnerOnlyWithoutManager(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	if _, err := c.SetTokenMetadata(alice, id, []byte("x")); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("holder metadata update without manager: got %v", err)
	}
	mcid, err := c.SetTokenMetadata(owner, id, []byte(`{"name":"one"}`))
	if err != nil {
		t.Fatalf("SetTokenMetadata: %v", err)
	}
	b, got, err := c.TokenMetadata(id)
	if err != nil {
		t.Fatalf("TokenMetadata: %v", err)
	}
	if got != mcid || string(b) != `{"name":"one"}` {
		t.Fatalf("metadata round trip mismatch")
	}

	if _, _, err := c.TokenMetadata(99); err != collection.ErrTokenDoesNotExist {
		t.Fatalf("missing token metadata: got %v", err)
	}
	id2, _ := c.Mint(owner, alice)
	if _, _, err := c.TokenMetadata(id2); err != collection.ErrNoMetadata {
		t.Fatalf("unset metadata: got %v", err)
	}
}

func TestMetadataManagerDecides(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	// A granular manager that authorizes alice displaces the owner-only rule.
	if err := c.SetGranularTokenManagers(owner, []uint64{id}, []policy.Manager{builtin.OwnerOnly{Owner: alice}}); err != nil {
		t.Fatalf("SetGranularTokenManagers: %v", err)
	}
	if _, err := c.SetTokenMetadata(alice, id, []byte("by alice")); err != nil {
		t.Fatalf("manager-approved update: %v", err)
	}
	// The collection owner is now subject to the manager too.
	if _, err := c.SetTokenMetadata(owner, id, []byte("by owner")); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("owner update under manager: got %v", err)
	}

	// A locked default freezes tokens without a granular override.
	id2, _ := c.Mint(owner, alice)
	if err := c.SetDefaultTokenManager(owner, builtin.Locked{}); err != nil {
		t.Fatalf("SetDefaultTokenManager: %v", err)
	}
	if _, err := c.SetTokenMetadata(owner, id2, []byte("x")); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("update under locked default: got %v", err)
	}
	// ...while the granular override still governs its own token.
	if _, err := c.SetTokenMetadata(alice, id, []byte("still alice")); err != nil {
		t.Fatalf("granular override after locked default: %v", err)
	}
}

func TestManagerSwapNeedsConsent(t *testing.T) {
	c := newCollection(t, nil)

	if err := c.SetDefaultTokenManager(owner, builtin.Locked{}); err != nil {
		t.Fatalf("install locked: %v", err)
	}
	if err := c.SetDefaultTokenManager(owner, builtin.OwnerOnly{Owner: owner}); !errors.Is(err, policy.ErrManagerSwapBlocked) {
		t.Fatalf("swap over locked: got %v", err)
	}
	if err := c.RemoveDefaultTokenManager(owner); !errors.Is(err, policy.ErrManagerRemoveBlocked) {
		t.Fatalf("remove locked: got %v", err)
	}
}

func TestRoyaltyThroughCollection(t *testing.T) {
	c := newCollection(t, nil)
	id, _ := c.Mint(owner, alice)

	if err := c.SetDefaultRoyalty(owner, royalty.Record{Recipient: carol, BPS: 250}); err != nil {
		t.Fatalf("SetDefaultRoyalty: %v", err)
	}
	if who, amt := c.RoyaltyInfo(id, 10000); who != carol || amt != 250 {
		t.Fatalf("RoyaltyInfo = %v, %d; want %v, 250", who, amt, carol)
	}

	if err := c.SetGranularRoyalties(owner, []uint64{id}, []royalty.Record{{Recipient: bob, BPS: 1000}}); err != nil {
		t.Fatalf("SetGranularRoyalties: %v", err)
	}
	if who, amt := c.RoyaltyInfo(id, 999); who != bob || amt != 99 {
		t.Fatalf("granular RoyaltyInfo = %v, %d; want %v, 99", who, amt, bob)
	}
	// Tokens without a granular record fall back to the default.
	if who, amt := c.RoyaltyInfo(77, 10000); who != carol || amt != 250 {
		t.Fatalf("fallback RoyaltyInfo = %v, %d", who, amt)
	}

	if err := c.SetDefaultRoyalty(owner, royalty.Record{Recipient: carol, BPS: 10001}); !errors.Is(err, policy.ErrRoyaltyBPSInvalid) {
		t.Fatalf("over-bound bps: got %v", err)
	}

	// A royalty manager gates further record changes.
	if err := c.SetRoyaltyManager(owner, builtin.Locked{}); err != nil {
		t.Fatalf("SetRoyaltyManager: %v", err)
	}
	if err := c.SetDefaultRoyalty(owner, royalty.Record{Recipient: carol, BPS: 100}); !errors.Is(err, policy.ErrRoyaltySetBlocked) {
		t.Fatalf("royalty set under locked manager: got %v", err)
	}
	if err := c.RemoveRoyaltyManager(owner); !errors.Is(err, policy.ErrManagerRemoveBlocked) {
		t.Fatalf("remove locked royalty manager: got %v", err)
	}
}

func TestTransferOwnershipRepointsEverything(t *testing.T) {
	c := newCollection(t, nil)

	if err := c.TransferOwnership(alice, alice); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("non-owner ownership transfer: got %v", err)
	}
	if err := c.TransferOwnership(owner, addr.Zero); err != collection.ErrZeroAddress {
		t.Fatalf("transfer to zero owner: got %v", err)
	}
	if err := c.TransferOwnership(owner, alice); err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if got := c.Owner(); got != alice {
		t.Fatalf("Owner = %v, want %v", got, alice)
	}

	// The old owner lost every administrative surface; the new owner gained them.
	if err := c.SetDefaultTokenManager(owner, builtin.OwnerOnly{Owner: alice}); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("old owner sets manager: got %v", err)
	}
	if err := c.SetDefaultTokenManager(alice, builtin.OwnerOnly{Owner: alice}); err != nil {
		t.Fatalf("new owner sets manager: %v", err)
	}
	if err := c.SetDefaultRoyalty(alice, royalty.Record{Recipient: bob, BPS: 100}); err != nil {
		t.Fatalf("new owner sets royalty: %v", err)
	}
	if _, err := c.Mint(owner, bob); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("old owner mint: got %v", err)
	}
}

func TestMinterRegistrationErrors(t *testing.T) {
	c := newCollection(t, nil)

	if err := c.RegisterMinter(alice, bob); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("non-owner register: got %v", err)
	}
	if err := c.RegisterMinter(owner, bob); err != nil {
		t.Fatalf("RegisterMinter: %v", err)
	}
	if err := c.RegisterMinter(owner, bob); !errors.Is(err, policy.ErrMinterRegistrationInvalid) {
		t.Fatalf("double register: got %v", err)
	}
	if err := c.UnregisterMinter(owner, carol); !errors.Is(err, policy.ErrMinterRegistrationInvalid) {
		t.Fatalf("unregister absent: got %v", err)
	}
	if err := c.UnregisterMinter(owner, bob); err != nil {
		t.Fatalf("UnregisterMinter: %v", err)
	}
	if c.IsMinter(bob) {
		t.Fatalf("IsMinter = true after unregister")
	}
}

func TestEventsMirroredToSinkAndLog(t *testing.T) {
	sink := eventlog.NewMemory()
	c := newCollection(t, sink)

	id, _ := c.Mint(owner, alice)
	c.SetDefaultTokenManager(owner, builtin.OwnerOnly{Owner: owner})
	c.SetDefaultRoyalty(owner, royalty.Record{Recipient: carol, BPS: 500})
	c.RegisterMinter(owner, bob)
	c.TransferFrom(alice, alice, bob, id)
	c.FreezeSupply(owner)

	local := c.Events()
	remote := sink.Events()
	if !reflect.DeepEqual(local, remote) {
		t.Fatalf("local log and sink diverged:\nlocal:  %+v\nremote: %+v", local, remote)
	}
	if len(local) != 6 {
		t.Fatalf("event count = %d, want 6", len(local))
	}

	// Spot-check one payload.
	if local[0].Name != eventlog.Transfer {
		t.Fatalf("first event = %s, want Transfer", local[0].Name)
	}
	want := map[string]any{"from": addr.Zero.String(), "to": alice.String(), "id": "1"}
	if !reflect.DeepEqual(local[0].Payload, want) {
		t.Fatalf("mint payload = %+v, want %+v", local[0].Payload, want)
	}
	if local[1].Payload["manager"] != "owneronly:"+owner.String() {
		t.Fatalf("manager payload = %+v", local[1].Payload)
	}
	for _, ev := range local {
		if ev.Collection != colAddr {
			t.Fatalf("event carries wrong collection: %+v", ev)
		}
	}
}

func TestSinkFailureAbortsEverything(t *testing.T) {
	sinkErr := errors.New("sink down")
	c := newCollection(t, eventlog.FailingSink{Err: sinkErr})

	if _, err := c.Mint(owner, alice); !errors.Is(err, sinkErr) {
		t.Fatalf("mint with failing sink: got %v", err)
	}
	if got := c.TotalMinted(); got != 0 {
		t.Fatalf("minted state leaked: %d", got)
	}
	if err := c.SetDefaultTokenManager(owner, builtin.OwnerOnly{Owner: owner}); !errors.Is(err, sinkErr) {
		t.Fatalf("manager set with failing sink: got %v", err)
	}
	if c.DefaultTokenManager() != nil {
		t.Fatalf("manager state leaked")
	}
	if err := c.SetDefaultRoyalty(owner, royalty.Record{Recipient: carol, BPS: 100}); !errors.Is(err, sinkErr) {
		t.Fatalf("royalty set with failing sink: got %v", err)
	}
	if _, amt := c.RoyaltyInfo(1, 10000); amt != 0 {
		t.Fatalf("royalty state leaked: %d", amt)
	}
	if err := c.FreezeSupply(owner); !errors.Is(err, sinkErr) {
		t.Fatalf("freeze with failing sink: got %v", err)
	}
	if c.Frozen() {
		t.Fatalf("frozen state leaked")
	}
	if len(c.Events()) != 0 {
		t.Fatalf("local log recorded aborted operations")
	}
}

func TestMetadataSinkFailureLeavesOnlyInertBlob(t *testing.T) {
	sinkErr := errors.New("sink down")
	sink := &flipSink{err: sinkErr, mem: eventlog.NewMemory()}
	cas := storage.NewMemory()
	c, err := collection.New(colAddr, collection.Config{
		Name:     "Glass Gardens",
		Symbol:   "GLG",
		Owner:    owner,
		Metadata: cas,
		Sink:     sink,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	id, err := c.Mint(owner, alice)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	blob := []byte(`{"name":"orphan"}`)
	sink.fail = true
	if _, err := c.SetTokenMetadata(owner, id, blob); !errors.Is(err, sinkErr) {
		t.Fatalf("metadata set with failing sink: got %v", err)
	}
	// The token still has no metadata.
	if _, _, err := c.TokenMetadata(id); err != collection.ErrNoMetadata {
		t.Fatalf("aborted metadata set committed: got %v", err)
	}
	// The blob remains in the store, unreferenced by any token.
	if !cas.Has(cidutil.MustCID(blob)) {
		t.Fatalf("expected inert blob in the store")
	}
}

func TestValidationFailureEmitsNothing(t *testing.T) {
	sink := eventlog.NewMemory()
	c := newCollection(t, sink)

	c.Mint(alice, alice)                       // unauthorized
	c.SetDefaultTokenManager(owner, nil)       // invalid candidate
	c.TransferFrom(alice, alice, bob, 1)       // missing token
	c.SetDefaultRoyalty(alice, royalty.Record{BPS: 1}) // unauthorized

	if got := len(sink.Events()); got != 0 {
		t.Fatalf("sink saw %d events from failed operations", got)
	}
	if got := len(c.Events()); got != 0 {
		t.Fatalf("local log saw %d events from failed operations", got)
	}
}

func TestGranularBatchAtomicity(t *testing.T) {
	sink := eventlog.NewMemory()
	c := newCollection(t, sink)

	// Second candidate fails its probe; the first must not be installed.
	err := c.SetGranularTokenManagers(owner,
		[]uint64{1, 2},
		[]policy.Manager{builtin.OwnerOnly{Owner: alice}, builtin.OwnerOnly{}})
	if !errors.Is(err, policy.ErrInvalidManager) {
		t.Fatalf("batch with bad candidate: got %v", err)
	}
	if c.TokenManagerOf(1) != nil {
		t.Fatalf("partial batch committed")
	}
	if len(sink.Events()) != 0 {
		t.Fatalf("aborted batch reached the sink")
	}

	if err := c.SetGranularTokenManagers(owner, []uint64{1}, nil); !errors.Is(err, policy.ErrMismatchedLengths) {
		t.Fatalf("mismatched lengths: got %v", err)
	}
}
