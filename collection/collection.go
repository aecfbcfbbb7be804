// Package collection implements the collection aggregate: the token ledger
// plus every administrative surface of one NFT collection, composed from the
// delegation, royalty, opfilter, minter, storage, and eventlog packages.
//
// Every state-changing operation follows the same shape: validate fully,
// mirror the event to the external sink, commit, then record the event in the
// local log. A sink failure therefore aborts the operation with no state
// change, exactly like any validation failure.
package collection

import (
	"encoding/hex"
	"strconv"
	"sync"

	"github.com/ipfs/go-cid"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/delegation"
	"mintlock.io/mintlock/eventlog"
	"mintlock.io/mintlock/minter"
	"mintlock.io/mintlock/opfilter"
	"mintlock.io/mintlock/policy"
	"mintlock.io/mintlock/royalty"
	"mintlock.io/mintlock/storage"
)

// Config carries the immutable creation parameters of a collection.
type Config struct {
	Name   string
	Symbol string
	Owner  addr.Address

	// SupplyCap bounds the number of mintable tokens; zero means unbounded.
	SupplyCap uint64

	// Metadata is the content-addressed store for token metadata blobs.
	// Defaults to an in-memory store.
	Metadata storage.CAS

	// Sink is the external event mirror. Defaults to eventlog.Discard.
	Sink eventlog.Sink
}

// Collection is the root aggregate for one collection. All exported methods
// are safe for concurrent use; a single mutex serializes every operation, so
// the composed slot/table/set types never need their own locking.
type Collection struct {
	mu sync.Mutex

	address addr.Address
	name    string
	symbol  string
	owner   addr.Address

	tokenSlot *delegation.Slot
	royalties *royalty.Table
	filter    *opfilter.Link
	minters   *minter.Set

	owners    map[uint64]addr.Address
	approvals map[uint64]addr.Address
	operators map[addr.Address]map[addr.Address]bool
	metadata  map[uint64]cid.Cid
	metaStore storage.CAS

	nextID    uint64
	minted    uint64
	supplyCap uint64
	frozen    bool

	sink    eventlog.Sink
	log     eventlog.Log
	pending []eventlog.Event
}

// New creates an empty collection at address.
func New(address addr.Address, cfg Config) (*Collection, error) {
	if !address.Defined() || !cfg.Owner.Defined() {
		return nil, ErrZeroAddress
	}
	if cfg.Metadata == nil {
		cfg.Metadata = storage.NewMemory()
	}
	if cfg.Sink == nil {
		cfg.Sink = eventlog.Discard{}
	}
	c := &Collection{
		address:   address,
		name:      cfg.Name,
		symbol:    cfg.Symbol,
		owner:     cfg.Owner,
		filter:    opfilter.NewLink(address),
		minters:   minter.NewSet(),
		owners:    make(map[uint64]addr.Address),
		approvals: make(map[uint64]addr.Address),
		operators: make(map[addr.Address]map[addr.Address]bool),
		metadata:  make(map[uint64]cid.Cid),
		metaStore: cfg.Metadata,
		nextID:    1,
		supplyCap: cfg.SupplyCap,
		sink:      cfg.Sink,
	}
	c.tokenSlot = delegation.NewSlot(cfg.Owner, policy.ProbeToken, c.observeTokenSlot)
	c.royalties = royalty.NewTable(cfg.Owner, c.observeRoyaltySlot, c.observeRoyalty)
	return c, nil
}

// Addr returns the collection address.
func (c *Collection) Addr() addr.Address { return c.address }

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Symbol returns the collection symbol.
func (c *Collection) Symbol() string { return c.symbol }

// Owner returns the current collection owner.
func (c *Collection) Owner() addr.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owner
}

// Events returns a copy of the local event log in emission order.
func (c *Collection) Events() []eventlog.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.All()
}

// run wraps one administrative operation: events mirrored during fn are held
// pending and reach the local log only if fn commits.
func (c *Collection) run(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = c.pending[:0]
	if err := fn(); err != nil {
		c.pending = c.pending[:0]
		return err
	}
	for _, ev := range c.pending {
		c.log.Append(ev)
	}
	c.pending = c.pending[:0]
	return nil
}

// mirror sends one event to the external sink and stages it for the local
// log. A sink failure propagates and aborts the enclosing operation.
func (c *Collection) mirror(name string, payload map[string]any) error {
	if err := c.sink.Emit(c.address, name, payload); err != nil {
		return err
	}
	c.pending = append(c.pending, eventlog.Event{Collection: c.address, Name: name, Payload: payload})
	return nil
}

func idStrings(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(id, 10)
	}
	return out
}

func describeAll(ms []policy.Manager) []any {
	out := make([]any, len(ms))
	for i, m := range ms {
		out[i] = policy.Describe(m)
	}
	return out
}

// observeTokenSlot mirrors metadata-policy slot transitions. It runs inside
// run() with the mutex held, after the slot validated and before it commits.
func (c *Collection) observeTokenSlot(ch delegation.Change) error {
	switch ch.Op {
	case delegation.OpSetDefault:
		return c.mirror(eventlog.DefaultTokenManagerChanged, map[string]any{
			"manager": policy.Describe(ch.Managers[0]),
		})
	case delegation.OpRemoveDefault:
		return c.mirror(eventlog.DefaultTokenManagerChanged, map[string]any{
			"manager": "unset",
		})
	case delegation.OpSetGranular:
		return c.mirror(eventlog.GranularTokenManagersSet, map[string]any{
			"ids":      idStrings(ch.IDs),
			"managers": describeAll(ch.Managers),
		})
	case delegation.OpRemoveGranular:
		return c.mirror(eventlog.GranularTokenManagersRemoved, map[string]any{
			"ids": idStrings(ch.IDs),
		})
	}
	return nil
}

// observeRoyaltySlot mirrors royalty-policy manager transitions.
func (c *Collection) observeRoyaltySlot(ch delegation.Change) error {
	switch ch.Op {
	case delegation.OpSetDefault:
		return c.mirror(eventlog.RoyaltyManagerChanged, map[string]any{
			"manager": policy.Describe(ch.Managers[0]),
		})
	case delegation.OpRemoveDefault:
		return c.mirror(eventlog.RoyaltyManagerChanged, map[string]any{
			"manager": "unset",
		})
	}
	return nil
}

// observeRoyalty mirrors royalty-record mutations.
func (c *Collection) observeRoyalty(ch royalty.Change) error {
	if ch.Default {
		rec := ch.Records[0]
		return c.mirror(eventlog.DefaultRoyaltySet, map[string]any{
			"recipient": rec.Recipient.String(),
			"bps":       strconv.FormatUint(uint64(rec.BPS), 10),
		})
	}
	recipients := make([]any, len(ch.Records))
	bps := make([]any, len(ch.Records))
	for i, rec := range ch.Records {
		recipients[i] = rec.Recipient.String()
		bps[i] = strconv.FormatUint(uint64(rec.BPS), 10)
	}
	return c.mirror(eventlog.GranularRoyaltiesSet, map[string]any{
		"ids":        idStrings(ch.IDs),
		"recipients": recipients,
		"bps":        bps,
	})
}

// --- metadata-policy managers ---

// SetDefaultTokenManager installs or swaps the default metadata-policy
// manager. A swap needs the sitting manager's consent.
func (c *Collection) SetDefaultTokenManager(actor addr.Address, m policy.Manager) error {
	return c.run(func() error { return c.tokenSlot.SetDefault(actor, m) })
}

// RemoveDefaultTokenManager clears the default metadata-policy manager with
// its consent.
func (c *Collection) RemoveDefaultTokenManager(actor addr.Address) error {
	return c.run(func() error { return c.tokenSlot.RemoveDefault(actor) })
}

// SetGranularTokenManagers installs per-token managers atomically.
func (c *Collection) SetGranularTokenManagers(actor addr.Address, ids []uint64, ms []policy.Manager) error {
	return c.run(func() error { return c.tokenSlot.SetGranular(actor, ids, ms) })
}

// RemoveGranularTokenManagers clears per-token managers atomically.
func (c *Collection) RemoveGranularTokenManagers(actor addr.Address, ids []uint64) error {
	return c.run(func() error { return c.tokenSlot.RemoveGranular(actor, ids) })
}

// TokenManagerOf resolves the manager governing token id (granular over
// default); nil means no policy applies.
func (c *Collection) TokenManagerOf(id uint64) policy.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenSlot.Resolve(id)
}

// DefaultTokenManager returns the default metadata-policy manager, or nil.
func (c *Collection) DefaultTokenManager() policy.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenSlot.Default()
}

// --- royalty ---

// SetDefaultRoyalty commits the collection-wide royalty record.
func (c *Collection) SetDefaultRoyalty(actor addr.Address, rec royalty.Record) error {
	return c.run(func() error { return c.royalties.SetDefault(actor, rec) })
}

// SetGranularRoyalties commits per-token royalty records atomically.
func (c *Collection) SetGranularRoyalties(actor addr.Address, ids []uint64, recs []royalty.Record) error {
	return c.run(func() error { return c.royalties.SetGranular(actor, ids, recs) })
}

// RoyaltyInfo resolves the royalty for a sale of token id at salePrice:
// floor(salePrice * bps / 10000) to the record's recipient. An absent record
// is the zero royalty.
func (c *Collection) RoyaltyInfo(id uint64, salePrice uint64) (addr.Address, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.royalties.RoyaltyOf(id, salePrice)
}

// SetRoyaltyManager installs or swaps the royalty-policy manager.
func (c *Collection) SetRoyaltyManager(actor addr.Address, m policy.Manager) error {
	return c.run(func() error { return c.royalties.Managers().SetDefault(actor, m) })
}

// RemoveRoyaltyManager clears the royalty-policy manager with its consent.
func (c *Collection) RemoveRoyaltyManager(actor addr.Address) error {
	return c.run(func() error { return c.royalties.Managers().RemoveDefault(actor) })
}

// RoyaltyManager returns the current royalty-policy manager, or nil.
func (c *Collection) RoyaltyManager() policy.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.royalties.Managers().Default()
}

// --- minters ---

// RegisterMinter adds an address to the minter set. Owner only.
func (c *Collection) RegisterMinter(actor, m addr.Address) error {
	return c.run(func() error {
		if actor != c.owner {
			return policy.ErrUnauthorized
		}
		if c.minters.Contains(m) {
			return policy.ErrMinterRegistrationInvalid
		}
		if err := c.mirror(eventlog.MinterRegistrationChanged, map[string]any{
			"minter": m.String(), "registered": true,
		}); err != nil {
			return err
		}
		return c.minters.Register(m)
	})
}

// UnregisterMinter removes an address from the minter set. Owner only.
func (c *Collection) UnregisterMinter(actor, m addr.Address) error {
	return c.run(func() error {
		if actor != c.owner {
			return policy.ErrUnauthorized
		}
		if !c.minters.Contains(m) {
			return policy.ErrMinterRegistrationInvalid
		}
		if err := c.mirror(eventlog.MinterRegistrationChanged, map[string]any{
			"minter": m.String(), "registered": false,
		}); err != nil {
			return err
		}
		return c.minters.Unregister(m)
	})
}

// IsMinter reports minter-set membership.
func (c *Collection) IsMinter(m addr.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minters.Contains(m)
}

// Minters returns the minter set sorted by address.
func (c *Collection) Minters() []addr.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minters.Members()
}

// --- operator filter ---

// SetOperatorFilter links the collection to an operator-filter registry and
// optionally subscribes to another registrant's filtered set. Owner only.
// Re-linking overwrites the previous reference.
func (c *Collection) SetOperatorFilter(actor addr.Address, registry opfilter.Registry, registryAddr, subscribeTo addr.Address) error {
	return c.run(func() error {
		if actor != c.owner {
			return policy.ErrUnauthorized
		}
		stage, err := c.filter.PrepareLink(registry, registryAddr, subscribeTo)
		if err != nil {
			return err
		}
		if err := c.mirror(eventlog.OperatorFilterChanged, map[string]any{
			"registry": registryAddr.String(), "linked": true,
		}); err != nil {
			stage.Abort()
			return err
		}
		stage.Commit()
		return nil
	})
}

// ClearOperatorFilter unlinks the registry; the collection reverts to
// fail-open. Owner only; clearing while unlinked is a no-op success.
func (c *Collection) ClearOperatorFilter(actor addr.Address) error {
	return c.run(func() error {
		if actor != c.owner {
			return policy.ErrUnauthorized
		}
		stage, err := c.filter.PrepareUnlink()
		if err != nil {
			return err
		}
		if stage == nil {
			return nil
		}
		if err := c.mirror(eventlog.OperatorFilterChanged, map[string]any{
			"registry": addr.Zero.String(), "linked": false,
		}); err != nil {
			stage.Abort()
			return err
		}
		stage.Commit()
		return nil
	})
}

// OperatorFilterAddr returns the linked registry address, or the zero address
// when unlinked.
func (c *Collection) OperatorFilterAddr() addr.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.RegistryAddr()
}

// --- supply ---

// Mint creates the next sequential token for to. Owner or registered minter.
func (c *Collection) Mint(actor, to addr.Address) (uint64, error) {
	var id uint64
	err := c.run(func() error {
		var err error
		id, err = c.mintLocked(actor, to, c.nextID)
		return err
	})
	return id, err
}

// MintAt creates token id for to, failing if the id is taken. Owner or
// registered minter.
func (c *Collection) MintAt(actor, to addr.Address, id uint64) error {
	return c.run(func() error {
		_, err := c.mintLocked(actor, to, id)
		return err
	})
}

func (c *Collection) mintLocked(actor, to addr.Address, id uint64) (uint64, error) {
	if actor != c.owner && !c.minters.Contains(actor) {
		return 0, policy.ErrUnauthorized
	}
	if !to.Defined() {
		return 0, ErrZeroAddress
	}
	if c.frozen {
		return 0, ErrSupplyFrozen
	}
	if c.supplyCap != 0 && c.minted >= c.supplyCap {
		return 0, ErrSupplyCapReached
	}
	if id == 0 {
		return 0, ErrTokenDoesNotExist
	}
	if _, taken := c.owners[id]; taken {
		return 0, ErrTokenAlreadyMinted
	}
	if err := c.mirror(eventlog.Transfer, map[string]any{
		"from": addr.Zero.String(),
		"to":   to.String(),
		"id":   strconv.FormatUint(id, 10),
	}); err != nil {
		return 0, err
	}
	c.owners[id] = to
	c.minted++
	if id >= c.nextID {
		c.nextID = id + 1
	}
	return id, nil
}

// FreezeSupply permanently stops minting. Owner only; one-way.
func (c *Collection) FreezeSupply(actor addr.Address) error {
	return c.run(func() error {
		if actor != c.owner {
			return policy.ErrUnauthorized
		}
		if c.frozen {
			return ErrSupplyFrozen
		}
		if err := c.mirror(eventlog.SupplyFrozen, nil); err != nil {
			return err
		}
		c.frozen = true
		return nil
	})
}

// Frozen reports whether the supply is frozen.
func (c *Collection) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frozen
}

// TotalMinted returns the number of minted tokens.
func (c *Collection) TotalMinted() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minted
}

// SupplyCap returns the configured cap; zero means unbounded.
func (c *Collection) SupplyCap() uint64 { return c.supplyCap }

// --- token ledger ---

// OwnerOf returns the owner of token id.
func (c *Collection) OwnerOf(id uint64) (addr.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.owners[id]
	if !ok {
		return addr.Zero, ErrTokenDoesNotExist
	}
	return owner, nil
}

// BalanceOf counts the tokens held by owner.
func (c *Collection) BalanceOf(owner addr.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n uint64
	for _, o := range c.owners {
		if o == owner {
			n++
		}
	}
	return n
}

// Approve grants approved the right to transfer token id. The caller must be
// the token owner or an approved operator; the filter registry, when linked,
// is consulted first.
func (c *Collection) Approve(actor, approved addr.Address, id uint64) error {
	return c.run(func() error {
		if err := c.filter.Check(actor, approved); err != nil {
			return err
		}
		owner, ok := c.owners[id]
		if !ok {
			return ErrTokenDoesNotExist
		}
		if actor != owner && !c.operators[owner][actor] {
			return policy.ErrUnauthorized
		}
		if err := c.mirror(eventlog.Approval, map[string]any{
			"owner":    owner.String(),
			"approved": approved.String(),
			"id":       strconv.FormatUint(id, 10),
		}); err != nil {
			return err
		}
		if approved.Defined() {
			c.approvals[id] = approved
		} else {
			delete(c.approvals, id)
		}
		return nil
	})
}

// GetApproved returns the single approved address for token id, if any.
func (c *Collection) GetApproved(id uint64) (addr.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.owners[id]; !ok {
		return addr.Zero, ErrTokenDoesNotExist
	}
	return c.approvals[id], nil
}

// SetApprovalForAll grants or revokes operator over all of actor's tokens.
// The filter registry, when linked, is consulted before a grant.
func (c *Collection) SetApprovalForAll(actor, operator addr.Address, approved bool) error {
	return c.run(func() error {
		if !operator.Defined() || operator == actor {
			return ErrZeroAddress
		}
		if approved {
			if err := c.filter.Check(actor, operator); err != nil {
				return err
			}
		}
		if err := c.mirror(eventlog.ApprovalForAll, map[string]any{
			"owner":    actor.String(),
			"operator": operator.String(),
			"approved": approved,
		}); err != nil {
			return err
		}
		if approved {
			if c.operators[actor] == nil {
				c.operators[actor] = make(map[addr.Address]bool)
			}
			c.operators[actor][operator] = true
		} else {
			delete(c.operators[actor], operator)
		}
		return nil
	})
}

// IsApprovedForAll reports whether operator may act on all of owner's tokens.
func (c *Collection) IsApprovedForAll(owner, operator addr.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.operators[owner][operator]
}

// TransferFrom moves token id from its owner to to. The caller must be the
// owner, the token's approved address, or an approved operator; the filter
// registry, when linked, is consulted first. Any per-token approval is
// cleared by the transfer.
func (c *Collection) TransferFrom(actor, from, to addr.Address, id uint64) error {
	return c.run(func() error {
		return c.transferLocked(actor, from, to, id, nil)
	})
}

// SafeTransferFrom is TransferFrom with an opaque data argument carried in
// the emitted event. Destination acceptance hooks are a host concern and are
// not consulted here.
func (c *Collection) SafeTransferFrom(actor, from, to addr.Address, id uint64, data []byte) error {
	return c.run(func() error {
		return c.transferLocked(actor, from, to, id, data)
	})
}

func (c *Collection) transferLocked(actor, from, to addr.Address, id uint64, data []byte) error {
	if err := c.filter.Check(actor, actor); err != nil {
		return err
	}
	owner, ok := c.owners[id]
	if !ok {
		return ErrTokenDoesNotExist
	}
	if owner != from {
		return policy.ErrUnauthorized
	}
	if actor != owner && c.approvals[id] != actor && !c.operators[owner][actor] {
		return policy.ErrUnauthorized
	}
	if !to.Defined() {
		return ErrZeroAddress
	}
	payload := map[string]any{
		"from": from.String(),
		"to":   to.String(),
		"id":   strconv.FormatUint(id, 10),
	}
	if len(data) > 0 {
		payload["data"] = hex.EncodeToString(data)
	}
	if err := c.mirror(eventlog.Transfer, payload); err != nil {
		return err
	}
	c.owners[id] = to
	delete(c.approvals, id)
	return nil
}

// --- metadata ---

// SetTokenMetadata stores metadata in the content-addressed store and points
// token id at the new CID. With a resolved metadata-policy manager, that
// manager decides; with none, only the collection owner may update.
//
// The blob write precedes the event mirror, so an aborted call can leave the
// bytes in the store with no token pointing at them. The residue is inert:
// blobs are keyed by content and unreachable through the collection.
func (c *Collection) SetTokenMetadata(actor addr.Address, id uint64, metadata []byte) (cid.Cid, error) {
	var out cid.Cid
	err := c.run(func() error {
		if _, ok := c.owners[id]; !ok {
			return ErrTokenDoesNotExist
		}
		if m := c.tokenSlot.Resolve(id); m != nil {
			// ProbeToken at install time guarantees the assertion.
			if !m.(policy.TokenManager).CanUpdateMetadata(actor, id) {
				return policy.ErrUnauthorized
			}
		} else if actor != c.owner {
			return policy.ErrUnauthorized
		}
		mcid, err := c.metaStore.Put(metadata)
		if err != nil {
			return err
		}
		if err := c.mirror(eventlog.TokenMetadataUpdated, map[string]any{
			"id":  strconv.FormatUint(id, 10),
			"cid": mcid.String(),
		}); err != nil {
			return err
		}
		c.metadata[id] = mcid
		out = mcid
		return nil
	})
	return out, err
}

// TokenMetadata loads the current metadata bytes and CID for token id.
func (c *Collection) TokenMetadata(id uint64) ([]byte, cid.Cid, error) {
	c.mu.Lock()
	mcid, ok := c.metadata[id]
	if !ok {
		_, minted := c.owners[id]
		c.mu.Unlock()
		if !minted {
			return nil, cid.Undef, ErrTokenDoesNotExist
		}
		return nil, cid.Undef, ErrNoMetadata
	}
	c.mu.Unlock()
	b, err := c.metaStore.Get(mcid)
	if err != nil {
		return nil, cid.Undef, err
	}
	return b, mcid, nil
}

// --- ownership ---

// TransferOwnership hands the collection to newOwner and repoints the owner
// check of every delegation surface.
func (c *Collection) TransferOwnership(actor, newOwner addr.Address) error {
	return c.run(func() error {
		if actor != c.owner {
			return policy.ErrUnauthorized
		}
		if !newOwner.Defined() {
			return ErrZeroAddress
		}
		if err := c.mirror(eventlog.OwnershipTransferred, map[string]any{
			"from": c.owner.String(),
			"to":   newOwner.String(),
		}); err != nil {
			return err
		}
		c.owner = newOwner
		c.tokenSlot.SetOwner(newOwner)
		c.royalties.SetOwner(newOwner)
		return nil
	})
}
