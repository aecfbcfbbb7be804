// Package royalty implements the royalty table: a default record plus sparse
// per-token records, gated by an owner check, a hard basis-point bound, and
// an optional royalty-policy manager resolved through the shared delegation
// slot.
package royalty

import (
	"math/bits"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/delegation"
	"mintlock.io/mintlock/policy"
)

// MaxBPS is the upper bound for royalty basis points (100%).
const MaxBPS = 10000

// Record routes BPS/10000 of a sale price to Recipient. The zero Record is
// the "no royalty" answer.
type Record struct {
	Recipient addr.Address
	BPS       uint32
}

// Change describes a validated royalty-record mutation about to commit.
// Default mutations carry the single record in Records; granular mutations
// carry parallel IDs and Records.
type Change struct {
	Default bool
	IDs     []uint64
	Records []Record
}

// Observer mirrors delegation.Observer for royalty records: consulted after
// validation, before commit; an error aborts with no state change.
type Observer func(Change) error

// Table owns the royalty records and the royalty-policy manager slot for one
// collection. Callers serialize access.
type Table struct {
	owner    addr.Address
	slot     *delegation.Slot
	observe  Observer
	def      Record
	granular map[uint64]Record
}

// NewTable creates an empty table. slotObserve and observe may be nil.
func NewTable(owner addr.Address, slotObserve delegation.Observer, observe Observer) *Table {
	return &Table{
		owner:    owner,
		slot:     delegation.NewSlot(owner, policy.ProbeRoyalty, slotObserve),
		observe:  observe,
		granular: make(map[uint64]Record),
	}
}

// Managers exposes the royalty-policy manager slot. Swap and removal follow
// the same rules as the metadata-policy domain.
func (t *Table) Managers() *delegation.Slot { return t.slot }

// SetOwner follows a collection ownership transfer.
func (t *Table) SetOwner(owner addr.Address) {
	t.owner = owner
	t.slot.SetOwner(owner)
}

// Default returns the default royalty record.
func (t *Table) Default() Record { return t.def }

// Granular returns the granular record for id, if present.
func (t *Table) Granular(id uint64) (Record, bool) {
	r, ok := t.granular[id]
	return r, ok
}

// SetDefault commits the default record. The bps bound is checked before
// anything else: it holds regardless of caller identity or delegation state.
func (t *Table) SetDefault(actor addr.Address, rec Record) error {
	if rec.BPS > MaxBPS {
		return policy.ErrRoyaltyBPSInvalid
	}
	if actor != t.owner {
		return policy.ErrUnauthorized
	}
	if err := t.approveSet(actor, t.slot.Default()); err != nil {
		return err
	}
	if err := t.notify(Change{Default: true, Records: []Record{rec}}); err != nil {
		return err
	}
	t.def = rec
	return nil
}

// SetGranular commits per-token records atomically. The first record failing
// the bps bound invalidates the whole batch, before ownership or manager
// consultation.
func (t *Table) SetGranular(actor addr.Address, ids []uint64, recs []Record) error {
	if len(ids) != len(recs) {
		return policy.ErrMismatchedLengths
	}
	for _, rec := range recs {
		if rec.BPS > MaxBPS {
			return policy.ErrRoyaltyBPSInvalid
		}
	}
	if actor != t.owner {
		return policy.ErrUnauthorized
	}
	for _, id := range ids {
		if err := t.approveSet(actor, t.slot.Resolve(id)); err != nil {
			return err
		}
	}
	if err := t.notify(Change{IDs: ids, Records: recs}); err != nil {
		return err
	}
	for i, id := range ids {
		t.granular[id] = recs[i]
	}
	return nil
}

// RoyaltyOf resolves the record for id (granular over default, absent means
// the zero record) and computes floor(salePrice * bps / 10000).
func (t *Table) RoyaltyOf(id uint64, salePrice uint64) (addr.Address, uint64) {
	rec, ok := t.granular[id]
	if !ok {
		rec = t.def
	}
	if rec.BPS == 0 {
		return rec.Recipient, 0
	}
	// Full-width multiply: salePrice*bps can exceed 64 bits. hi is always
	// below the divisor because bps <= 10000.
	hi, lo := bits.Mul64(salePrice, uint64(rec.BPS))
	amount, _ := bits.Div64(hi, lo, MaxBPS)
	return rec.Recipient, amount
}

func (t *Table) approveSet(actor addr.Address, m policy.Manager) error {
	if m == nil {
		return nil
	}
	// The slot's domain check guarantees the assertion.
	if !m.(policy.RoyaltyManager).ApproveRoyaltySet(actor) {
		return policy.ErrRoyaltySetBlocked
	}
	return nil
}

func (t *Table) notify(ch Change) error {
	if t.observe == nil {
		return nil
	}
	return t.observe(ch)
}
