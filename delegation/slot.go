// Package delegation implements the shared delegation/override resolution
// engine: one default manager reference plus sparse per-token overrides, with
// set/swap/remove transitions gated by the *current* manager.
//
// The same state machine serves the metadata-policy and royalty-policy
// domains. A Slot performs no locking: callers (the Collection) serialize
// administrative calls.
package delegation

import (
	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/policy"
)

// Op identifies a slot transition for observers.
type Op int

const (
	OpSetDefault Op = iota + 1
	OpRemoveDefault
	OpSetGranular
	OpRemoveGranular
)

// Change describes a fully-validated transition about to be committed.
// For OpSetDefault, Managers holds the single candidate. For OpSetGranular,
// IDs and Managers are parallel. Removes carry IDs only.
type Change struct {
	Op       Op
	IDs      []uint64
	Managers []policy.Manager
}

// Observer is consulted after all validation and before any mutation. A
// non-nil error aborts the transition with no state change; this is how the
// Collection makes event mirroring atomic with the commit.
type Observer func(Change) error

// CandidateCheck validates a candidate for a specific policy domain (see
// policy.ProbeToken, policy.ProbeRoyalty).
type CandidateCheck func(policy.Manager) error

// Slot holds the default and granular manager references for one policy
// domain of one collection.
type Slot struct {
	owner    addr.Address
	check    CandidateCheck
	observe  Observer
	def      policy.Manager
	granular map[uint64]policy.Manager
}

// NewSlot creates an empty slot. check must not be nil; observe may be.
func NewSlot(owner addr.Address, check CandidateCheck, observe Observer) *Slot {
	if check == nil {
		check = func(m policy.Manager) error { return policy.Probe(m) }
	}
	return &Slot{
		owner:    owner,
		check:    check,
		observe:  observe,
		granular: make(map[uint64]policy.Manager),
	}
}

// SetOwner follows a collection ownership transfer.
func (s *Slot) SetOwner(owner addr.Address) { s.owner = owner }

// Resolve returns the manager governing token id: the granular entry when
// present, else the default. A nil result is a valid "no policy" answer.
func (s *Slot) Resolve(id uint64) policy.Manager {
	if m, ok := s.granular[id]; ok {
		return m
	}
	return s.def
}

// Default returns the default manager reference, possibly nil.
func (s *Slot) Default() policy.Manager { return s.def }

// Granular returns the granular entry for id, if present.
func (s *Slot) Granular(id uint64) (policy.Manager, bool) {
	m, ok := s.granular[id]
	return m, ok
}

// GranularCount returns the number of granular overrides.
func (s *Slot) GranularCount() int { return len(s.granular) }

// SetDefault installs or swaps the default manager.
//
// Unset slot: candidate must pass the domain probe. Set slot: the current
// manager must approve the swap, then the candidate must pass the probe.
func (s *Slot) SetDefault(actor addr.Address, candidate policy.Manager) error {
	if actor != s.owner {
		return policy.ErrUnauthorized
	}
	if err := s.approveReplace(actor, s.def, candidate); err != nil {
		return err
	}
	if err := s.notify(Change{Op: OpSetDefault, Managers: []policy.Manager{candidate}}); err != nil {
		return err
	}
	s.def = candidate
	return nil
}

// RemoveDefault clears the default manager with the current manager's consent.
func (s *Slot) RemoveDefault(actor addr.Address) error {
	if actor != s.owner {
		return policy.ErrUnauthorized
	}
	if s.def == nil {
		return policy.ErrManagerDoesNotExist
	}
	if !s.def.ApproveRemove(actor) {
		return policy.ErrManagerRemoveBlocked
	}
	if err := s.notify(Change{Op: OpRemoveDefault}); err != nil {
		return err
	}
	s.def = nil
	return nil
}

// SetGranular installs or swaps granular managers for ids, atomically.
// Every pair is validated against the pre-call state before anything is
// committed; the first failing pair aborts the whole batch.
func (s *Slot) SetGranular(actor addr.Address, ids []uint64, candidates []policy.Manager) error {
	if actor != s.owner {
		return policy.ErrUnauthorized
	}
	if len(ids) != len(candidates) {
		return policy.ErrMismatchedLengths
	}
	for i, id := range ids {
		if err := s.approveReplace(actor, s.granular[id], candidates[i]); err != nil {
			return err
		}
	}
	if err := s.notify(Change{Op: OpSetGranular, IDs: ids, Managers: candidates}); err != nil {
		return err
	}
	for i, id := range ids {
		s.granular[id] = candidates[i]
	}
	return nil
}

// RemoveGranular clears granular managers for ids, atomically, with each
// entry's own consent.
func (s *Slot) RemoveGranular(actor addr.Address, ids []uint64) error {
	if actor != s.owner {
		return policy.ErrUnauthorized
	}
	for _, id := range ids {
		m, ok := s.granular[id]
		if !ok {
			return policy.ErrManagerDoesNotExist
		}
		if !m.ApproveRemove(actor) {
			return policy.ErrManagerRemoveBlocked
		}
	}
	if err := s.notify(Change{Op: OpRemoveGranular, IDs: ids}); err != nil {
		return err
	}
	for _, id := range ids {
		delete(s.granular, id)
	}
	return nil
}

// approveReplace applies the unset/set branching shared by SetDefault and
// SetGranular: a set slot consults the current manager before the candidate
// is probed.
func (s *Slot) approveReplace(actor addr.Address, current, candidate policy.Manager) error {
	if current != nil && !current.ApproveSwap(actor, candidate) {
		return policy.ErrManagerSwapBlocked
	}
	return s.check(candidate)
}

func (s *Slot) notify(ch Change) error {
	if s.observe == nil {
		return nil
	}
	return s.observe(ch)
}
