// Package builtin provides ready-made policy managers for the common
// delegation postures: permanently locked, and owner-only.
//
// Both implement every domain capability so a single instance can serve the
// metadata-policy and royalty-policy slots.
package builtin

import (
	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/policy"
)

// Locked is an irrevocable manager: it vetoes its own swap and removal and
// denies every administrative mutation it governs. Installing it as default
// permanently freezes the domain for everyone, including the owner.
type Locked struct{}

var (
	_ policy.TokenManager   = Locked{}
	_ policy.RoyaltyManager = Locked{}
)

func (Locked) ValidityProbe() bool { return true }

func (Locked) ApproveSwap(addr.Address, policy.Manager) bool { return false }

func (Locked) ApproveRemove(addr.Address) bool { return false }

func (Locked) CanUpdateMetadata(addr.Address, uint64) bool { return false }

func (Locked) ApproveRoyaltySet(addr.Address) bool { return false }

func (Locked) Describe() string { return "locked" }

// OwnerOnly approves swaps, removals, and mutations only when the acting
// address matches its stored owner. The stored owner is fixed at construction
// and does not follow later collection ownership transfers.
type OwnerOnly struct {
	Owner addr.Address
}

var (
	_ policy.TokenManager   = OwnerOnly{}
	_ policy.RoyaltyManager = OwnerOnly{}
)

func (m OwnerOnly) ValidityProbe() bool { return m.Owner.Defined() }

func (m OwnerOnly) ApproveSwap(actor addr.Address, _ policy.Manager) bool {
	return actor == m.Owner
}

func (m OwnerOnly) ApproveRemove(actor addr.Address) bool { return actor == m.Owner }

func (m OwnerOnly) CanUpdateMetadata(actor addr.Address, _ uint64) bool {
	return actor == m.Owner
}

func (m OwnerOnly) ApproveRoyaltySet(actor addr.Address) bool { return actor == m.Owner }

func (m OwnerOnly) Describe() string { return "owneronly:" + m.Owner.String() }
