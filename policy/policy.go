// Package policy defines the capability contract every external manager
// implements, plus the shared error taxonomy for administrative mutations.
//
// A manager is consulted, never owned: the registry holds a reference and
// asks it for permission, and the manager is free to keep arbitrary internal
// state between calls. The asymmetric trust rule is central: once installed,
// the *current* manager (not the caller) decides whether it may be replaced
// or removed.
package policy

import "mintlock.io/mintlock/addr"

// Manager is the base capability every policy object implements.
//
// ValidityProbe is checked once, when a candidate is installed. It is never
// re-invoked on reads (trust-on-write).
type Manager interface {
	// ValidityProbe reports whether the object is a well-formed policy
	// object for this registry.
	ValidityProbe() bool

	// ApproveSwap reports whether the manager consents to being replaced
	// by candidate, on behalf of actor.
	ApproveSwap(actor addr.Address, candidate Manager) bool

	// ApproveRemove reports whether the manager consents to its own
	// removal, on behalf of actor.
	ApproveRemove(actor addr.Address) bool
}

// TokenManager is the metadata-policy domain capability.
type TokenManager interface {
	Manager

	// CanUpdateMetadata reports whether actor may mutate the metadata of
	// token id.
	CanUpdateMetadata(actor addr.Address, id uint64) bool
}

// RoyaltyManager is the royalty-policy domain capability.
type RoyaltyManager interface {
	Manager

	// ApproveRoyaltySet reports whether actor may mutate royalty records.
	ApproveRoyaltySet(actor addr.Address) bool
}

// Probe validates a candidate manager for installation. A nil candidate or a
// failing probe is ErrInvalidManager.
func Probe(m Manager) error {
	if m == nil || !m.ValidityProbe() {
		return ErrInvalidManager
	}
	return nil
}

// ProbeToken validates a candidate for the metadata-policy domain.
func ProbeToken(m Manager) error {
	if err := Probe(m); err != nil {
		return err
	}
	if _, ok := m.(TokenManager); !ok {
		return ErrInvalidManager
	}
	return nil
}

// ProbeRoyalty validates a candidate for the royalty-policy domain.
func ProbeRoyalty(m Manager) error {
	if err := Probe(m); err != nil {
		return err
	}
	if _, ok := m.(RoyaltyManager); !ok {
		return ErrInvalidManager
	}
	return nil
}

// Describer is an optional identity hook. Managers that implement it get a
// stable human-readable name in emitted events.
type Describer interface {
	Describe() string
}

// Describe returns the manager's self-description, a type name fallback, or
// "unset" for nil.
func Describe(m Manager) string {
	if m == nil {
		return "unset"
	}
	if d, ok := m.(Describer); ok {
		return d.Describe()
	}
	return "set"
}
