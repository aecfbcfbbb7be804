// Package opfilter integrates a collection with an external operator-filter
// registry. Absence is fail-open: with no registry linked, nothing is
// filtered. Once linked, transfer-affecting entry points consult the registry
// at call time.
package opfilter

import (
	"errors"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/policy"
)

// ErrNilRegistry rejects linking a nil registry reference.
var ErrNilRegistry = errors.New("opfilter: nil registry")

// Registry is the external filtering registry contract. Subscriptions are
// references, not copies: the registry resolves them when queried.
type Registry interface {
	Register(collection addr.Address) error
	Unregister(collection addr.Address) error
	Subscribe(collection, target addr.Address) error
	IsOperatorFiltered(collection, caller, operator addr.Address) bool
}

// Link is the per-collection filter reference: Unlinked (nil registry) or
// Linked. Owner gating happens in the Collection; Link only runs the state
// machine. Callers serialize access.
type Link struct {
	collection   addr.Address
	registry     Registry
	registryAddr addr.Address
}

// NewLink creates an unlinked filter reference for collection.
func NewLink(collection addr.Address) *Link {
	return &Link{collection: collection}
}

// Linked reports whether a registry is currently linked.
func (l *Link) Linked() bool { return l.registry != nil }

// RegistryAddr returns the linked registry's address, or the zero address
// when unlinked.
func (l *Link) RegistryAddr() addr.Address {
	if l.registry == nil {
		return addr.Zero
	}
	return l.registryAddr
}

// LinkStage is a prepared but uncommitted link: the external registration
// has happened, the local reference has not changed yet. Commit or Abort
// must follow before the next Link operation.
type LinkStage struct {
	link         *Link
	registry     Registry
	registryAddr addr.Address
}

// PrepareLink registers the collection with registry and, when subscribeTo
// is defined, subscribes to that registrant's filtered set, without touching
// the local reference. A Subscribe failure unwinds the registration.
// Re-linking while already linked simply overwrites the reference: this
// domain has no "current policy decides" rule, only owner authority.
func (l *Link) PrepareLink(registry Registry, registryAddr, subscribeTo addr.Address) (*LinkStage, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if err := registry.Register(l.collection); err != nil {
		return nil, err
	}
	if subscribeTo.Defined() {
		if err := registry.Subscribe(l.collection, subscribeTo); err != nil {
			_ = registry.Unregister(l.collection)
			return nil, err
		}
	}
	return &LinkStage{link: l, registry: registry, registryAddr: registryAddr}, nil
}

// Commit points the local reference at the prepared registry.
func (s *LinkStage) Commit() {
	s.link.registry = s.registry
	s.link.registryAddr = s.registryAddr
}

// Abort unwinds the external registration, best effort.
func (s *LinkStage) Abort() {
	_ = s.registry.Unregister(s.link.collection)
}

// LinkAndSubscribe is PrepareLink followed by an immediate Commit.
func (l *Link) LinkAndSubscribe(registry Registry, registryAddr, subscribeTo addr.Address) error {
	stage, err := l.PrepareLink(registry, registryAddr, subscribeTo)
	if err != nil {
		return err
	}
	stage.Commit()
	return nil
}

// UnlinkStage is a prepared but uncommitted unlink: the collection is
// unregistered externally, the local reference still stands.
type UnlinkStage struct {
	link     *Link
	registry Registry
}

// PrepareUnlink unregisters from the external registry without clearing the
// local reference. Returns nil when already unlinked: there is nothing to
// stage and nothing to commit.
func (l *Link) PrepareUnlink() (*UnlinkStage, error) {
	if l.registry == nil {
		return nil, nil
	}
	if err := l.registry.Unregister(l.collection); err != nil {
		return nil, err
	}
	return &UnlinkStage{link: l, registry: l.registry}, nil
}

// Commit clears the local reference.
func (s *UnlinkStage) Commit() {
	s.link.registry = nil
	s.link.registryAddr = addr.Zero
}

// Abort re-registers with the external registry, best effort.
func (s *UnlinkStage) Abort() {
	_ = s.registry.Register(s.link.collection)
}

// Unlink is PrepareUnlink followed by an immediate Commit. Calling while
// already unlinked is a no-op success.
func (l *Link) Unlink() error {
	stage, err := l.PrepareUnlink()
	if err != nil {
		return err
	}
	if stage != nil {
		stage.Commit()
	}
	return nil
}

// Check consults the registry for a transfer-affecting operation. Unlinked
// skips the check entirely; a filtered answer is ErrAddressFiltered.
func (l *Link) Check(caller, operator addr.Address) error {
	if l.registry == nil {
		return nil
	}
	if l.registry.IsOperatorFiltered(l.collection, caller, operator) {
		return policy.ErrAddressFiltered
	}
	return nil
}
