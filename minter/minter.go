// Package minter implements the boolean membership set gating asset-creation
// entry points. Membership is explicit: registered until unregistered, no
// implicit expiry.
package minter

import (
	"sort"

	"mintlock.io/mintlock/addr"
	"mintlock.io/mintlock/policy"
)

// Set is the minter membership set for one collection. Owner gating happens
// in the Collection; callers serialize access.
type Set struct {
	members map[addr.Address]bool
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{members: make(map[addr.Address]bool)}
}

// Register adds a minter. Registering a present member is
// ErrMinterRegistrationInvalid.
func (s *Set) Register(minter addr.Address) error {
	if s.members[minter] {
		return policy.ErrMinterRegistrationInvalid
	}
	s.members[minter] = true
	return nil
}

// Unregister removes a minter. Unregistering an absent address is
// ErrMinterRegistrationInvalid.
func (s *Set) Unregister(minter addr.Address) error {
	if !s.members[minter] {
		return policy.ErrMinterRegistrationInvalid
	}
	delete(s.members, minter)
	return nil
}

// Contains reports membership.
func (s *Set) Contains(minter addr.Address) bool { return s.members[minter] }

// Members returns the membership sorted by address string for deterministic
// listings.
func (s *Set) Members() []addr.Address {
	out := make([]addr.Address, 0, len(s.members))
	for m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
