// Package eventlog defines the event mirror: every state-changing collection
// operation is recorded once locally and once, address-prefixed, on an
// external append-only sink.
//
// The sink is an injected dependency, never a singleton, so tests can
// substitute a fake and assert exact payloads.
package eventlog

import "mintlock.io/mintlock/addr"

// Event names emitted by the collection domain.
const (
	DefaultTokenManagerChanged   = "DefaultTokenManagerChanged"
	GranularTokenManagersSet     = "GranularTokenManagersSet"
	GranularTokenManagersRemoved = "GranularTokenManagersRemoved"
	DefaultRoyaltySet            = "DefaultRoyaltySet"
	GranularRoyaltiesSet         = "GranularRoyaltiesSet"
	RoyaltyManagerChanged        = "RoyaltyManagerChanged"
	MinterRegistrationChanged    = "MinterRegistrationChanged"
	OwnershipTransferred         = "OwnershipTransferred"
	OperatorFilterChanged        = "OperatorFilterChanged"
	TokenMetadataUpdated         = "TokenMetadataUpdated"
	SupplyFrozen                 = "SupplyFrozen"
	Transfer                     = "Transfer"
	Approval                     = "Approval"
	ApprovalForAll               = "ApprovalForAll"
)

// Event is one emitted record. Payload values are limited to strings, bools,
// and []any of those, so every payload survives JSON and protobuf Struct
// round trips unchanged (token ids travel as decimal strings).
type Event struct {
	Collection addr.Address   `json:"collection"`
	Name       string         `json:"name"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Sink is the external observability mirror. Emit failures are fatal to the
// enclosing administrative call: the collection mirrors before committing.
type Sink interface {
	Emit(collection addr.Address, name string, payload map[string]any) error
}

// Discard is a Sink that accepts and drops everything.
type Discard struct{}

func (Discard) Emit(addr.Address, string, map[string]any) error { return nil }

// Log is a local append-only event log.
type Log struct {
	events []Event
}

// Append records an event.
func (l *Log) Append(ev Event) {
	l.events = append(l.events, ev)
}

// All returns a copy of the recorded events in emission order.
func (l *Log) All() []Event {
	return append([]Event(nil), l.events...)
}

// Len returns the number of recorded events.
func (l *Log) Len() int { return len(l.events) }
