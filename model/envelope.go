package model

import "encoding/json"

// Envelope is one signed administrative request. The signature covers
// SigningBytes: the canonical JSON of every field except the signature
// itself, so any tampering with the op, target, params, nonce, or actor key
// invalidates it.
//
// Nonces are per-actor and strictly increasing; the server rejects replays
// with BAD_NONCE.
type Envelope struct {
	Op         string          `json:"op"`
	Collection string          `json:"collection,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
	Nonce      uint64          `json:"nonce"`
	ActorKey   string          `json:"actorKey"`
	Signature  string          `json:"signature"`
}

// signingView is Envelope without the signature. Field order is fixed, so
// encoding/json produces canonical bytes for signing and verification.
type signingView struct {
	Op         string          `json:"op"`
	Collection string          `json:"collection,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
	Nonce      uint64          `json:"nonce"`
	ActorKey   string          `json:"actorKey"`
}

// SigningBytes returns the canonical bytes the envelope signature is made
// over.
func (e *Envelope) SigningBytes() ([]byte, error) {
	return json.Marshal(signingView{
		Op:         e.Op,
		Collection: e.Collection,
		Params:     e.Params,
		Nonce:      e.Nonce,
		ActorKey:   e.ActorKey,
	})
}

// Query is one unsigned read request.
type Query struct {
	Op         string          `json:"op"`
	Collection string          `json:"collection,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// Response is the uniform RPC reply. Exactly one of Result and Error is set.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *CodedError     `json:"error,omitempty"`
}
