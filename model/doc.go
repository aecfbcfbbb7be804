// Package model defines stable boundary types for the admin RPC surface:
// signed operation envelopes, per-operation parameter structs, and the coded
// error projection of the domain error taxonomy.
//
// These structs are the only types intended for direct JSON serialization by
// consumers; domain packages never depend on them.
package model
