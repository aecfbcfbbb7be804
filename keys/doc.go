// Package keys manages the signing keys behind collection administration.
//
// Admin operations are authorized by signed envelopes; this package provides
// the actor-key string format ("alg:" + base64(pubkey)), deterministic
// role-derived subkeys, envelope signing and verification for both the
// Ed25519 and Dilithium3 algorithms, and a local filesystem keystore used by
// the CLI.
package keys
