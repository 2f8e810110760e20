// Package auth implements the challenge-response protocol that proves a
// caller's identity for each mutating call.
//
// The store issues an opaque single-use nonce (the challenge). The client
// signs it with the acting identity's signer under the eth-personal-sign
// scheme and sends the envelope {h: "eth-personal-sign", sig: <hex>} with
// the call. The store consumes the nonce, recovers the signing address,
// and that recovered address - never a payload field - is the caller
// identity handed to authorization.
//
// Nonces are single-use: consuming one twice fails, which forces the
// signing step to be redone after any retry that might have reached the
// store. Expired nonces fail the same way.
package auth
