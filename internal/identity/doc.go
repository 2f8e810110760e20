// Package identity adapts an external wallet into the two capabilities the
// data layer consumes: obtain a signer for an address, and sign an opaque
// challenge with that signer.
//
// Identities are secp256k1 public keys surfaced as EIP-55 checksummed
// addresses. The address string is the single canonical identity used
// everywhere: record ids, owner fields, revocation lists, and the caller
// identity recovered from a signed challenge.
//
// Signing uses the eth-personal-sign scheme: the message is prefixed per
// EIP-191 ("\x19Ethereum Signed Message:\n" + length), keccak256-hashed,
// and signed with the recoverable secp256k1 scheme. Verifiers recover the
// signing address from the signature alone - callers never assert their
// own identity.
package identity
