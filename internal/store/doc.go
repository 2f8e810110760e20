// Package store persists collection records in SQLite and enforces the
// registry's authorization rules on every mutation.
//
// Every create, call, and delete carries a signed challenge. The store
// consumes the nonce, recovers the caller address from the signature,
// validates arguments against the declared signature, evaluates the
// operation's rule against pre-mutation state, and only then persists.
// Reads are public except for collections that declare a read rule.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: index entries cascade with their records
//
// Record documents are stored as canonical JSON (RFC 8785), so the
// stored text is byte-stable across rewrites of an unchanged record.
package store
