// Package record defines the value model shared by the schema registry,
// the collection store, and the repository facade.
//
// A Record is a single persisted instance of a collection: an id plus a
// field map. Field values are constrained to strings, int64, bools,
// arrays, string-keyed objects, and Refs. Floats are forbidden - they
// break canonical serialization and nothing in the data model needs them.
//
// References between records are arena-style: a Ref names a collection
// and an id, and is resolved by lookup at evaluation time. Records never
// embed other records, so cyclic shapes (Club <-> ClubMaterial, threaded
// ClubPost replies) stay acyclic in memory.
//
// Canonical serialization follows RFC 8785 (sorted keys by UTF-16 code
// units, NFC-normalized strings, no HTML escaping). Stored payloads are
// byte-deterministic, which keeps golden files and replayed state stable.
package record
