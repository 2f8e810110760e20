// Package cache provides the client-side consistency layer: a keyed
// snapshot cache with request deduplication and invalidation fan-out,
// and a per-identity FIFO gate that keeps one identity's mutations
// ordered without serializing unrelated identities.
package cache
