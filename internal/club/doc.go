// Package club is the typed client for the record store: profiles,
// clubs, memberships, reading material, posts, and milestone RSVPs.
//
// A Client wraps a Connection with a snapshot cache and a per-identity
// write gate. A Session binds the client to one signing identity; every
// mutation requests a challenge, signs it, and sends the envelope with
// the call. Cache invalidation after each mutation mirrors the reads
// that mutation can stale.
package club
