package testutil

import (
	"fmt"
	"sync"
)

// SequenceNonceGenerator produces predictable nonces in sequence:
// nonce-000001, nonce-000002, and so on. Signed envelopes over these
// nonces are reproducible with a fixed key, which enables golden
// comparisons of the full challenge flow.
//
// Thread-safety: all methods are safe for concurrent use.
type SequenceNonceGenerator struct {
	mu sync.Mutex
	n  int
}

// NewSequenceNonceGenerator creates a generator starting at 1.
func NewSequenceNonceGenerator() *SequenceNonceGenerator {
	return &SequenceNonceGenerator{}
}

// Generate returns the next nonce in sequence.
// Implements auth.NonceGenerator.
func (g *SequenceNonceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("nonce-%06d", g.n)
}
