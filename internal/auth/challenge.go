package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultChallengeTTL bounds how long a signed envelope stays usable.
// A transport retry may reuse the same envelope within this window; after
// expiry the client must request a fresh challenge and re-sign.
const DefaultChallengeTTL = 2 * time.Minute

// ErrChallengeUnknown is returned for a nonce that was never issued or
// was already consumed.
var ErrChallengeUnknown = errors.New("challenge unknown or already used")

// ErrChallengeExpired is returned for a nonce past its expiry.
var ErrChallengeExpired = errors.New("challenge expired")

// Challenge is a store-issued value that must be signed to authenticate
// a mutating call.
type Challenge struct {
	Nonce     string
	ExpiresAt time.Time
}

// NonceGenerator produces challenge nonces.
// Implemented by UUIDv7Generator (production) and fixed generators (tests).
type NonceGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 nonces.
//
// The embedded timestamp makes outstanding challenges sortable by issue
// time, which helps when inspecting a stuck client.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Issuer hands out single-use challenges and checks them on the way back.
//
// Thread-safety: all methods are safe for concurrent use.
type Issuer struct {
	mu          sync.Mutex
	outstanding map[string]time.Time // nonce -> expiry
	ttl         time.Duration
	gen         NonceGenerator
	now         func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithTTL overrides the challenge lifetime.
func WithTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) { i.ttl = ttl }
}

// WithNonceGenerator overrides the nonce source, for deterministic tests.
func WithNonceGenerator(gen NonceGenerator) IssuerOption {
	return func(i *Issuer) { i.gen = gen }
}

// WithClock overrides the time source, for expiry tests.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates a challenge issuer with UUIDv7 nonces and the
// default TTL.
func NewIssuer(opts ...IssuerOption) *Issuer {
	i := &Issuer{
		outstanding: make(map[string]time.Time),
		ttl:         DefaultChallengeTTL,
		gen:         UUIDv7Generator{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue creates a new single-use challenge.
func (i *Issuer) Issue() Challenge {
	i.mu.Lock()
	defer i.mu.Unlock()

	nonce := i.gen.Generate()
	expiry := i.now().Add(i.ttl)
	i.outstanding[nonce] = expiry

	// Drop expired leftovers while we hold the lock. The outstanding set
	// only grows when clients request challenges and never send them.
	now := i.now()
	for n, exp := range i.outstanding {
		if now.After(exp) {
			delete(i.outstanding, n)
		}
	}

	return Challenge{Nonce: nonce, ExpiresAt: expiry}
}

// Consume validates and retires a nonce. A nonce can be consumed exactly
// once; unknown, reused, and expired nonces all fail.
func (i *Issuer) Consume(nonce string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	expiry, ok := i.outstanding[nonce]
	if !ok {
		return fmt.Errorf("%w: %s", ErrChallengeUnknown, nonce)
	}
	delete(i.outstanding, nonce)
	if i.now().After(expiry) {
		return fmt.Errorf("%w: %s", ErrChallengeExpired, nonce)
	}
	return nil
}
