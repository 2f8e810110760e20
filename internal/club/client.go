package club

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hearthside/hangouts/internal/auth"
	"github.com/hearthside/hangouts/internal/cache"
	"github.com/hearthside/hangouts/internal/identity"
)

// Client wraps a Connection with the consistency layer: a snapshot
// cache for reads and a per-identity gate that keeps one identity's
// mutations ordered.
//
// Thread-safety: all methods are safe for concurrent use.
type Client struct {
	conn   Connection
	cache  *cache.Cache
	gate   *cache.Gate
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	signer identity.Signer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithClock overrides the time source used for record timestamps and
// post ids, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client over the given connection.
func NewClient(conn Connection, opts ...Option) *Client {
	c := &Client{
		conn:   conn,
		cache:  cache.New(),
		gate:   cache.NewGate(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSigner attaches the active signing identity. Implements the slot
// the wallet authenticator plugs into.
func (c *Client) SetSigner(s identity.Signer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signer = s
}

// Cache exposes the snapshot cache, mainly for subscriptions.
func (c *Client) Cache() *cache.Cache {
	return c.cache
}

// Session returns a session bound to the attached signer. It fails when
// no signer is attached rather than deferring the failure to the first
// mutation.
func (c *Client) Session() (*Session, error) {
	c.mu.Lock()
	signer := c.signer
	c.mu.Unlock()
	if signer == nil {
		return nil, fmt.Errorf("session: %w", identity.ErrIdentityUnavailable)
	}
	return c.SessionFor(signer), nil
}

// SessionFor returns a session bound to an explicit signer.
func (c *Client) SessionFor(signer identity.Signer) *Session {
	return &Session{client: c, signer: signer, address: signer.Address()}
}

// Session is a client bound to one signing identity. Every mutation
// obtains a fresh challenge, signs it, and sends the envelope with the
// call; the recovered signature is the only identity the store trusts.
type Session struct {
	client  *Client
	signer  identity.Signer
	address string
}

// Address returns the session's identity address.
func (s *Session) Address() string {
	return s.address
}

// Client returns the underlying client, for reads.
func (s *Session) Client() *Client {
	return s.client
}

// SignChallenge obtains and signs a fresh challenge, for one-off signed
// reads outside the typed operations.
func (s *Session) SignChallenge(ctx context.Context) (auth.SignedChallenge, error) {
	return s.sign(ctx, "signed read")
}

// sign requests a challenge and signs it.
func (s *Session) sign(ctx context.Context, op string) (auth.SignedChallenge, error) {
	ch, err := s.client.conn.IssueChallenge(ctx)
	if err != nil {
		return auth.SignedChallenge{}, classifyTransport(op, err)
	}
	signed, err := auth.SignChallenge(s.signer, ch)
	if err != nil {
		return auth.SignedChallenge{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// mutate runs one signed mutation inside the identity's gate slot, then
// runs the invalidation for the reads that mutation can stale.
func (s *Session) mutate(ctx context.Context, op string, fn func(signed auth.SignedChallenge) error, invalidate func(c *cache.Cache)) error {
	return s.client.gate.Do(ctx, s.address, func() error {
		signed, err := s.sign(ctx, op)
		if err != nil {
			return err
		}
		if err := classifyTransport(op, fn(signed)); err != nil {
			return err
		}
		if invalidate != nil {
			invalidate(s.client.cache)
		}
		s.client.logger.Debug("mutation applied", "op", op, "identity", s.address)
		return nil
	})
}

// fetchTyped reads through the cache with a typed fetch.
func fetchTyped[T any](ctx context.Context, c *Client, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.cache.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
