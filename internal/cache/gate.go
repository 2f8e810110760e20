package cache

import (
	"context"
	"sync"
)

// Gate serializes work per identity while leaving different identities
// fully concurrent. Each identity has a chain of tickets; a caller waits
// for its predecessor's ticket to close, does its work, and closes its
// own ticket for the successor.
//
// Thread-safety: all methods are safe for concurrent use.
type Gate struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{tails: make(map[string]chan struct{})}
}

// Enter blocks until every earlier entrant for the same identity has
// released, then returns a release function. The release function must
// be called exactly once.
//
// If ctx expires while waiting, Enter returns the context error and the
// abandoned slot is skipped: successors still get unblocked in order.
func (g *Gate) Enter(ctx context.Context, identity string) (release func(), err error) {
	ticket := make(chan struct{})

	g.mu.Lock()
	prev := g.tails[identity]
	g.tails[identity] = ticket
	g.mu.Unlock()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			// The chain must not break: pass the baton once the
			// predecessor finishes, even though this caller gave up.
			go func() {
				<-prev
				g.finish(identity, ticket)
			}()
			return nil, ctx.Err()
		}
	}

	return func() { g.finish(identity, ticket) }, nil
}

// Do runs fn inside the identity's slot.
func (g *Gate) Do(ctx context.Context, identity string, fn func() error) error {
	release, err := g.Enter(ctx, identity)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (g *Gate) finish(identity string, ticket chan struct{}) {
	g.mu.Lock()
	if g.tails[identity] == ticket {
		delete(g.tails, identity)
	}
	g.mu.Unlock()
	close(ticket)
}
