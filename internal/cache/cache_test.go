package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_JoinsWithoutSlashCollisions(t *testing.T) {
	// Composite record ids contain "/", so two different part lists that
	// would collide under a slash separator must stay distinct.
	assert.NotEqual(t, Key("club", "a/b"), Key("club", "a", "b"))
	assert.Equal(t, Key("club", "c1"), Key("club", "c1"))
}

func TestGetOrFetch_CachesFirstResult(t *testing.T) {
	c := New()
	var calls atomic.Int32

	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "snapshot", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrFetch(context.Background(), Key("club", "c1"), fetch)
		require.NoError(t, err)
		assert.Equal(t, "snapshot", v)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_ErrorsAreNotCached(t *testing.T) {
	c := New()
	var calls atomic.Int32
	boom := errors.New("fetch failed")

	fetch := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return "recovered", nil
	}

	_, err := c.GetOrFetch(context.Background(), "k", fetch)
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestGetOrFetch_DeduplicatesConcurrentFetches(t *testing.T) {
	c := New()
	var calls atomic.Int32
	started := make(chan struct{})
	proceed := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(started)
		<-proceed
		return "shared", nil
	}
	lateFetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "late", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrFetch(context.Background(), "k", fetch)
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = c.GetOrFetch(context.Background(), "k", lateFetch)
	}()

	time.Sleep(10 * time.Millisecond)
	close(proceed)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "shared", results[0])
	assert.Equal(t, "shared", results[1])
}

func TestGetOrFetch_CallerContextStopsWaitingWithoutCancellingFetch(t *testing.T) {
	c := New()
	proceed := make(chan struct{})
	fetched := make(chan struct{})

	fetch := func(ctx context.Context) (any, error) {
		<-proceed
		// The shared fetch keeps its own lifetime even though the waiter
		// below already gave up.
		require.NoError(t, ctx.Err())
		close(fetched)
		return "eventual", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrFetch(ctx, "k", fetch)
		done <- err
	}()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(proceed)
	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("shared fetch never completed")
	}
}

func TestInvalidate_DropsSnapshotAndSignals(t *testing.T) {
	c := New()
	c.Put("k", "v")
	sub := c.Subscribe("k")

	c.Invalidate("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
	select {
	case <-sub:
	default:
		t.Fatal("subscriber not signalled")
	}
}

func TestInvalidate_Coalesces(t *testing.T) {
	c := New()
	sub := c.Subscribe("k")

	c.Invalidate("k")
	c.Invalidate("k")
	c.Invalidate("k")

	<-sub
	select {
	case <-sub:
		t.Fatal("signals did not coalesce")
	default:
	}
}

func TestInvalidatePrefix_MatchesFamilyNotSiblings(t *testing.T) {
	c := New()
	c.Put(Key("clubs"), "all")
	c.Put(Key("clubs", "genre", "mystery"), "filtered")
	c.Put(Key("clubsOther"), "sibling")
	sub := c.Subscribe(Key("clubs", "genre", "mystery"))

	c.InvalidatePrefix("clubs")

	_, ok := c.Get(Key("clubs"))
	assert.False(t, ok)
	_, ok = c.Get(Key("clubs", "genre", "mystery"))
	assert.False(t, ok)
	_, ok = c.Get(Key("clubsOther"))
	assert.True(t, ok, "prefix must not match a different leading part")

	select {
	case <-sub:
	default:
		t.Fatal("family subscriber not signalled")
	}
}
