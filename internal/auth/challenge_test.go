package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedNonce struct{ n int }

func (f *fixedNonce) Generate() string {
	f.n++
	return map[int]string{1: "nonce-1", 2: "nonce-2", 3: "nonce-3"}[f.n]
}

func TestIssuer_ConsumeIsSingleUse(t *testing.T) {
	issuer := NewIssuer(WithNonceGenerator(&fixedNonce{}))

	ch := issuer.Issue()
	assert.Equal(t, "nonce-1", ch.Nonce)

	require.NoError(t, issuer.Consume(ch.Nonce))

	err := issuer.Consume(ch.Nonce)
	assert.ErrorIs(t, err, ErrChallengeUnknown)
}

func TestIssuer_ConsumeUnknownNonce(t *testing.T) {
	issuer := NewIssuer()
	assert.ErrorIs(t, issuer.Consume("never-issued"), ErrChallengeUnknown)
}

func TestIssuer_ConsumeExpiredNonce(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(
		WithNonceGenerator(&fixedNonce{}),
		WithTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	ch := issuer.Issue()
	now = now.Add(2 * time.Minute)

	err := issuer.Consume(ch.Nonce)
	assert.ErrorIs(t, err, ErrChallengeExpired)

	// Expired and retired: a second attempt is unknown, not expired.
	assert.ErrorIs(t, issuer.Consume(ch.Nonce), ErrChallengeUnknown)
}

func TestIssuer_IssueDropsExpiredLeftovers(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(
		WithNonceGenerator(&fixedNonce{}),
		WithTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	stale := issuer.Issue()
	now = now.Add(5 * time.Minute)
	fresh := issuer.Issue()

	assert.ErrorIs(t, issuer.Consume(stale.Nonce), ErrChallengeUnknown)
	assert.NoError(t, issuer.Consume(fresh.Nonce))
}

func TestIssuer_DistinctNoncesPerIssue(t *testing.T) {
	issuer := NewIssuer()
	a := issuer.Issue()
	b := issuer.Issue()
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NoError(t, issuer.Consume(a.Nonce))
	assert.NoError(t, issuer.Consume(b.Nonce))
}
