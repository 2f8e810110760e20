package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthside/hangouts/internal/identity"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testSigner(t *testing.T) identity.Signer {
	t.Helper()
	wallet := identity.NewMemoryWallet()
	addr, err := wallet.Import(testKey)
	require.NoError(t, err)
	signer, err := wallet.Signer(addr)
	require.NoError(t, err)
	return signer
}

func TestSignChallenge_RecoverCallerRoundTrip(t *testing.T) {
	signer := testSigner(t)
	ch := Challenge{Nonce: "nonce-000001", ExpiresAt: time.Now().Add(time.Minute)}

	signed, err := SignChallenge(signer, ch)
	require.NoError(t, err)
	assert.Equal(t, ch.Nonce, signed.Nonce)
	assert.Equal(t, SchemeEthPersonalSign, signed.Envelope.Scheme)
	assert.Regexp(t, `^0x[0-9a-f]{130}$`, signed.Envelope.Signature)

	caller, err := signed.RecoverCaller()
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), caller)
}

func TestRecoverCaller_RejectsUnknownScheme(t *testing.T) {
	signer := testSigner(t)
	signed, err := SignChallenge(signer, Challenge{Nonce: "n"})
	require.NoError(t, err)

	signed.Envelope.Scheme = "ed25519"
	_, err = signed.RecoverCaller()
	assert.ErrorContains(t, err, "unsupported signing scheme")
}

func TestRecoverCaller_RejectsMalformedSignature(t *testing.T) {
	signed := SignedChallenge{
		Nonce:    "n",
		Envelope: Envelope{Scheme: SchemeEthPersonalSign, Signature: "0xzz"},
	}
	_, err := signed.RecoverCaller()
	assert.Error(t, err)
}

func TestRecoverCaller_TamperedNonceChangesCaller(t *testing.T) {
	signer := testSigner(t)
	signed, err := SignChallenge(signer, Challenge{Nonce: "issued-nonce"})
	require.NoError(t, err)

	signed.Nonce = "other-nonce"
	caller, err := signed.RecoverCaller()
	if err == nil {
		assert.NotEqual(t, signer.Address(), caller)
	}
}

func TestEnvelope_WireFieldNames(t *testing.T) {
	data, err := json.Marshal(Envelope{Scheme: SchemeEthPersonalSign, Signature: "0xabc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"h":"eth-personal-sign","sig":"0xabc"}`, string(data))
}
