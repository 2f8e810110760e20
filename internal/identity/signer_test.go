package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A well-known test key; never used outside tests.
const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestSignText_RecoverRoundTrip(t *testing.T) {
	key, address, err := ParseKey(testKey)
	require.NoError(t, err)
	require.NotNil(t, key)

	wallet := NewMemoryWallet()
	imported, err := wallet.Import(testKey)
	require.NoError(t, err)
	assert.Equal(t, address, imported)

	signer, err := wallet.Signer(address)
	require.NoError(t, err)

	msg := []byte("challenge-nonce-0001")
	sig, err := signer.SignText(msg)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	recovered, err := RecoverAddress(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, address, recovered)
}

func TestRecoverAddress_DifferentMessageYieldsDifferentAddress(t *testing.T) {
	_, address, err := ParseKey(testKey)
	require.NoError(t, err)

	wallet := NewMemoryWallet()
	_, err = wallet.Import(testKey)
	require.NoError(t, err)
	signer, err := wallet.Signer(address)
	require.NoError(t, err)

	sig, err := signer.SignText([]byte("original message"))
	require.NoError(t, err)

	// Recovery over a different message succeeds but yields some other
	// address; it must never equal the signer.
	recovered, err := RecoverAddress([]byte("tampered message"), sig)
	if err == nil {
		assert.NotEqual(t, address, recovered)
	}
}

func TestRecoverAddress_RejectsShortSignature(t *testing.T) {
	_, err := RecoverAddress([]byte("msg"), []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	checksummed, err := NormalizeAddress("0xab5801a7d398351b8be11c439e05c5b3259aec9b")
	require.NoError(t, err)
	assert.Equal(t, "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", checksummed)

	_, err = NormalizeAddress("not-an-address")
	assert.Error(t, err)
}

func TestSameAddress_IgnoresChecksumCasing(t *testing.T) {
	assert.True(t, SameAddress(
		"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		"0xab5801a7d398351b8be11c439e05c5b3259aec9b",
	))
	assert.False(t, SameAddress(
		"0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B",
		"0x0000000000000000000000000000000000000001",
	))
}

func TestParseKey_RejectsGarbage(t *testing.T) {
	_, _, err := ParseKey("zz")
	assert.Error(t, err)
}
