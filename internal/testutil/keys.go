package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hearthside/hangouts/internal/identity"
)

// Well-known secp256k1 private keys for tests. Addresses derived from
// these are stable, so fixtures and golden files can reference them.
const (
	KeyAlice = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	KeyBob   = "6370fd033278c143179d81c5526140625662b8daa446c22ee2d73db3707e620c"
	KeyCarol = "646f1ce2fdad0e6deeeb5c7e8e5543bdde65e86029e2fd9fc169899c440a7913"
)

// Signer imports a well-known key into a fresh wallet and returns its
// signer. Fails the test on any wallet error.
func Signer(t *testing.T, hexKey string) identity.Signer {
	t.Helper()
	wallet := identity.NewMemoryWallet()
	address, err := wallet.Import(hexKey)
	require.NoError(t, err)
	signer, err := wallet.Signer(address)
	require.NoError(t, err)
	return signer
}

// Address returns the checksummed address for a well-known key.
func Address(t *testing.T, hexKey string) string {
	t.Helper()
	_, address, err := identity.ParseKey(hexKey)
	require.NoError(t, err)
	return address
}
