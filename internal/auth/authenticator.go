package auth

import (
	"fmt"

	"github.com/hearthside/hangouts/internal/identity"
)

// SignerSlot is the connection-level signer attachment. The slot is
// shared, mutable, single-writer state: a later attach for a different
// identity overwrites an earlier one, so callers must re-attach
// immediately before every mutating call and serialize calls that share
// the slot.
type SignerSlot interface {
	SetSigner(identity.Signer)
}

// Authenticator obtains signers from the wallet and installs them on a
// connection's signer slot ahead of each mutating call.
type Authenticator struct {
	wallet identity.Wallet
}

// NewAuthenticator wraps a wallet.
func NewAuthenticator(wallet identity.Wallet) *Authenticator {
	return &Authenticator{wallet: wallet}
}

// Attach obtains a signer for address and installs it on the slot.
// Fails fast with identity.ErrIdentityUnavailable (wrapped) before any
// network round-trip when the wallet cannot produce a signer.
func (a *Authenticator) Attach(slot SignerSlot, address string) (identity.Signer, error) {
	signer, err := a.wallet.Signer(address)
	if err != nil {
		return nil, fmt.Errorf("attach signer: %w", err)
	}
	slot.SetSigner(signer)
	return signer, nil
}
