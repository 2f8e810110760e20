package auth

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/hearthside/hangouts/internal/identity"
)

// SchemeEthPersonalSign is the only signing scheme the store accepts.
const SchemeEthPersonalSign = "eth-personal-sign"

// Envelope is the proof attached to a mutating call: the scheme tag and
// the hex signature over the store-issued nonce.
type Envelope struct {
	Scheme    string `json:"h"`
	Signature string `json:"sig"`
}

// SignedChallenge pairs a nonce with the envelope signed over it. This is
// what travels with every create/call/delete.
type SignedChallenge struct {
	Nonce    string
	Envelope Envelope
}

// SignChallenge signs the challenge nonce with the given signer and
// packages the envelope.
func SignChallenge(signer identity.Signer, ch Challenge) (SignedChallenge, error) {
	sig, err := signer.SignText([]byte(ch.Nonce))
	if err != nil {
		return SignedChallenge{}, fmt.Errorf("sign challenge: %w", err)
	}
	return SignedChallenge{
		Nonce: ch.Nonce,
		Envelope: Envelope{
			Scheme:    SchemeEthPersonalSign,
			Signature: "0x" + hex.EncodeToString(sig),
		},
	}, nil
}

// RecoverCaller verifies the envelope's scheme and recovers the address
// that signed the nonce. The result is the caller identity for
// authorization; nothing in the call payload can override it.
func (sc SignedChallenge) RecoverCaller() (string, error) {
	if sc.Envelope.Scheme != SchemeEthPersonalSign {
		return "", fmt.Errorf("unsupported signing scheme %q", sc.Envelope.Scheme)
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(sc.Envelope.Signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	return identity.RecoverAddress([]byte(sc.Nonce), sig)
}
