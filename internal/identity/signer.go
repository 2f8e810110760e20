package identity

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrIdentityUnavailable is returned when no signer can be produced for
// the acting address (wallet locked, disconnected, or key absent).
// Mutating calls must fail fast on this before any network round-trip.
var ErrIdentityUnavailable = errors.New("identity unavailable: no signer for address")

// Signer is a capability bound to one address, able to produce an
// eth-personal-sign signature over an arbitrary message.
type Signer interface {
	// Address returns the EIP-55 checksummed address this signer is bound to.
	Address() string

	// SignText signs msg with the EIP-191 personal-message prefix and
	// returns the 65-byte [R || S || V] signature, V in {27, 28}.
	SignText(msg []byte) ([]byte, error)
}

// Wallet produces signers for addresses it holds keys for.
type Wallet interface {
	// Signer returns a signer for the given address, or an error wrapping
	// ErrIdentityUnavailable when none can be produced.
	Signer(address string) (Signer, error)
}

// keySigner signs with an in-memory private key.
type keySigner struct {
	address string
	key     *ecdsa.PrivateKey
}

func (s *keySigner) Address() string { return s.address }

func (s *keySigner) SignText(msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign text: %w", err)
	}
	// crypto.Sign yields V in {0, 1}; the personal-sign wire form uses {27, 28}.
	sig[64] += 27
	return sig, nil
}

// RecoverAddress recovers the address that produced an eth-personal-sign
// signature over msg. This is the only source of caller identity on the
// verification side.
func RecoverAddress(msg, sig []byte) (string, error) {
	if len(sig) != 65 {
		return "", fmt.Errorf("recover address: signature must be 65 bytes, got %d", len(sig))
	}
	adjusted := make([]byte, 65)
	copy(adjusted, sig)
	if adjusted[64] >= 27 {
		adjusted[64] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(msg), adjusted)
	if err != nil {
		return "", fmt.Errorf("recover address: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// NormalizeAddress converts any hex form of an address to its EIP-55
// checksummed form. Returns an error for strings that are not addresses.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("not a valid address: %q", address)
	}
	return common.HexToAddress(address).Hex(), nil
}

// SameAddress compares two addresses ignoring checksum casing.
func SameAddress(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return strings.EqualFold(a, b)
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}

// ParseKey parses a hex-encoded secp256k1 private key (with or without
// 0x prefix) and returns the key plus its derived address.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, string, error) {
	trimmed := strings.TrimPrefix(hexKey, "0x")
	if _, err := hex.DecodeString(trimmed); err != nil {
		return nil, "", fmt.Errorf("parse key: %w", err)
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, "", fmt.Errorf("parse key: %w", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
}
