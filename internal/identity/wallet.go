package identity

import (
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// MemoryWallet holds secp256k1 keys in memory. It stands in for the
// external wallet service in tests and the CLI.
//
// Lock models the wallet being disconnected: a locked wallet refuses to
// produce signers, which surfaces as ErrIdentityUnavailable to callers.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryWallet struct {
	mu     sync.Mutex
	keys   map[string]*ecdsa.PrivateKey // keyed by checksummed address
	locked bool
}

// NewMemoryWallet creates an empty, unlocked wallet.
func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{keys: make(map[string]*ecdsa.PrivateKey)}
}

// Generate creates a new key and returns its address.
func (w *MemoryWallet) Generate() (string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys[address] = key
	return address, nil
}

// Import adds a hex-encoded private key and returns its address.
func (w *MemoryWallet) Import(hexKey string) (string, error) {
	key, address, err := ParseKey(hexKey)
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys[address] = key
	return address, nil
}

// Lock makes the wallet refuse to produce signers.
func (w *MemoryWallet) Lock() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locked = true
}

// Unlock re-enables signer production.
func (w *MemoryWallet) Unlock() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.locked = false
}

// Signer implements Wallet.
func (w *MemoryWallet) Signer(address string) (Signer, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.locked {
		return nil, fmt.Errorf("%w: wallet is locked", ErrIdentityUnavailable)
	}
	key, ok := w.keys[normalized]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIdentityUnavailable, normalized)
	}
	return &keySigner{address: normalized, key: key}, nil
}
