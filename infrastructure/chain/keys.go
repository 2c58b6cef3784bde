package chain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"mangaverse/domain/interfaces"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// KeySealer generates custodial keypairs and seals their secret keys with
// NaCl secretbox before they reach the database
type KeySealer struct {
	key [32]byte
}

// NewKeySealer creates a sealer from a 32 byte key
func NewKeySealer(key []byte) (*KeySealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("seal key must be 32 bytes, got %d", len(key))
	}
	sealer := &KeySealer{}
	copy(sealer.key[:], key)
	return sealer, nil
}

var _ interfaces.CustodialKeyGenerator = (*KeySealer)(nil)

// NewCustodialKey returns a fresh base58 public key and its sealed secret.
// The sealed form is nonce followed by the secretbox output.
func (s *KeySealer) NewCustodialKey() (string, []byte, error) {
	account := solana.NewWallet()
	sealed, err := s.Seal(account.PrivateKey)
	if err != nil {
		return "", nil, err
	}
	return account.PublicKey().String(), sealed, nil
}

// Seal encrypts a secret key
func (s *KeySealer) Seal(secret []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to read nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], secret, &nonce, &s.key), nil
}

// Open decrypts a sealed secret key
func (s *KeySealer) Open(sealed []byte) (solana.PrivateKey, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, errors.New("sealed secret is too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	secret, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, errors.New("sealed secret failed authentication")
	}
	return solana.PrivateKey(secret), nil
}
