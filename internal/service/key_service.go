package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"
)

// keyService generates wallet keypairs and checks key possession.
// The private key is returned to the caller exactly once at creation;
// only its SHA-256 digest is persisted.
type keyService struct {
	addressBytes    int
	privateKeyBytes int
}

// NewKeyService builds a KeyManager producing hex addresses of
// addressBytes random bytes and hex private keys of privateKeyBytes
// random bytes.
func NewKeyService(addressBytes, privateKeyBytes int) ports.KeyManager {
	if addressBytes <= 0 {
		addressBytes = 20
	}
	if privateKeyBytes <= 0 {
		privateKeyBytes = 32
	}
	return &keyService{
		addressBytes:    addressBytes,
		privateKeyBytes: privateKeyBytes,
	}
}

func (s *keyService) Generate() (*domain.Keypair, error) {
	address, err := randomHex(s.addressBytes)
	if err != nil {
		return nil, fmt.Errorf("generating address: %w", err)
	}
	privateKey, err := randomHex(s.privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("generating private key: %w", err)
	}
	return &domain.Keypair{
		Address:        address,
		PrivateKey:     privateKey,
		PrivateKeyHash: HashKey(privateKey),
	}, nil
}

// Verify compares the digest of the presented key against the stored
// digest in constant time.
func (s *keyService) Verify(privateKey, storedHash string) bool {
	if privateKey == "" || storedHash == "" {
		return false
	}
	presented := HashKey(privateKey)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(storedHash)) == 1
}

// HashKey returns the hex-encoded SHA-256 digest of the private key.
func HashKey(privateKey string) string {
	sum := sha256.Sum256([]byte(privateKey))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
