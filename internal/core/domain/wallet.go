package domain

import "time"

// WalletStatus represents the lifecycle state of a wallet.
// The only allowed transition is ACTIVE -> BLOCKED, one-way.
type WalletStatus string

const (
	WalletStatusActive  WalletStatus = "ACTIVE"
	WalletStatusBlocked WalletStatus = "BLOCKED"
)

// Wallet is a custodial account addressed by a random public address.
// The private key is never stored; only its digest is.
type Wallet struct {
	ID             int64        `json:"-"`
	Address        string       `json:"address"`
	Status         WalletStatus `json:"status"`
	PrivateKeyHash string       `json:"-"` // SHA-256 hex digest, never exposed
	CreatedAt      time.Time    `json:"created_at"`
}

// IsActive returns true if the wallet can act as a transaction source
// or transfer destination.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// CreatedWallet carries the one-time plaintext private key alongside the
// wallet. Returned exactly once, at creation.
type CreatedWallet struct {
	Wallet
	PrivateKey string `json:"private_key"`
}

// Keypair is a freshly generated address/private-key pair. Address and key
// are independently random; this is a custodial simplification, not real
// asymmetric cryptography.
type Keypair struct {
	Address        string
	PrivateKey     string
	PrivateKeyHash string
}
