package ports

import (
	"context"
	"errors"

	"custodial-wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ErrDuplicateAddress is returned by WalletRepository.Create when the
// generated address collides with an existing wallet.
var ErrDuplicateAddress = errors.New("wallet address already exists")

// ErrBalanceConstraint is returned by BalanceRepository.Debit when the
// conditional update touches no row, i.e. the debit would take the
// balance negative.
var ErrBalanceConstraint = errors.New("balance would go negative")

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	// Create inserts the wallet and fills in its assigned id, status and
	// creation time. An address collision surfaces as ErrDuplicateAddress
	// so the caller can regenerate the keypair.
	Create(ctx context.Context, w *domain.Wallet) error
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	// List returns all wallets in stable insertion order.
	List(ctx context.Context) ([]domain.Wallet, error)
	// UpdateStatus sets the wallet status and returns the updated row,
	// or nil if the address is unknown.
	UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) (*domain.Wallet, error)
}

// CurrencyRepository resolves currency codes against the reference table.
type CurrencyRepository interface {
	// GetByCode returns nil, nil when the code is unknown.
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

// BalanceRepository defines persistence operations for per-currency wallet
// balances. Methods accepting pgx.Tx run inside a transaction and rely on
// row-level locking for serialization.
type BalanceRepository interface {
	// GetAmount returns the current balance, zero when no row exists.
	GetAmount(ctx context.Context, address string, currencyID int32) (decimal.Decimal, error)
	// ListByWallet returns one row per known currency, zero for currencies
	// the wallet never touched, ordered by currency id.
	ListByWallet(ctx context.Context, address string) ([]domain.Balance, error)
	// GetForUpdate locks the balance row (SELECT ... FOR UPDATE) and
	// returns the amount, zero when no row exists yet.
	GetForUpdate(ctx context.Context, tx pgx.Tx, address string, currencyID int32) (decimal.Decimal, error)
	// Credit upserts balance += amount.
	Credit(ctx context.Context, tx pgx.Tx, address string, currencyID int32, amount decimal.Decimal) error
	// Debit decrements the balance by amount iff the remaining balance
	// stays non-negative; otherwise no row is touched and an error is
	// returned. Conditional update, never check-then-act.
	Debit(ctx context.Context, tx pgx.Tx, address string, currencyID int32, amount decimal.Decimal) error
}

// LedgerRepository appends immutable movement records. All inserts run
// inside the caller's transaction and return the sequence-assigned id.
type LedgerRepository interface {
	InsertMovement(ctx context.Context, tx pgx.Tx, m *domain.Movement) (int64, error)
	InsertConversion(ctx context.Context, tx pgx.Tx, cv *domain.Conversion) (int64, error)
	InsertTransfer(ctx context.Context, tx pgx.Tx, tr *domain.Transfer) (int64, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
