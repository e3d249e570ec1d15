package postgres

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet and fills in the assigned id, status and
// creation time. Address collisions map to ports.ErrDuplicateAddress.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (address, status, private_key_hash)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at`

	err := r.pool.QueryRow(ctx, query, w.Address, domain.WalletStatusActive, w.PrivateKeyHash).
		Scan(&w.ID, &w.Status, &w.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateAddress
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAddress fetches a wallet by address. Returns nil, nil when absent.
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT id, address, status, private_key_hash, created_at
		FROM wallets WHERE address = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, address).Scan(
		&w.ID, &w.Address, &w.Status, &w.PrivateKeyHash, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return w, nil
}

// List returns all wallets ordered by internal id, i.e. insertion order.
func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT id, address, status, private_key_hash, created_at
		FROM wallets ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.ID, &w.Address, &w.Status, &w.PrivateKeyHash, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wallets rows: %w", err)
	}
	return wallets, nil
}

// UpdateStatus sets the wallet status and returns the updated row,
// or nil, nil when the address is unknown.
func (r *WalletRepo) UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) (*domain.Wallet, error) {
	query := `UPDATE wallets SET status = $1 WHERE address = $2
		RETURNING id, address, status, private_key_hash, created_at`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, status, address).Scan(
		&w.ID, &w.Address, &w.Status, &w.PrivateKeyHash, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update wallet status: %w", err)
	}
	return w, nil
}
