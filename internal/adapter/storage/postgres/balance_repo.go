package postgres

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository. Every mutation of a
// (wallet, currency) row happens inside the caller's transaction; the
// row lock taken by GetForUpdate serializes concurrent operations on
// the same key.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// GetAmount returns the balance for a (wallet, currency) pair, zero when
// the pair was never credited.
func (r *BalanceRepo) GetAmount(ctx context.Context, address string, currencyID int32) (decimal.Decimal, error) {
	query := `SELECT amount FROM balances WHERE wallet_address = $1 AND currency_id = $2`

	var amount decimal.Decimal
	err := r.pool.QueryRow(ctx, query, address, currencyID).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return amount, nil
}

// ListByWallet returns one row per known currency, zero for currencies
// the wallet never touched, ordered by currency id.
func (r *BalanceRepo) ListByWallet(ctx context.Context, address string) ([]domain.Balance, error) {
	query := `SELECT c.code, COALESCE(b.amount, 0) AS amount
		FROM currencies c
		LEFT JOIN balances b ON b.currency_id = c.id AND b.wallet_address = $1
		ORDER BY c.id`

	rows, err := r.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.Currency, &b.Amount); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list balances rows: %w", err)
	}
	return balances, nil
}

// GetForUpdate locks the balance row with pessimistic locking and returns
// the amount, zero when no row exists yet. MUST be called within a
// transaction; the lock is held until commit or rollback.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, address string, currencyID int32) (decimal.Decimal, error) {
	query := `SELECT amount FROM balances
		WHERE wallet_address = $1 AND currency_id = $2 FOR UPDATE`

	var amount decimal.Decimal
	err := tx.QueryRow(ctx, query, address, currencyID).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get balance for update: %w", err)
	}
	return amount, nil
}

// Credit upserts balance += amount within a transaction.
func (r *BalanceRepo) Credit(ctx context.Context, tx pgx.Tx, address string, currencyID int32, amount decimal.Decimal) error {
	query := `INSERT INTO balances (wallet_address, currency_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address, currency_id)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount`

	if _, err := tx.Exec(ctx, query, address, currencyID, amount); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

// Debit decrements the balance by amount, guarded so the row is only
// touched when the remaining balance stays non-negative. A zero affected
// count maps to ports.ErrBalanceConstraint.
func (r *BalanceRepo) Debit(ctx context.Context, tx pgx.Tx, address string, currencyID int32, amount decimal.Decimal) error {
	query := `UPDATE balances SET amount = amount - $3
		WHERE wallet_address = $1 AND currency_id = $2 AND amount >= $3`

	tag, err := tx.Exec(ctx, query, address, currencyID, amount)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrBalanceConstraint
	}
	return nil
}
