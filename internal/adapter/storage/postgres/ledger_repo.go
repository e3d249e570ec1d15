package postgres

import (
	"context"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository over the three append-only
// ledger tables. Rows are inserted inside the caller's transaction and
// never mutated afterwards; ids come from the tables' sequences.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// InsertMovement appends a deposit or withdrawal record.
func (r *LedgerRepo) InsertMovement(ctx context.Context, tx pgx.Tx, m *domain.Movement) (int64, error) {
	query := `INSERT INTO movements (wallet_address, currency_id, movement_type, amount, fee)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query, m.WalletAddress, m.CurrencyID, m.Type, m.Amount, m.Fee).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	return m.ID, nil
}

// InsertConversion appends a conversion record including the rate used.
func (r *LedgerRepo) InsertConversion(ctx context.Context, tx pgx.Tx, cv *domain.Conversion) (int64, error) {
	query := `INSERT INTO conversions (wallet_address, from_currency_id, to_currency_id,
			from_amount, to_amount, fee_amount, fee_rate, rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query,
		cv.WalletAddress, cv.FromCurrencyID, cv.ToCurrencyID,
		cv.FromAmount, cv.ToAmount, cv.FeeAmount, cv.FeeRate, cv.Rate,
	).Scan(&cv.ID, &cv.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	return cv.ID, nil
}

// InsertTransfer appends a wallet-to-wallet transfer record.
func (r *LedgerRepo) InsertTransfer(ctx context.Context, tx pgx.Tx, tr *domain.Transfer) (int64, error) {
	query := `INSERT INTO transfers (from_address, to_address, currency_id, amount, fee)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query, tr.FromAddress, tr.ToAddress, tr.CurrencyID, tr.Amount, tr.Fee).
		Scan(&tr.ID, &tr.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert transfer: %w", err)
	}
	return tr.ID, nil
}
