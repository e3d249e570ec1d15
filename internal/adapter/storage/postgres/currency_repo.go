package postgres

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CurrencyRepo implements ports.CurrencyRepository over the seeded
// currency reference table.
type CurrencyRepo struct {
	pool Pool
}

// NewCurrencyRepo creates a new CurrencyRepo.
func NewCurrencyRepo(pool Pool) *CurrencyRepo {
	return &CurrencyRepo{pool: pool}
}

// GetByCode resolves a currency code. Returns nil, nil when unknown.
func (r *CurrencyRepo) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	query := `SELECT id, code FROM currencies WHERE code = $1`

	c := &domain.Currency{}
	err := r.pool.QueryRow(ctx, query, code).Scan(&c.ID, &c.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency by code: %w", err)
	}
	return c, nil
}

// List returns all known currencies ordered by id.
func (r *CurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT id, code FROM currencies ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		var c domain.Currency
		if err := rows.Scan(&c.ID, &c.Code); err != nil {
			return nil, fmt.Errorf("scan currency row: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list currencies rows: %w", err)
	}
	return currencies, nil
}
