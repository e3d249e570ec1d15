package postgres

import (
	"context"
	"testing"
	"time"

	"custodial-wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepo_InsertMovement(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	now := time.Now().UTC()

	m := &domain.Movement{
		WalletAddress: testAddr,
		CurrencyID:    1,
		Type:          domain.MovementTypeWithdrawal,
		Amount:        decimal.RequireFromString("10"),
		Fee:           decimal.RequireFromString("0.10"),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO movements").
		WithArgs(m.WalletAddress, m.CurrencyID, m.Type, m.Amount, m.Fee).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(101), now))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.InsertMovement(context.Background(), tx, m)
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)
	assert.Equal(t, int64(101), m.ID)
	assert.Equal(t, now, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_InsertConversion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	now := time.Now().UTC()

	cv := &domain.Conversion{
		WalletAddress:  testAddr,
		FromCurrencyID: 1,
		ToCurrencyID:   2,
		FromAmount:     decimal.RequireFromString("50"),
		ToAmount:       decimal.RequireFromString("45"),
		FeeAmount:      decimal.RequireFromString("1"),
		FeeRate:        decimal.RequireFromString("0.02"),
		Rate:           decimal.RequireFromString("0.9"),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO conversions").
		WithArgs(cv.WalletAddress, cv.FromCurrencyID, cv.ToCurrencyID,
			cv.FromAmount, cv.ToAmount, cv.FeeAmount, cv.FeeRate, cv.Rate).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(55), now))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.InsertConversion(context.Background(), tx, cv)
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_InsertTransfer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	now := time.Now().UTC()

	tr := &domain.Transfer{
		FromAddress: testAddr,
		ToAddress:   "b1c2d3e4f5",
		CurrencyID:  1,
		Amount:      decimal.RequireFromString("20"),
		Fee:         decimal.RequireFromString("0.20"),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transfers").
		WithArgs(tr.FromAddress, tr.ToAddress, tr.CurrencyID, tr.Amount, tr.Fee).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), now))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.InsertTransfer(context.Background(), tx, tr)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
