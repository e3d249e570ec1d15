package postgres

import (
	"context"
	"testing"

	"custodial-wallet-ledger/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "9f86d081884c7d65"

func TestBalanceRepo_GetAmount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs(testAddr, int32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(decimal.RequireFromString("100.50")))

	amount, err := repo.GetAmount(context.Background(), testAddr, 1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("100.50")), "got %s", amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetAmount_AbsentIsZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs(testAddr, int32(9)).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}))

	amount, err := repo.GetAmount(context.Background(), testAddr, 9)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT c.code, COALESCE").
		WithArgs(testAddr).
		WillReturnRows(pgxmock.NewRows([]string{"code", "amount"}).
			AddRow("USD", decimal.RequireFromString("89.90")).
			AddRow("EUR", decimal.Zero))

	balances, err := repo.ListByWallet(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "USD", balances[0].Currency)
	assert.True(t, balances[0].Amount.Equal(decimal.RequireFromString("89.90")))
	assert.Equal(t, "EUR", balances[1].Currency)
	assert.True(t, balances[1].Amount.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT amount FROM balances .+ FOR UPDATE").
		WithArgs(testAddr, int32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(decimal.RequireFromString("42")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	amount, err := repo.GetForUpdate(context.Background(), tx, testAddr, 1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("42")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Credit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	amount := decimal.RequireFromString("25")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(testAddr, int32(1), amount).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Credit(context.Background(), tx, testAddr, 1, amount)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Debit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	amount := decimal.RequireFromString("10.10")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount = amount -").
		WithArgs(testAddr, int32(1), amount).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Debit(context.Background(), tx, testAddr, 1, amount)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Debit_GuardRejectsOverdraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances SET amount = amount -").
		WithArgs(testAddr, int32(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Debit(context.Background(), tx, testAddr, 1, decimal.RequireFromString("999"))
	assert.ErrorIs(t, err, ports.ErrBalanceConstraint)
	assert.NoError(t, mock.ExpectationsWereMet())
}
