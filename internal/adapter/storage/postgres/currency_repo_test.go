package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyRepo_GetByCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)

	mock.ExpectQuery("SELECT id, code FROM currencies WHERE code").
		WithArgs("USD").
		WillReturnRows(pgxmock.NewRows([]string{"id", "code"}).AddRow(int32(1), "USD"))

	c, err := repo.GetByCode(context.Background(), "USD")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int32(1), c.ID)
	assert.Equal(t, "USD", c.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_GetByCode_Unknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)

	mock.ExpectQuery("SELECT id, code FROM currencies WHERE code").
		WithArgs("XYZ").
		WillReturnRows(pgxmock.NewRows([]string{"id", "code"}))

	c, err := repo.GetByCode(context.Background(), "XYZ")
	assert.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCurrencyRepo(mock)

	mock.ExpectQuery("SELECT id, code FROM currencies ORDER BY id").
		WillReturnRows(pgxmock.NewRows([]string{"id", "code"}).
			AddRow(int32(1), "USD").
			AddRow(int32(2), "EUR").
			AddRow(int32(3), "BTC"))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "USD", list[0].Code)
	assert.Equal(t, "BTC", list[2].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
