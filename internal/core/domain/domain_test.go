package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWallet_IsActive(t *testing.T) {
	w := &Wallet{Address: "ab12cd34", Status: WalletStatusActive, CreatedAt: time.Now()}
	assert.True(t, w.IsActive())

	w.Status = WalletStatusBlocked
	assert.False(t, w.IsActive())
}

func TestMovementTypes(t *testing.T) {
	assert.Equal(t, MovementType("DEPOSIT"), MovementTypeDeposit)
	assert.Equal(t, MovementType("WITHDRAWAL"), MovementTypeWithdrawal)
}

func TestBalance_ZeroValue(t *testing.T) {
	b := Balance{Currency: "USD"}
	assert.True(t, b.Amount.Equal(decimal.Zero))
}
