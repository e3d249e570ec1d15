package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the kind of single-currency money movement.
type MovementType string

const (
	MovementTypeDeposit    MovementType = "DEPOSIT"
	MovementTypeWithdrawal MovementType = "WITHDRAWAL"
)

// Movement is an immutable deposit or withdrawal ledger entry.
// The id is sequence-assigned at insertion; rows are never mutated.
type Movement struct {
	ID            int64           `json:"id"`
	WalletAddress string          `json:"wallet_address"`
	CurrencyID    int32           `json:"-"`
	Type          MovementType    `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Conversion is an immutable record of a two-currency exchange within a
// single wallet, including the spot rate used at execution time.
type Conversion struct {
	ID             int64           `json:"id"`
	WalletAddress  string          `json:"wallet_address"`
	FromCurrencyID int32           `json:"-"`
	ToCurrencyID   int32           `json:"-"`
	FromAmount     decimal.Decimal `json:"from_amount"`
	ToAmount       decimal.Decimal `json:"to_amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	FeeRate        decimal.Decimal `json:"fee_rate"`
	Rate           decimal.Decimal `json:"rate"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Transfer is an immutable record of a same-currency movement between two
// wallets. The fee is charged to the source on top of the amount.
type Transfer struct {
	ID          int64           `json:"id"`
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	CurrencyID  int32           `json:"-"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	CreatedAt   time.Time       `json:"created_at"`
}
