package domain

import "github.com/shopspring/decimal"

// Currency is a reference entity mapping a code (e.g. "USD") to an
// internal id. Seeded out-of-band; not owned by any wallet.
type Currency struct {
	ID   int32  `json:"-"`
	Code string `json:"code"`
}

// Balance is the amount a wallet holds in one currency. The invariant
// amount >= 0 is enforced at commit time of every debiting operation.
type Balance struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}
