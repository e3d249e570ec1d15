package ports

import (
	"context"

	"custodial-wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// KeyManager generates address/private-key pairs and verifies key
// possession against the stored digest.
type KeyManager interface {
	Generate() (*domain.Keypair, error)
	Verify(privateKey, storedHash string) bool
}

// QuoteProvider returns the spot exchange rate for a currency pair.
// The ledger treats every failure mode of the provider the same way.
type QuoteProvider interface {
	SpotRate(ctx context.Context, base, counter string) (decimal.Decimal, error)
}

// WalletService manages wallet lifecycle and read queries.
type WalletService interface {
	Create(ctx context.Context) (*domain.CreatedWallet, error)
	Get(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	Block(ctx context.Context, address string) (*domain.Wallet, error)
	ListBalances(ctx context.Context, address string) ([]domain.Balance, error)
}

// LedgerService is the transaction engine: it validates, authorizes,
// computes fees, and applies each operation atomically.
type LedgerService interface {
	Deposit(ctx context.Context, req DepositRequest) (*MovementReceipt, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*MovementReceipt, error)
	Convert(ctx context.Context, req ConvertRequest) (*ConversionReceipt, error)
	Transfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error)
}

// DepositRequest credits a wallet in one currency.
type DepositRequest struct {
	Address  string
	Currency string
	Amount   decimal.Decimal
}

// WithdrawRequest debits a wallet; requires proof of key possession.
type WithdrawRequest struct {
	Address    string
	Currency   string
	Amount     decimal.Decimal
	PrivateKey string
}

// ConvertRequest exchanges between two currencies within one wallet.
type ConvertRequest struct {
	Address      string
	FromCurrency string
	ToCurrency   string
	Amount       decimal.Decimal
	PrivateKey   string
}

// TransferRequest moves funds between two wallets in one currency.
type TransferRequest struct {
	FromAddress string
	ToAddress   string
	Currency    string
	Amount      decimal.Decimal
	PrivateKey  string
}

// MovementReceipt is returned for deposits and withdrawals.
type MovementReceipt struct {
	MovementID int64               `json:"movement_id"`
	Type       domain.MovementType `json:"type"`
	Amount     decimal.Decimal     `json:"amount"`
	Fee        decimal.Decimal     `json:"fee"`
	NewBalance decimal.Decimal     `json:"new_balance"`
}

// ConversionReceipt is returned for conversions, including the rate used.
type ConversionReceipt struct {
	ConversionID int64           `json:"conversion_id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	FeeAmount    decimal.Decimal `json:"fee_amount"`
	Rate         decimal.Decimal `json:"rate"`
}

// TransferReceipt is returned for wallet-to-wallet transfers.
type TransferReceipt struct {
	TransferID  int64           `json:"transfer_id"`
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
}
