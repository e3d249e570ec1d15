package dto

// DepositRequest is the request body for crediting a wallet.
type DepositRequest struct {
	Currency string  `json:"currency" binding:"required,min=3,max=10"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// WithdrawRequest is the request body for debiting a wallet.
type WithdrawRequest struct {
	Currency   string  `json:"currency" binding:"required,min=3,max=10"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	PrivateKey string  `json:"private_key" binding:"required"`
}

// ConvertRequest is the request body for an in-wallet currency exchange.
type ConvertRequest struct {
	FromCurrency string  `json:"from_currency" binding:"required,min=3,max=10"`
	ToCurrency   string  `json:"to_currency" binding:"required,min=3,max=10"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
	PrivateKey   string  `json:"private_key" binding:"required"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	ToAddress  string  `json:"to_address" binding:"required"`
	Currency   string  `json:"currency" binding:"required,min=3,max=10"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	PrivateKey string  `json:"private_key" binding:"required"`
}

// WalletResponse is the public view of a wallet.
type WalletResponse struct {
	ID        int64  `json:"id"`
	Address   string `json:"address"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// CreatedWalletResponse is returned once at creation; the private key
// never appears in any other response.
type CreatedWalletResponse struct {
	WalletResponse
	PrivateKey string `json:"private_key"`
}

// BalanceResponse is one per-currency balance row.
type BalanceResponse struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}
