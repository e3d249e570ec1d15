package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Wallet lifecycle (WLT) ----

func ErrWalletNotFound() *AppError {
	return New("WLT_001", "Wallet not found", http.StatusNotFound)
}

func ErrInvalidPrivateKey() *AppError {
	return New("WLT_002", "Invalid private key", http.StatusBadRequest)
}

func ErrWalletBlocked() *AppError {
	return New("WLT_003", "Wallet is blocked", http.StatusBadRequest)
}

func ErrDestinationBlocked() *AppError {
	return New("WLT_004", "Destination wallet is blocked", http.StatusBadRequest)
}

// ---- Ledger operations (LED) ----

func ErrInsufficientFunds(currency string) *AppError {
	return New("LED_001", fmt.Sprintf("Insufficient %s balance for amount plus fee", currency), http.StatusBadRequest)
}

func ErrInvalidCurrency(code string) *AppError {
	return New("LED_002", fmt.Sprintf("Unknown currency %s", code), http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("LED_003", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New("LED_004", "Cannot transfer to the source wallet", http.StatusBadRequest)
}

// ---- Exchange rates (FX) ----

func ErrQuoteUnavailable(err error) *AppError {
	return Wrap("FX_001", "Exchange rate unavailable", http.StatusBadRequest, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorage(err error) *AppError {
	return Wrap("SYS_001", "Internal storage error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LED_003-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("LED_003", message, http.StatusBadRequest)
}
