package handler

import (
	"custodial-wallet-ledger/internal/adapter/http/dto"
	"custodial-wallet-ledger/internal/core/ports"
	"custodial-wallet-ledger/pkg/apperror"
	"custodial-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles the balance-mutating endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Deposit handles POST /api/v1/wallets/:address/deposits.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	receipt, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		Address:  c.Param("address"),
		Currency: req.Currency,
		Amount:   decimal.NewFromFloat(req.Amount),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// Withdraw handles POST /api/v1/wallets/:address/withdrawals.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	receipt, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		Address:    c.Param("address"),
		Currency:   req.Currency,
		Amount:     decimal.NewFromFloat(req.Amount),
		PrivateKey: req.PrivateKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// Convert handles POST /api/v1/wallets/:address/conversions.
func (h *LedgerHandler) Convert(c *gin.Context) {
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	receipt, err := h.ledgerSvc.Convert(c.Request.Context(), ports.ConvertRequest{
		Address:      c.Param("address"),
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Amount:       decimal.NewFromFloat(req.Amount),
		PrivateKey:   req.PrivateKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// Transfer handles POST /api/v1/wallets/:address/transfers.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	receipt, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		FromAddress: c.Param("address"),
		ToAddress:   req.ToAddress,
		Currency:    req.Currency,
		Amount:      decimal.NewFromFloat(req.Amount),
		PrivateKey:  req.PrivateKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}
