package handler

import (
	"time"

	"custodial-wallet-ledger/internal/adapter/http/dto"
	"custodial-wallet-ledger/internal/core/domain"
	"custodial-wallet-ledger/internal/core/ports"
	"custodial-wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet lifecycle and read endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	created, err := h.walletSvc.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreatedWalletResponse{
		WalletResponse: toWalletResponse(&created.Wallet),
		PrivateKey:     created.PrivateKey,
	})
}

// Get handles GET /api/v1/wallets/:address.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.walletSvc.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toWalletResponse(wallet))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.walletSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, toWalletResponse(&wallets[i]))
	}
	response.OK(c, out)
}

// Block handles DELETE /api/v1/wallets/:address.
func (h *WalletHandler) Block(c *gin.Context) {
	wallet, err := h.walletSvc.Block(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toWalletResponse(wallet))
}

// ListBalances handles GET /api/v1/wallets/:address/balances.
func (h *WalletHandler) ListBalances(c *gin.Context) {
	balances, err := h.walletSvc.ListBalances(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.BalanceResponse{Currency: b.Currency, Amount: b.Amount.String()})
	}
	response.OK(c, out)
}

func toWalletResponse(w *domain.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:        w.ID,
		Address:   w.Address,
		Status:    string(w.Status),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}
