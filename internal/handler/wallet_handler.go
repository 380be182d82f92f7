package handler

import (
	"net/http"

	"servicehub/config"
	"servicehub/internal/middleware"
	"servicehub/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	svc *service.WalletService
	cfg config.MarketplaceConfig
}

func NewWalletHandler(svc *service.WalletService, cfg config.MarketplaceConfig) *WalletHandler {
	return &WalletHandler{svc: svc, cfg: cfg}
}

type WithdrawRequest struct {
	Amount int64 `json:"amount"`
}

// GetBalance returns the provider's wallet.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	w, err := h.svc.GetWallet(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		writeError(c, "WalletHandler.GetBalance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w})
}

func (h *WalletHandler) ListTransactions(c *gin.Context) {
	limit, offset := page(c, h.cfg)
	list, err := h.svc.ListTransactions(c.Request.Context(), middleware.GetActor(c), limit, offset)
	if err != nil {
		writeError(c, "WalletHandler.ListTransactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	w, txn, err := h.svc.Withdraw(c.Request.Context(), middleware.GetActor(c), req.Amount)
	if err != nil {
		writeError(c, "WalletHandler.Withdraw", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w, "transaction": txn})
}
