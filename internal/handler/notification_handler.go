package handler

import (
	"net/http"

	"servicehub/config"
	"servicehub/internal/middleware"
	"servicehub/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
	cfg config.MarketplaceConfig
}

func NewNotificationHandler(svc *service.NotificationService, cfg config.MarketplaceConfig) *NotificationHandler {
	return &NotificationHandler{svc: svc, cfg: cfg}
}

func (h *NotificationHandler) List(c *gin.Context) {
	limit, offset := page(c, h.cfg)
	list, unread, err := h.svc.List(middleware.GetActor(c), limit, offset)
	if err != nil {
		writeError(c, "NotificationHandler.List", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(middleware.GetActor(c), id); err != nil {
		writeError(c, "NotificationHandler.MarkRead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
