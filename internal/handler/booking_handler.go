package handler

import (
	"net/http"

	"servicehub/config"
	"servicehub/internal/domain"
	"servicehub/internal/middleware"
	"servicehub/internal/repository"
	"servicehub/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookings *service.BookingService
	bidding  *service.BiddingService
	cfg      config.MarketplaceConfig
}

func NewBookingHandler(bookings *service.BookingService, bidding *service.BiddingService, cfg config.MarketplaceConfig) *BookingHandler {
	return &BookingHandler{bookings: bookings, bidding: bidding, cfg: cfg}
}

type CreateBookingRequest struct {
	ServiceRequestID uint  `json:"service_request_id" binding:"required"`
	ProviderID       *uint `json:"provider_id"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,booking_status"`
}

type ConfirmReleaseRequest struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Review string `json:"review" binding:"max=2000"`
}

type DisputeRequest struct {
	Reason string `json:"reason" binding:"max=2000"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create accepts a fixed-price request, directly producing a confirmed booking.
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	sr, booking, err := h.bidding.AcceptFixedRequest(c.Request.Context(), middleware.GetActor(c), req.ServiceRequestID, req.ProviderID)
	if err != nil {
		writeError(c, "BookingHandler.Create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking, "service_request": sr})
}

// List filters by userId or providerId and status; without either it lists the caller's bookings.
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := optionalUint(c, "userId")
	if !ok {
		return
	}
	providerID, ok := optionalUint(c, "providerId")
	if !ok {
		return
	}
	limit, offset := page(c, h.cfg)
	list, err := h.bookings.List(c.Request.Context(), middleware.GetActor(c), repository.BookingFilter{
		UserID:     userID,
		ProviderID: providerID,
		Status:     domain.BookingStatus(c.Query("status")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(c, "BookingHandler.List", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, "BookingHandler.Get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	b, err := h.bookings.SetStatus(c.Request.Context(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		writeError(c, "BookingHandler.SetStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Start(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.StartService(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, "BookingHandler.Start", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ProviderComplete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.ProviderCompleteService(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, "BookingHandler.ProviderComplete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ConfirmRelease(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ConfirmReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	res, err := h.bookings.UserConfirmBooking(c.Request.Context(), middleware.GetActor(c), id, req.Rating, req.Review)
	if err != nil {
		writeError(c, "BookingHandler.ConfirmRelease", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": res.Booking, "reference": service.BookingReference(res.Booking.ID)})
}

func (h *BookingHandler) Dispute(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DisputeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	b, err := h.bookings.Dispute(c.Request.Context(), middleware.GetActor(c), id, req.Reason)
	if err != nil {
		writeError(c, "BookingHandler.Dispute", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.Cancel(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, "BookingHandler.Cancel", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Pay(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.Pay(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, "BookingHandler.Pay", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) ListMessages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.bookings.ListMessages(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, "BookingHandler.ListMessages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

func (h *BookingHandler) SendMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	m, err := h.bookings.SendMessage(c.Request.Context(), middleware.GetActor(c), id, req.Text)
	if err != nil {
		writeError(c, "BookingHandler.SendMessage", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": m})
}
