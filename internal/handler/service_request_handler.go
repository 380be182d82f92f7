package handler

import (
	"net/http"
	"time"

	"servicehub/config"
	"servicehub/internal/domain"
	"servicehub/internal/middleware"
	"servicehub/internal/repository"
	"servicehub/internal/service"

	"github.com/gin-gonic/gin"
)

type ServiceRequestHandler struct {
	svc *service.BiddingService
	cfg config.MarketplaceConfig
}

func NewServiceRequestHandler(svc *service.BiddingService, cfg config.MarketplaceConfig) *ServiceRequestHandler {
	return &ServiceRequestHandler{svc: svc, cfg: cfg}
}

type CreateServiceRequestRequest struct {
	CategoryID    uint       `json:"category_id" binding:"required"`
	Description   string     `json:"description" binding:"required,max=5000"`
	RequestType   string     `json:"request_type" binding:"required,request_type"`
	FixedAmount   *int64     `json:"fixed_amount"`
	MinBidAmount  *int64     `json:"min_bid_amount"`
	MaxBidAmount  *int64     `json:"max_bid_amount"`
	BiddingEndsAt *time.Time `json:"bidding_end_date"`
	Images        []string   `json:"images" binding:"max=10,dive,url"`
}

type PlaceBidRequest struct {
	ServiceRequestID uint     `json:"service_request_id" binding:"required"`
	ProposedAmount   int64    `json:"proposed_amount" binding:"required"`
	Note             string   `json:"note" binding:"max=2000"`
	EstimatedTime    string   `json:"estimated_time" binding:"max=100"`
	Attachments      []string `json:"attachments" binding:"max=10,dive,url"`
}

type AcceptBidRequest struct {
	BidID uint `json:"bid_id" binding:"required"`
}

func (h *ServiceRequestHandler) Create(c *gin.Context) {
	var req CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	pricing, err := service.NewPricing(domain.RequestType(req.RequestType), req.FixedAmount, req.MinBidAmount, req.MaxBidAmount, req.BiddingEndsAt)
	if err != nil {
		writeError(c, "ServiceRequestHandler.Create", err)
		return
	}
	sr, err := h.svc.CreateServiceRequest(c.Request.Context(), middleware.GetActor(c), service.CreateRequestInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Pricing:     pricing,
		Images:      req.Images,
	})
	if err != nil {
		writeError(c, "ServiceRequestHandler.Create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service_request": sr})
}

// List filters by userId (requester), categoryId, status and requestType.
func (h *ServiceRequestHandler) List(c *gin.Context) {
	userID, ok := optionalUint(c, "userId")
	if !ok {
		return
	}
	categoryID, ok := optionalUint(c, "categoryId")
	if !ok {
		return
	}
	limit, offset := page(c, h.cfg)
	list, err := h.svc.ListServiceRequests(c.Request.Context(), repository.ServiceRequestFilter{
		RequesterID: userID,
		CategoryID:  categoryID,
		Status:      domain.RequestStatus(c.Query("status")),
		RequestType: domain.RequestType(c.Query("requestType")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(c, "ServiceRequestHandler.List", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_requests": list})
}

func (h *ServiceRequestHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sr, err := h.svc.GetServiceRequest(c.Request.Context(), id)
	if err != nil {
		writeError(c, "ServiceRequestHandler.Get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_request": sr})
}

// UploadImage accepts a multipart "file" and appends its hosted URL to the request.
func (h *ServiceRequestHandler) UploadImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return
	}
	defer f.Close()
	sr, err := h.svc.AttachImage(c.Request.Context(), middleware.GetActor(c), id, f)
	if err != nil {
		writeError(c, "ServiceRequestHandler.UploadImage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_request": sr})
}

// ListBids returns the request's bids cheapest first.
func (h *ServiceRequestHandler) ListBids(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	bids, err := h.svc.ListBidsByRequest(c.Request.Context(), id)
	if err != nil {
		writeError(c, "ServiceRequestHandler.ListBids", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

func (h *ServiceRequestHandler) PlaceBid(c *gin.Context) {
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	bid, err := h.svc.PlaceBid(c.Request.Context(), middleware.GetActor(c), service.PlaceBidInput{
		ServiceRequestID: req.ServiceRequestID,
		AmountCents:      req.ProposedAmount,
		Note:             req.Note,
		EstimatedTime:    req.EstimatedTime,
		Attachments:      req.Attachments,
	})
	if err != nil {
		writeError(c, "ServiceRequestHandler.PlaceBid", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bid": bid})
}

func (h *ServiceRequestHandler) AcceptBid(c *gin.Context) {
	var req AcceptBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	sr, booking, err := h.svc.AcceptBid(c.Request.Context(), middleware.GetActor(c), req.BidID)
	if err != nil {
		writeError(c, "ServiceRequestHandler.AcceptBid", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service_request": sr, "booking": booking})
}

func (h *ServiceRequestHandler) ProviderBids(c *gin.Context) {
	providerID, ok := paramID(c, "providerId")
	if !ok {
		return
	}
	limit, offset := page(c, h.cfg)
	bids, err := h.svc.ListBidsByProvider(c.Request.Context(), providerID, limit, offset)
	if err != nil {
		writeError(c, "ServiceRequestHandler.ProviderBids", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}
