package handler

import (
	"net/http"

	"servicehub/internal/middleware"
	"servicehub/internal/service"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves provider profiles and the category catalogue.
type ProviderHandler struct {
	svc *service.ProviderService
}

func NewProviderHandler(svc *service.ProviderService) *ProviderHandler {
	return &ProviderHandler{svc: svc}
}

type UpdateProviderProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=2000"`
	CategoryID  *uint   `json:"category_id"`
	IsActive    *bool   `json:"is_active"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=255"`
}

func (h *ProviderHandler) GetProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(c.Request.Context(), id)
	if err != nil {
		writeError(c, "ProviderHandler.GetProfile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}

func (h *ProviderHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProviderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), middleware.GetActor(c), service.UpdateProviderInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(c, "ProviderHandler.UpdateProfile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p})
}

func (h *ProviderHandler) ListCategories(c *gin.Context) {
	list, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, "ProviderHandler.ListCategories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

func (h *ProviderHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, bindMessage(err))
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), middleware.GetActor(c), req.Name, req.Description)
	if err != nil {
		writeError(c, "ProviderHandler.CreateCategory", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": cat})
}
