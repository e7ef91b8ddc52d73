package handler

import (
	"net/http"
	"strconv"

	"listingguide/internal/model"
	"listingguide/internal/service"

	"github.com/gin-gonic/gin"
)

// DescriptionHandler stores free-text property descriptions
type DescriptionHandler struct {
	descriptions *service.DescriptionService
}

// NewDescriptionHandler creates a new description handler
func NewDescriptionHandler(descriptions *service.DescriptionService) *DescriptionHandler {
	return &DescriptionHandler{descriptions: descriptions}
}

// Create handles POST /api/v1/description
func (h *DescriptionHandler) Create(c *gin.Context) {
	var req model.DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, err := h.descriptions.Create(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// Latest handles GET /api/v1/description/latest
func (h *DescriptionHandler) Latest(c *gin.Context) {
	d, err := h.descriptions.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// List handles GET /api/v1/description?limit=
func (h *DescriptionHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	items, err := h.descriptions.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"descriptions": items, "count": len(items)})
}
