package handler

import (
	"net/http"
	"strconv"

	"listingguide/internal/model"
	"listingguide/internal/service"

	"github.com/gin-gonic/gin"
)

// ListingHandler handles listing-related HTTP requests
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// Save handles POST /api/v1/listings
func (h *ListingHandler) Save(c *gin.Context) {
	var req model.SaveListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.listings.Save(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetListing handles GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Similar handles GET /api/v1/listings/:id/similar?limit=
func (h *ListingHandler) Similar(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	results, err := h.listings.Similar(c.Request.Context(), listingID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing_id": listingID,
		"results":    results,
	})
}

func parseListingID(c *gin.Context) (int64, bool) {
	listingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || listingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return 0, false
	}
	return listingID, true
}
