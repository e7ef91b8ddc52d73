package handler

import (
	"net/http"

	"listingguide/internal/model"
	"listingguide/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles embedding-related HTTP requests
type EmbeddingHandler struct {
	listings *service.ListingService
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(listings *service.ListingService) *EmbeddingHandler {
	return &EmbeddingHandler{listings: listings}
}

// BatchUpdate handles POST /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	// An empty body means "everything missing an embedding"
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	response, err := h.listings.RefreshEmbeddings(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(response.Errors) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
