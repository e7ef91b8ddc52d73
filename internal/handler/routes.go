package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Assistant    *AssistantHandler
	Images       *ImageHandler
	Listings     *ListingHandler
	Embeddings   *EmbeddingHandler
	Descriptions *DescriptionHandler
}

// RegisterRoutes mounts every API endpoint on api
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	// Form assistant
	api.POST("/analyze-step", h.Assistant.AnalyzeStep)
	api.GET("/fields", h.Assistant.Fields)

	// Photos
	api.POST("/analyze-images", h.Images.Analyze)
	api.POST("/analyze-images/stream", h.Images.AnalyzeStream)
	api.POST("/uploads", h.Images.Upload)

	// Listings
	api.POST("/listings", h.Listings.Save)
	api.GET("/listings/:id", h.Listings.GetListing)
	api.GET("/listings/:id/similar", h.Listings.Similar)

	// Embedding endpoints
	api.POST("/embeddings/batch", h.Embeddings.BatchUpdate)

	// Descriptions
	api.POST("/description", h.Descriptions.Create)
	api.GET("/description", h.Descriptions.List)
	api.GET("/description/latest", h.Descriptions.Latest)
}
