package handler

import (
	"net/http"
	"strings"

	"listingguide/internal/model"
	"listingguide/internal/service"

	"github.com/gin-gonic/gin"
)

// AssistantHandler drives the step-by-step listing form
type AssistantHandler struct {
	orchestrator *service.Orchestrator
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(orchestrator *service.Orchestrator) *AssistantHandler {
	return &AssistantHandler{orchestrator: orchestrator}
}

// AnalyzeStep handles POST /api/v1/analyze-step
func (h *AssistantHandler) AnalyzeStep(c *gin.Context) {
	var req model.AnalyzeStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.CurrentData == nil {
		req.CurrentData = map[string]any{}
	}

	resp, err := h.orchestrator.AnalyzeStep(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Fields handles GET /api/v1/fields?property_type=
func (h *AssistantHandler) Fields(c *gin.Context) {
	pt := model.PropertyType(strings.ToLower(strings.TrimSpace(c.Query("property_type"))))
	if pt != "" && !pt.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property type: " + string(pt)})
		return
	}

	c.JSON(http.StatusOK, model.FieldCatalogResponse{
		PropertyType: string(pt),
		Fields:       h.orchestrator.Catalog().All(pt),
	})
}
