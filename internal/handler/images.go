package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"path"
	"strings"

	"listingguide/internal/model"
	"listingguide/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

// ImageHandler analyzes and stores listing photos
type ImageHandler struct {
	images *service.ImageAnalyzer
}

// NewImageHandler creates a new image handler
func NewImageHandler(images *service.ImageAnalyzer) *ImageHandler {
	return &ImageHandler{images: images}
}

// collect decodes inline photos and fetches uploaded ones, in request order
func (h *ImageHandler) collect(ctx context.Context, req *model.AnalyzeImagesRequest) ([][]byte, error) {
	data, err := service.DecodeImages(req.Images)
	if err != nil {
		return nil, err
	}
	for _, key := range req.ObjectKeys {
		b, err := h.images.LoadImage(ctx, key)
		if err != nil {
			return nil, err
		}
		data = append(data, b)
	}
	if len(data) == 0 {
		return nil, service.ErrNoImages
	}
	return data, nil
}

// Analyze handles POST /api/v1/analyze-images
func (h *ImageHandler) Analyze(c *gin.Context) {
	var req model.AnalyzeImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	data, err := h.collect(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	batch, err := h.images.AnalyzeBatch(c.Request.Context(), data, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, batch)
}

// AnalyzeStream handles POST /api/v1/analyze-images/stream - SSE per finished photo
func (h *ImageHandler) AnalyzeStream(c *gin.Context) {
	var req model.AnalyzeImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !h.images.Enabled() {
		respondError(c, service.ErrVisionDisabled)
		return
	}

	data, err := h.collect(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"images": len(data)})
	flusher.Flush()

	batch, err := h.images.AnalyzeBatch(c.Request.Context(), data, func(a model.ImageAnalysis) {
		sendSSE(c, "image", a)
		flusher.Flush()
	})
	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "synthesis", batch.Synthesis)
	sendSSE(c, "done", map[string]any{"batch_id": batch.BatchID, "failed_count": batch.FailedCount})
	flusher.Flush()
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, jsonData)
}

// Upload handles POST /api/v1/uploads (multipart field "file")
func (h *ImageHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file: " + err.Error()})
		return
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file: " + err.Error()})
		return
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidImage, err))
		return
	}

	ext := strings.ToLower(path.Ext(fh.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := "uploads/" + uuid.NewString() + ext

	url, err := h.images.StoreImage(c.Request.Context(), key, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.UploadResponse{
		ObjectKey:   key,
		URL:         url,
		ContentType: service.DetectContentType(data),
		Size:        int64(len(data)),
	})
}
