package handler

import (
	"context"
	"errors"
	"net/http"

	"listingguide/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrNoImages),
		errors.Is(err, service.ErrEmptyDescription):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrNoDescriptions):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTooManyImages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrProviderFailed):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrVisionDisabled),
		errors.Is(err, service.ErrStorageDisabled),
		errors.Is(err, service.ErrEmbeddingsDisabled),
		errors.Is(err, service.ErrDatabaseDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// respondBindError answers 422 for requests that parsed but failed validation, 400 otherwise
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
