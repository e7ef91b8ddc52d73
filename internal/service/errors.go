package service

import "errors"

var (
	// ErrVisionDisabled means no vision provider is configured for image input
	ErrVisionDisabled = errors.New("image analysis is not enabled")
	// ErrInvalidImage means the payload could not be decoded as an image
	ErrInvalidImage = errors.New("invalid image data")
	// ErrListingNotFound is returned when a listing id does not exist
	ErrListingNotFound = errors.New("listing not found")
	// ErrNoImages is returned for an empty batch
	ErrNoImages = errors.New("no images provided")
	// ErrTooManyImages is returned when a batch exceeds the configured maximum
	ErrTooManyImages = errors.New("too many images")
	// ErrStorageDisabled means no photo store is configured
	ErrStorageDisabled = errors.New("photo storage is not enabled")
	// ErrEmbeddingsDisabled means no embedding provider is configured
	ErrEmbeddingsDisabled = errors.New("embeddings are not enabled")
	// ErrDatabaseDisabled means the service runs without PostgreSQL
	ErrDatabaseDisabled = errors.New("database is not configured")
	// ErrProviderFailed wraps failures of the remote AI provider
	ErrProviderFailed = errors.New("AI provider request failed")
)
