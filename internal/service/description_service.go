package service

import (
	"context"
	"errors"
	"strings"

	"listingguide/internal/model"
)

const (
	defaultDescriptionLimit = 10
	maxDescriptionLimit     = 100
)

var (
	// ErrEmptyDescription is returned for blank description text
	ErrEmptyDescription = errors.New("description text is empty")
	// ErrNoDescriptions is returned when no description has been stored yet
	ErrNoDescriptions = errors.New("no descriptions found")
)

// DescriptionStore persists free-text descriptions
type DescriptionStore interface {
	CreateDescription(ctx context.Context, text string) (*model.Description, error)
	LatestDescription(ctx context.Context) (*model.Description, error)
	ListDescriptions(ctx context.Context, limit int) ([]model.Description, error)
}

// DescriptionService keeps the descriptions sellers submit on their own
type DescriptionService struct {
	store DescriptionStore
}

// NewDescriptionService creates a description service
func NewDescriptionService(store DescriptionStore) *DescriptionService {
	return &DescriptionService{store: store}
}

// Create stores trimmed, non-empty text
func (s *DescriptionService) Create(ctx context.Context, text string) (*model.Description, error) {
	if s.store == nil {
		return nil, ErrDatabaseDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDescription
	}
	return s.store.CreateDescription(ctx, text)
}

// Latest returns the newest description
func (s *DescriptionService) Latest(ctx context.Context) (*model.Description, error) {
	if s.store == nil {
		return nil, ErrDatabaseDisabled
	}
	d, err := s.store.LatestDescription(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNoDescriptions
	}
	return d, nil
}

// List returns up to limit descriptions, newest first
func (s *DescriptionService) List(ctx context.Context, limit int) ([]model.Description, error) {
	if s.store == nil {
		return nil, ErrDatabaseDisabled
	}
	if limit <= 0 {
		limit = defaultDescriptionLimit
	}
	return s.store.ListDescriptions(ctx, min(limit, maxDescriptionLimit))
}
