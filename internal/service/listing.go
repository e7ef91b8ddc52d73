package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"listingguide/internal/model"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const (
	defaultSimilarLimit   = 5
	maxSimilarLimit       = 50
	defaultEmbeddingBatch = 100
)

// ListingStore persists listings. *repository.PostgresRepository implements it.
type ListingStore interface {
	SaveListing(ctx context.Context, listing *model.Listing, images []model.ListingImage, synthesis *model.ListingSynthesis) (int64, error)
	GetListing(ctx context.Context, id int64) (*model.Listing, error)
	SimilarListings(ctx context.Context, id int64, limit int) ([]model.Listing, error)
	ListingsMissingEmbedding(ctx context.Context, ids []int64, limit int) ([]model.Listing, error)
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}

// ListingService saves finished listings and finds similar ones
type ListingService struct {
	store    ListingStore
	images   *ImageAnalyzer
	synth    *Synthesizer
	embedder Embedder
	ranker   *Ranker
	logger   *zap.Logger
}

// NewListingService creates a listing service. Every collaborator except store is optional.
func NewListingService(store ListingStore, images *ImageAnalyzer, synth *Synthesizer, embedder Embedder, ranker *Ranker, logger *zap.Logger) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if synth == nil {
		synth = NewSynthesizer(logger)
	}
	if ranker == nil {
		ranker = DefaultRanker()
	}
	return &ListingService{
		store:    store,
		images:   images,
		synth:    synth,
		embedder: embedder,
		ranker:   ranker,
		logger:   logger,
	}
}

// Save stores the form, its photos and the property overview. Photos without an
// analysis are analyzed when a vision provider is configured, and the overview is
// synthesized from the analyses unless the client sent one.
func (s *ListingService) Save(ctx context.Context, req *model.SaveListingRequest) (*model.SaveListingResponse, error) {
	if s.store == nil {
		return nil, ErrDatabaseDisabled
	}

	listing := listingFromForm(req.FormData)
	listing.ListingUUID = uuid.NewString()

	images := make([]model.ListingImage, 0, len(req.Images))
	var analyses []model.ImageAnalysis
	for i, in := range req.Images {
		img, analyzed, err := s.prepareImage(ctx, listing.ListingUUID, i, in)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		images = append(images, img)
		if analyzed {
			analyses = append(analyses, img.Record)
		}
	}

	var overview *model.PropertyOverview
	switch {
	case req.Synthesis != nil:
		overview = req.Synthesis
	case len(analyses) > 0:
		o := s.synth.Synthesize(analyses)
		overview = &o
	}
	var synthesis *model.ListingSynthesis
	if overview != nil {
		synthesis = model.NewListingSynthesis(*overview)
	}

	embedded := false
	if text := embeddingText(&listing, overview); text != "" && s.embedder != nil && s.embedder.IsEnabled() {
		vectors, err := s.embedder.CreateEmbeddings(ctx, []string{text})
		if err != nil {
			s.logger.Warn("listing saved without embedding", zap.String("listing_uuid", listing.ListingUUID), zap.Error(err))
		} else {
			listing.Embedding = pgvector.NewVector(vectors[0])
			embedded = true
		}
	}

	id, err := s.store.SaveListing(ctx, &listing, images, synthesis)
	if err != nil {
		return nil, err
	}

	s.logger.Info("listing saved",
		zap.Int64("id", id),
		zap.String("listing_uuid", listing.ListingUUID),
		zap.Int("images", len(images)),
		zap.Bool("embedded", embedded),
	)

	return &model.SaveListingResponse{
		ID:          id,
		ListingUUID: listing.ListingUUID,
		ImageCount:  len(images),
		Synthesis:   overview,
		Embedded:    embedded,
	}, nil
}

// prepareImage decodes, uploads and analyzes one photo as far as the configured
// collaborators allow. analyzed reports whether img.Record holds an analysis.
func (s *ListingService) prepareImage(ctx context.Context, listingUUID string, index int, in model.ListingImageInput) (model.ListingImage, bool, error) {
	img := model.ListingImage{OrderIndex: index}
	if in.ImageURL != "" {
		img.ImageURL = &in.ImageURL
	}
	if in.ObjectKey != "" {
		img.ObjectKey = &in.ObjectKey
	}

	if in.ImageData != "" {
		data, err := DecodeImage(in.ImageData)
		if err != nil {
			return img, false, err
		}
		img.Data = data
		contentType := DetectContentType(data)
		img.ContentType = &contentType

		if img.ObjectKey == nil {
			key := fmt.Sprintf("listings/%s/%02d%s", listingUUID, index, extensionFor(contentType))
			url, err := s.images.StoreImage(ctx, key, data)
			switch {
			case err == nil:
				img.ObjectKey = &key
				img.ImageURL = &url
			case errors.Is(err, ErrStorageDisabled):
			default:
				return img, false, err
			}
		}
	}

	switch {
	case in.Analysis != nil:
		img.Record = *in.Analysis
		img.Record.ImageIndex = index
	case img.Data != nil && s.images.Enabled():
		record, err := s.images.AnalyzeOne(ctx, index, img.Data)
		if err != nil {
			s.logger.Warn("photo analysis failed while saving", zap.Int("index", index), zap.Error(err))
			record = model.FailedAnalysis(index, err)
		}
		img.Record = record
	default:
		return img, false, nil
	}
	img.Analysis = model.AnalysisJSON(img.Record)
	return img, true, nil
}

// Get returns a stored listing
func (s *ListingService) Get(ctx context.Context, id int64) (*model.Listing, error) {
	if s.store == nil {
		return nil, ErrDatabaseDisabled
	}
	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// Similar returns the listings closest to id, re-ranked by the ranker
func (s *ListingService) Similar(ctx context.Context, id int64, limit int) ([]model.SimilarListing, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	limit = min(limit, maxSimilarLimit)

	candidates, err := s.store.SimilarListings(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(source, candidates), nil
}

// RefreshEmbeddings embeds listings that have no vector yet, or the listings named in req
func (s *ListingService) RefreshEmbeddings(ctx context.Context, req *model.EmbeddingBatchRequest) (*model.EmbeddingBatchResponse, error) {
	if s.store == nil {
		return nil, ErrDatabaseDisabled
	}
	if s.embedder == nil || !s.embedder.IsEnabled() {
		return nil, ErrEmbeddingsDisabled
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultEmbeddingBatch
	}
	listings, err := s.store.ListingsMissingEmbedding(ctx, req.ListingIDs, limit)
	if err != nil {
		return nil, err
	}

	resp := &model.EmbeddingBatchResponse{}
	var (
		ids   []int64
		texts []string
	)
	for i := range listings {
		var overview *model.PropertyOverview
		if listings[i].Synthesis != nil {
			o := model.PropertyOverview(listings[i].Synthesis.PropertyOverview)
			o.UnifiedDescription = listings[i].Synthesis.UnifiedDescription
			overview = &o
		}
		text := embeddingText(&listings[i], overview)
		if text == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("listing %d: nothing to embed", listings[i].ID))
			continue
		}
		ids = append(ids, listings[i].ID)
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return resp, nil
	}

	vectors, err := s.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create embeddings: %v", ErrProviderFailed, err)
	}

	items := make([]model.EmbeddingItem, len(ids))
	for i, id := range ids {
		items[i] = model.EmbeddingItem{ListingID: id, Embedding: vectors[i]}
	}
	success, errs := s.store.BatchUpdateEmbeddings(ctx, items)
	resp.Success = success
	resp.Failed += len(items) - success
	resp.Errors = append(resp.Errors, errs...)

	s.logger.Info("embeddings refreshed", zap.Int("success", resp.Success), zap.Int("failed", resp.Failed))
	return resp, nil
}

// embeddingText picks the text that represents a listing in vector space
func embeddingText(listing *model.Listing, overview *model.PropertyOverview) string {
	var parts []string
	if overview != nil && overview.UnifiedDescription != "" {
		parts = append(parts, overview.UnifiedDescription)
	}
	if listing.Description != nil && strings.TrimSpace(*listing.Description) != "" {
		parts = append(parts, strings.TrimSpace(*listing.Description))
	}
	return strings.Join(parts, "\n")
}

// listingFromForm copies the well-known form fields into typed columns
func listingFromForm(form map[string]any) model.Listing {
	l := model.Listing{FormData: model.JSONMap(form)}
	if l.FormData == nil {
		l.FormData = model.JSONMap{}
	}
	l.PropertyType = stringField(form, FieldPropertyType)
	l.Address = stringField(form, "address")
	l.Description = stringField(form, "description")
	if v, ok := numberField(form, "price"); ok {
		l.Price = &v
	}
	l.Bedrooms = intField(form, "bedrooms")
	l.Bathrooms = intField(form, "bathrooms")
	l.SquareFeet = intField(form, "square_feet")
	return l
}

func stringField(form map[string]any, key string) *string {
	v, ok := form[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

func numberField(form map[string]any, key string) (float64, bool) {
	switch v := form[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func intField(form map[string]any, key string) *int {
	f, ok := numberField(form, key)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
