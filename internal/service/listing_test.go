package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"listingguide/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListingStore struct {
	nextID    int64
	listings  map[int64]*model.Listing
	images    map[int64][]model.ListingImage
	syntheses map[int64]*model.ListingSynthesis

	similar      []model.Listing
	similarLimit int
	missing      []model.Listing
	updated      []model.EmbeddingItem
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{
		listings:  map[int64]*model.Listing{},
		images:    map[int64][]model.ListingImage{},
		syntheses: map[int64]*model.ListingSynthesis{},
	}
}

func (f *fakeListingStore) SaveListing(_ context.Context, l *model.Listing, images []model.ListingImage, s *model.ListingSynthesis) (int64, error) {
	f.nextID++
	l.ID = f.nextID
	f.listings[l.ID] = l
	f.images[l.ID] = images
	f.syntheses[l.ID] = s
	return l.ID, nil
}

func (f *fakeListingStore) GetListing(_ context.Context, id int64) (*model.Listing, error) {
	return f.listings[id], nil
}

func (f *fakeListingStore) SimilarListings(_ context.Context, _ int64, limit int) ([]model.Listing, error) {
	f.similarLimit = limit
	return f.similar, nil
}

func (f *fakeListingStore) ListingsMissingEmbedding(context.Context, []int64, int) ([]model.Listing, error) {
	return f.missing, nil
}

func (f *fakeListingStore) BatchUpdateEmbeddings(_ context.Context, items []model.EmbeddingItem) (int, []string) {
	f.updated = append(f.updated, items...)
	return len(items), nil
}

type fakeEmbedder struct {
	disabled bool
	err      error
	texts    []string
}

func (e *fakeEmbedder) IsEnabled() bool { return !e.disabled }

func (e *fakeEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.texts = append(e.texts, texts...)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

type memoryPhotos struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryPhotos) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return "mem://" + key, nil
}

func (m *memoryPhotos) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func TestListingService_SaveWithAnalyses(t *testing.T) {
	store := newFakeListingStore()
	embedder := &fakeEmbedder{}
	svc := NewListingService(store, nil, nil, embedder, nil, nil)

	resp, err := svc.Save(context.Background(), &model.SaveListingRequest{
		FormData: map[string]any{
			"property_type": "house",
			"price":         "450000",
			"bedrooms":      3.0,
			"address":       "  12 Elm St  ",
			"description":   "Sunny family home",
		},
		Images: []model.ListingImageInput{
			{ImageURL: "https://cdn.example/1.jpg", Analysis: &model.ImageAnalysis{PropertyType: "house", Rooms: map[string]int{"kitchen": 1}, Condition: model.ConditionGood}},
			{ImageURL: "https://cdn.example/2.jpg", Analysis: &model.ImageAnalysis{PropertyType: "house", Rooms: map[string]int{"bedroom": 1}, Condition: model.ConditionGood}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.NotEmpty(t, resp.ListingUUID)
	assert.Equal(t, 2, resp.ImageCount)
	assert.True(t, resp.Embedded)
	require.NotNil(t, resp.Synthesis)
	assert.Equal(t, 2, resp.Synthesis.TotalRooms)
	assert.Equal(t, model.LayoutTraditional, resp.Synthesis.LayoutType)

	saved := store.listings[1]
	require.NotNil(t, saved.Price)
	assert.Equal(t, 450000.0, *saved.Price)
	require.NotNil(t, saved.Bedrooms)
	assert.Equal(t, 3, *saved.Bedrooms)
	assert.Nil(t, saved.Bathrooms)
	assert.Equal(t, "12 Elm St", *saved.Address)
	assert.NotEmpty(t, saved.Embedding.Slice())

	images := store.images[1]
	require.Len(t, images, 2)
	assert.Equal(t, 1, images[1].OrderIndex)
	assert.Equal(t, 1, images[1].Analysis.ImageIndex)
	assert.Equal(t, "https://cdn.example/1.jpg", *images[0].ImageURL)

	require.NotNil(t, store.syntheses[1])
	assert.Equal(t, resp.Synthesis.UnifiedDescription, store.syntheses[1].UnifiedDescription)

	require.Len(t, embedder.texts, 1)
	assert.True(t, strings.HasPrefix(embedder.texts[0], resp.Synthesis.UnifiedDescription))
	assert.Contains(t, embedder.texts[0], "Sunny family home")
}

func TestListingService_SaveAnalyzesAndUploadsPhotos(t *testing.T) {
	store := newFakeListingStore()
	photos := &memoryPhotos{}
	images := NewImageAnalyzer(NewMockVision(), nil, nil, photos, ImageAnalyzerOptions{}, nil)
	svc := NewListingService(store, images, nil, nil, nil, nil)

	payload := base64.StdEncoding.EncodeToString(pngOf(t, 300, 100))
	resp, err := svc.Save(context.Background(), &model.SaveListingRequest{
		FormData: map[string]any{"property_type": "house"},
		Images:   []model.ListingImageInput{{ImageData: payload}},
	})
	require.NoError(t, err)
	assert.False(t, resp.Embedded)

	saved := store.images[resp.ID]
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].ObjectKey)
	assert.Equal(t, "listings/"+resp.ListingUUID+"/00.png", *saved[0].ObjectKey)
	assert.Equal(t, "mem://"+*saved[0].ObjectKey, *saved[0].ImageURL)
	assert.Equal(t, "image/png", *saved[0].ContentType)
	assert.Contains(t, photos.objects, *saved[0].ObjectKey)

	require.NotNil(t, resp.Synthesis)
	assert.Equal(t, 0, resp.Synthesis.TotalRooms)
	assert.Contains(t, resp.Synthesis.ExteriorFeatures, "garage")
}

func TestListingService_SaveKeepsClientSynthesis(t *testing.T) {
	store := newFakeListingStore()
	svc := NewListingService(store, nil, nil, nil, nil, nil)

	given := &model.PropertyOverview{TotalRooms: 7, LayoutType: model.LayoutTraditional, UnifiedDescription: "Client supplied."}
	resp, err := svc.Save(context.Background(), &model.SaveListingRequest{
		FormData:  map[string]any{},
		Images:    []model.ListingImageInput{{Analysis: &model.ImageAnalysis{Rooms: map[string]int{"kitchen": 1}}}},
		Synthesis: given,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Synthesis.TotalRooms)
	assert.Equal(t, "Client supplied.", store.syntheses[resp.ID].UnifiedDescription)
}

func TestListingService_SaveErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewListingService(nil, nil, nil, nil, nil, nil).Save(ctx, &model.SaveListingRequest{})
	assert.ErrorIs(t, err, ErrDatabaseDisabled)

	svc := NewListingService(newFakeListingStore(), nil, nil, nil, nil, nil)
	_, err = svc.Save(ctx, &model.SaveListingRequest{
		FormData: map[string]any{},
		Images:   []model.ListingImageInput{{ImageData: "***"}},
	})
	assert.ErrorIs(t, err, ErrInvalidImage)

	store := newFakeListingStore()
	svc = NewListingService(store, nil, nil, &fakeEmbedder{err: errors.New("quota exceeded")}, nil, nil)
	resp, err := svc.Save(ctx, &model.SaveListingRequest{FormData: map[string]any{"description": "Cozy flat"}})
	require.NoError(t, err, "embedding failures do not block saving")
	assert.False(t, resp.Embedded)
	assert.Empty(t, store.listings[resp.ID].Embedding.Slice())
}

func TestListingService_GetAndSimilar(t *testing.T) {
	store := newFakeListingStore()
	svc := NewListingService(store, nil, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrListingNotFound)
	_, err = svc.Similar(ctx, 42, 5)
	assert.ErrorIs(t, err, ErrListingNotFound)

	id, _ := store.SaveListing(ctx, &model.Listing{Price: floatPtr(100000), Bedrooms: intPtr(2)}, nil, nil)
	store.similar = []model.Listing{
		{ID: 2, Price: floatPtr(300000), Distance: floatPtr(0.4)},
		{ID: 3, Price: floatPtr(105000), Bedrooms: intPtr(2), Distance: floatPtr(0.1)},
	}

	got, err := svc.Similar(ctx, id, 500)
	require.NoError(t, err)
	assert.Equal(t, maxSimilarLimit, store.similarLimit)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Listing.ID)
	assert.Contains(t, got[0].MatchedReasons, ReasonBedroomsMatch)
	assert.Contains(t, got[0].MatchedReasons, ReasonSimilarPrice)

	_, err = svc.Similar(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultSimilarLimit, store.similarLimit)
}

func TestListingService_RefreshEmbeddings(t *testing.T) {
	store := newFakeListingStore()
	store.missing = []model.Listing{
		{ID: 1, Synthesis: &model.ListingSynthesis{UnifiedDescription: "This house has 3 rooms."}},
		{ID: 2, Description: strPtr("Loft with river view")},
		{ID: 3},
	}
	embedder := &fakeEmbedder{}
	svc := NewListingService(store, nil, nil, embedder, nil, nil)

	resp, err := svc.RefreshEmbeddings(context.Background(), &model.EmbeddingBatchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Success)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0], "listing 3")

	require.Len(t, store.updated, 2)
	assert.Equal(t, int64(1), store.updated[0].ListingID)
	assert.Equal(t, []string{"This house has 3 rooms.", "Loft with river view"}, embedder.texts)

	disabled := NewListingService(store, nil, nil, &fakeEmbedder{disabled: true}, nil, nil)
	_, err = disabled.RefreshEmbeddings(context.Background(), &model.EmbeddingBatchRequest{})
	assert.ErrorIs(t, err, ErrEmbeddingsDisabled)
}

func TestRanker_Rank(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r := DefaultRanker()
	r.now = func() time.Time { return now }

	source := &model.Listing{
		PropertyType: strPtr("house"),
		Price:        floatPtr(200000),
		Bedrooms:     intPtr(3),
		Bathrooms:    intPtr(2),
		SquareFeet:   intPtr(1500),
	}
	candidates := []model.Listing{
		{ID: 1, Distance: floatPtr(1.2), CreatedAt: now.AddDate(-1, 0, 0)},
		{
			ID: 2, PropertyType: strPtr("House"), Price: floatPtr(210000), Bedrooms: intPtr(3),
			Bathrooms: intPtr(2), SquareFeet: intPtr(1600), Distance: floatPtr(0.05), CreatedAt: now.Add(-48 * time.Hour),
		},
	}

	got := r.Rank(source, candidates)
	require.Len(t, got, 2)

	assert.Equal(t, int64(2), got[0].Listing.ID)
	assert.InDelta(t, 0.975, got[0].Similarity, 1e-9)
	assert.Equal(t, []string{
		ReasonSameType, ReasonBedroomsMatch, ReasonBathroomsMatch,
		ReasonSimilarPrice, ReasonSimilarSize, ReasonSimilarDescribed, ReasonNewlyListed,
	}, got[0].MatchedReasons)

	assert.Equal(t, []string{ReasonGeneralMatch}, got[1].MatchedReasons)
	assert.Greater(t, got[0].Score, got[1].Score)
	assert.LessOrEqual(t, got[0].Score, 1.0)
}

func TestDescriptionService(t *testing.T) {
	ctx := context.Background()

	_, err := NewDescriptionService(nil).Create(ctx, "text")
	assert.ErrorIs(t, err, ErrDatabaseDisabled)

	store := &fakeDescriptionStore{}
	svc := NewDescriptionService(store)

	_, err = svc.Latest(ctx)
	assert.ErrorIs(t, err, ErrNoDescriptions)

	_, err = svc.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyDescription)

	d, err := svc.Create(ctx, "  Renovated in 2021  ")
	require.NoError(t, err)
	assert.Equal(t, "Renovated in 2021", d.Text)

	_, err = svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultDescriptionLimit, store.lastLimit)

	_, err = svc.List(ctx, 5000)
	require.NoError(t, err)
	assert.Equal(t, maxDescriptionLimit, store.lastLimit)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.ID, latest.ID)
}

type fakeDescriptionStore struct {
	items     []model.Description
	lastLimit int
}

func (f *fakeDescriptionStore) CreateDescription(_ context.Context, text string) (*model.Description, error) {
	d := model.Description{ID: int64(len(f.items) + 1), Text: text, CreatedAt: time.Now()}
	f.items = append(f.items, d)
	return &d, nil
}

func (f *fakeDescriptionStore) LatestDescription(context.Context) (*model.Description, error) {
	if len(f.items) == 0 {
		return nil, nil
	}
	d := f.items[len(f.items)-1]
	return &d, nil
}

func (f *fakeDescriptionStore) ListDescriptions(_ context.Context, limit int) ([]model.Description, error) {
	f.lastLimit = limit
	return f.items, nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
