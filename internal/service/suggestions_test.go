package service

import (
	"testing"

	"listingguide/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectedAmenity(a model.Amenity, confidence float64) *model.ExtractedFeatures {
	f := model.NewExtractedFeatures()
	f.Amenities = append(f.Amenities, a)
	f.AmenitiesConfidence[a] = confidence
	return &f
}

func suggestionFor(list []model.FieldSuggestion, id string) (model.FieldSuggestion, bool) {
	for _, s := range list {
		if s.FieldID == id {
			return s, true
		}
	}
	return model.FieldSuggestion{}, false
}

func TestFieldSuggester_PropertyTypeGate(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)

	got := s.Suggest(map[string]any{}, detectedAmenity(model.AmenityPool, 0.95), DefaultConfidenceThreshold)

	require.Len(t, got.Fields, 1)
	assert.Equal(t, FieldPropertyType, got.Fields[0].ID)
	assert.True(t, got.Fields[0].Required)
	assert.Equal(t, model.ComponentSelect, got.Fields[0].ComponentType)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, 1, got.Suggestions[0].Priority)
}

func TestFieldSuggester_HighConfidenceDetection(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)

	got := s.Suggest(map[string]any{"property_type": "house"}, detectedAmenity(model.AmenityPool, 0.9), DefaultConfidenceThreshold)

	require.Len(t, got.Suggestions, 3)
	ids := []string{got.Fields[0].ID, got.Fields[1].ID, got.Fields[2].ID}
	assert.Equal(t, []string{"has_pool", "pool_type", "address"}, ids)
	assert.Equal(t, 1, got.Suggestions[0].Priority)
	assert.Equal(t, model.CategoryDetected, got.Suggestions[0].Category)
	assert.Equal(t, "Detected pool in image/text", got.Suggestions[0].Reason)
	assert.Equal(t, model.CategoryRequired, got.Suggestions[2].Category)
}

func TestFieldSuggester_DetectionTiers(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)
	current := map[string]any{"property_type": "house"}

	mid := s.Rank(current, detectedAmenity(model.AmenityPool, 0.5), DefaultConfidenceThreshold)
	sug, ok := suggestionFor(mid, "has_pool")
	require.True(t, ok)
	assert.Equal(t, 3, sug.Priority)
	assert.Equal(t, model.CategoryDetected, sug.Category)

	low := s.Rank(current, detectedAmenity(model.AmenityPool, 0.2), DefaultConfidenceThreshold)
	sug, ok = suggestionFor(low, "has_pool")
	require.True(t, ok)
	assert.Equal(t, 8, sug.Priority)
	assert.Equal(t, model.CategoryHighValue, sug.Category)

	exact := s.Rank(current, detectedAmenity(model.AmenityPool, 0.7), DefaultConfidenceThreshold)
	sug, _ = suggestionFor(exact, "has_pool")
	assert.Equal(t, 1, sug.Priority)
}

func TestFieldSuggester_NeverRepeatsOrExceedsMax(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)

	states := []map[string]any{
		{"property_type": "house"},
		{"property_type": "condo", "address": "1 Main St", "price": 250000},
		{"property_type": "apartment", "bedrooms": 2, "bathrooms": 1, "has_pool": true, "has_parking": "true"},
		{"property_type": "land"},
	}

	for _, current := range states {
		got := s.Suggest(current, detectedAmenity(model.AmenityGarage, 0.8), DefaultConfidenceThreshold)
		assert.LessOrEqual(t, len(got.Fields), DefaultMaxSuggestions)
		assert.Len(t, got.Suggestions, len(got.Fields))
		for _, f := range got.Fields {
			_, filled := current[f.ID]
			assert.False(t, filled, "suggested filled field %s", f.ID)
		}
	}
}

func TestFieldSuggester_DropsUnresolvableFields(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)
	current := map[string]any{
		"property_type": "apartment",
		"bedrooms":      2, "bathrooms": 1, "square_feet": 900, "price": 120000,
		"address": "Str. Lunga 4", "description": "bright", "has_parking": false, "has_pool": false,
		"garage": "none", "building_age": 12,
	}

	ranked := s.Rank(current, nil, DefaultConfidenceThreshold)
	require.GreaterOrEqual(t, len(ranked), 3)
	assert.Equal(t, "amenities", ranked[1].FieldID)

	got := s.Suggest(current, nil, DefaultConfidenceThreshold)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "floor_number", got.Fields[0].ID)
	assert.Equal(t, "elevator", got.Fields[1].ID)
}

func TestFieldSuggester_DescriptionPriorityScales(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)

	tests := []struct {
		name    string
		current map[string]any
		want    int
	}{
		{"few filled", map[string]any{"property_type": "house"}, 11},
		{"some filled", map[string]any{"property_type": "house", "price": 1, "bedrooms": 2}, 9},
		{"mostly filled", map[string]any{"property_type": "house", "price": 1, "bedrooms": 2, "bathrooms": 1, "address": "x"}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sug, ok := suggestionFor(s.Rank(tt.current, nil, DefaultConfidenceThreshold), "description")
			require.True(t, ok)
			assert.Equal(t, tt.want, sug.Priority)
			assert.Equal(t, model.CategoryHighValue, sug.Category)
		})
	}
}

func TestFieldSuggester_ContextualDetails(t *testing.T) {
	s := NewFieldSuggester(nil, 0, nil)

	ranked := s.Rank(map[string]any{"property_type": "land", "has_pool": true, "has_parking": "true"}, nil, DefaultConfidenceThreshold)

	pool, ok := suggestionFor(ranked, "pool_type")
	require.True(t, ok)
	assert.Equal(t, 7, pool.Priority)
	assert.Equal(t, ReasonPoolDetails, pool.Reason)

	parking, ok := suggestionFor(ranked, "parking_spaces")
	require.True(t, ok)
	assert.Equal(t, 8, parking.Priority)
	assert.Equal(t, model.CategoryContextual, parking.Category)

	ranked = s.Rank(map[string]any{"property_type": "land", "has_pool": "false"}, nil, DefaultConfidenceThreshold)
	_, ok = suggestionFor(ranked, "pool_type")
	assert.False(t, ok)

	ranked = s.Rank(map[string]any{"property_type": "house"}, nil, DefaultConfidenceThreshold)
	roof, ok := suggestionFor(ranked, "roof_age")
	require.True(t, ok)
	assert.Equal(t, 9, roof.Priority)
	assert.Equal(t, "Important for house properties", roof.Reason)
}

func TestFieldSuggester_CustomMax(t *testing.T) {
	s := NewFieldSuggester(nil, 1, nil)

	got := s.Suggest(map[string]any{"property_type": "house"}, nil, DefaultConfidenceThreshold)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, "address", got.Fields[0].ID)
}
