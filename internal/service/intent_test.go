package service

import (
	"context"
	"encoding/base64"
	"testing"

	"listingguide/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIntentParser_Text(t *testing.T) {
	parser := NewIntentParser(nil, nil, nil)

	text := "Spacious house with 3 bedrooms, 2 bathrooms and a swimming pool."
	intent, err := parser.Parse(context.Background(), &model.AnalyzeStepRequest{
		InputType: model.InputText,
		NewInput:  strPtr(text),
	})
	require.NoError(t, err)

	assert.Equal(t, "house", intent.Inferred["property_type"])
	assert.Equal(t, 3, intent.Inferred["bedrooms"])
	assert.Equal(t, 2, intent.Inferred["bathrooms"])
	assert.Equal(t, true, intent.Inferred["has_pool"])
	assert.Equal(t, text, intent.Inferred["description"])
	assert.NotContains(t, intent.Inferred, "has_parking")

	require.NotNil(t, intent.Signals)
	assert.True(t, intent.Signals.HasAmenity(model.AmenityPool))
	for field, conf := range intent.Confidence {
		assert.True(t, conf >= 0 && conf <= 1, "%s confidence %f out of range", field, conf)
	}
	assert.Nil(t, intent.Analysis)
}

func TestIntentParser_NothingToInterpret(t *testing.T) {
	parser := NewIntentParser(nil, nil, nil)

	tests := []struct {
		name string
		req  model.AnalyzeStepRequest
	}{
		{"field update", model.AnalyzeStepRequest{InputType: model.InputFieldUpdate, NewInput: strPtr("3 bedroom house")}},
		{"blank text", model.AnalyzeStepRequest{InputType: model.InputText, NewInput: strPtr("   ")}},
		{"missing text", model.AnalyzeStepRequest{InputType: model.InputText}},
		{"image without payload", model.AnalyzeStepRequest{InputType: model.InputImage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := parser.Parse(context.Background(), &tt.req)
			require.NoError(t, err)
			assert.Empty(t, intent.Inferred)
			assert.Nil(t, intent.Signals)
		})
	}
}

func TestIntentParser_Image(t *testing.T) {
	images := NewImageAnalyzer(NewMockVision(), nil, nil, nil, ImageAnalyzerOptions{}, nil)
	parser := NewIntentParser(nil, images, nil)

	payload := base64.StdEncoding.EncodeToString(pngOf(t, 300, 100))
	intent, err := parser.Parse(context.Background(), &model.AnalyzeStepRequest{
		InputType: model.InputImage,
		NewInput:  strPtr("data:image/png;base64," + payload),
	})
	require.NoError(t, err)

	require.NotNil(t, intent.Analysis)
	assert.True(t, intent.Analysis.IsExterior())
	assert.Equal(t, "house", intent.Inferred["property_type"])
	assert.Equal(t, true, intent.Inferred["has_parking"])
	assert.Equal(t, visionSignalConfidence, intent.Confidence["has_parking"])
	assert.NotContains(t, intent.Inferred, "description")
}

func TestIntentParser_ImageErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("bad base64 is rejected", func(t *testing.T) {
		parser := NewIntentParser(nil, NewImageAnalyzer(NewMockVision(), nil, nil, nil, ImageAnalyzerOptions{}, nil), nil)
		_, err := parser.Parse(ctx, &model.AnalyzeStepRequest{InputType: model.InputImage, NewInput: strPtr("%%%")})
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("undecodable photo is rejected", func(t *testing.T) {
		parser := NewIntentParser(nil, NewImageAnalyzer(NewMockVision(), nil, nil, nil, ImageAnalyzerOptions{}, nil), nil)
		notAnImage := base64.StdEncoding.EncodeToString([]byte("plain text, not pixels"))
		_, err := parser.Parse(ctx, &model.AnalyzeStepRequest{InputType: model.InputImage, NewInput: &notAnImage})
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("vision failure infers nothing", func(t *testing.T) {
		vision := &stubVision{failOn: map[string]bool{"photo": true}}
		parser := NewIntentParser(nil, NewImageAnalyzer(vision, nil, nil, nil, ImageAnalyzerOptions{}, nil), nil)
		payload := base64.StdEncoding.EncodeToString([]byte("photo"))

		intent, err := parser.Parse(ctx, &model.AnalyzeStepRequest{InputType: model.InputImage, NewInput: &payload})
		require.NoError(t, err)
		assert.Empty(t, intent.Inferred)
	})

	t.Run("vision disabled infers nothing", func(t *testing.T) {
		parser := NewIntentParser(nil, nil, nil)
		payload := base64.StdEncoding.EncodeToString([]byte("photo"))

		intent, err := parser.Parse(ctx, &model.AnalyzeStepRequest{InputType: model.InputImage, NewInput: &payload})
		require.NoError(t, err)
		assert.Empty(t, intent.Inferred)
	})

	t.Run("object key without a photo store", func(t *testing.T) {
		parser := NewIntentParser(nil, nil, nil)
		_, err := parser.Parse(ctx, &model.AnalyzeStepRequest{InputType: model.InputImage, ImageURL: strPtr("photos/a.jpg")})
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})
}

func TestSignalsFromAnalysis(t *testing.T) {
	got := SignalsFromAnalysis(&model.ImageAnalysis{
		PropertyType: "Condo",
		Style:        "Mid-Century Modern",
		Rooms:        map[string]int{"Living Room": 1, "dining_area": 2, "closet": 1},
		Amenities:    []string{"Granite Countertops", "swimming_pool", "stainless_steel", "pool"},
		Materials:    []string{"hardwood floors", "Hardwood_Floors"},
	})

	require.NotNil(t, got.PropertyType)
	assert.Equal(t, model.PropertyTypeCondo, *got.PropertyType)
	require.NotNil(t, got.Style)
	assert.Equal(t, model.StyleModern, *got.Style)

	assert.Equal(t, []model.Amenity{model.AmenityGraniteCounters, model.AmenityPool}, got.Amenities)
	assert.Equal(t, map[model.RoomKind]int{model.RoomLivingRoom: 1, model.RoomDiningRoom: 2}, got.Rooms)
	assert.Equal(t, []model.Material{model.MaterialHardwoodFloors}, got.Materials)

	for _, am := range got.Amenities {
		assert.Equal(t, visionSignalConfidence, got.AmenitiesConfidence[am])
	}
	assert.Len(t, got.RoomsConfidence, len(got.Rooms))

	unknown := SignalsFromAnalysis(&model.ImageAnalysis{PropertyType: "unknown", Style: "unknown"})
	assert.Nil(t, unknown.PropertyType)
	assert.Nil(t, unknown.Style)
}
