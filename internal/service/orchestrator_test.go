package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"listingguide/internal/config"
	"listingguide/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(locale string) *Orchestrator {
	images := NewImageAnalyzer(NewMockVision(), nil, nil, nil, ImageAnalyzerOptions{}, nil)
	return NewOrchestrator(NewIntentParser(nil, images, nil), nil, OrchestratorOptions{Locale: locale}, nil)
}

func TestOrchestrator_EmptyForm(t *testing.T) {
	o := newTestOrchestrator(config.LocaleEnglish)

	resp, err := o.AnalyzeStep(context.Background(), &model.AnalyzeStepRequest{InputType: model.InputFieldUpdate})
	require.NoError(t, err)

	require.Len(t, resp.UISchema, 1)
	assert.Equal(t, FieldPropertyType, resp.UISchema[0].ID)
	assert.True(t, resp.UISchema[0].Required)
	assert.Equal(t, "Let's start by identifying what type of property you're listing.", resp.AIMessage)
	assert.Equal(t, 0, resp.StepNumber)
	assert.Zero(t, resp.CompletionPercentage)
	assert.NotNil(t, resp.ExtractedData)
}

func TestOrchestrator_TextStep(t *testing.T) {
	o := newTestOrchestrator(config.LocaleEnglish)
	current := map[string]any{"bedrooms": 5}

	resp, err := o.AnalyzeStep(context.Background(), &model.AnalyzeStepRequest{
		CurrentData: current,
		InputType:   model.InputText,
		NewInput:    strPtr("Spacious house with 3 bedrooms, 2 bathrooms and a swimming pool."),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, resp.ExtractedData["bedrooms"], "filled fields are never overwritten")
	assert.Equal(t, "house", resp.ExtractedData["property_type"])
	assert.Equal(t, 2, resp.ExtractedData["bathrooms"])
	assert.Equal(t, true, resp.ExtractedData["has_pool"])
	assert.Contains(t, resp.ExtractedData, "description")
	assert.Equal(t, map[string]any{"bedrooms": 5}, current, "caller state untouched")

	require.NotEmpty(t, resp.UISchema)
	assert.LessOrEqual(t, len(resp.UISchema), 3)
	assert.Equal(t, "pool_type", resp.UISchema[0].ID)
	for _, f := range resp.UISchema {
		assert.NotContains(t, resp.ExtractedData, f.ID)
	}
	assert.Len(t, resp.Suggestions, len(resp.UISchema))

	assert.Equal(t, 5, resp.StepNumber)
	assert.Equal(t, "Almost done! Let me help you complete the final information.", resp.AIMessage)
	assert.InDelta(t, 100.0*5/12, resp.CompletionPercentage, 0.001)
}

func TestOrchestrator_ImageStep(t *testing.T) {
	o := newTestOrchestrator(config.LocaleEnglish)
	payload := base64.StdEncoding.EncodeToString(pngOf(t, 300, 100))

	resp, err := o.AnalyzeStep(context.Background(), &model.AnalyzeStepRequest{
		CurrentData: map[string]any{},
		InputType:   model.InputImage,
		NewInput:    &payload,
	})
	require.NoError(t, err)

	assert.Equal(t, "house", resp.ExtractedData["property_type"])
	assert.Equal(t, true, resp.ExtractedData["has_parking"])
	assert.Equal(t, visionSignalConfidence, resp.ConfidenceScores["has_parking"])
	assert.Equal(t, "Great! I can see this is a house. Let's continue with the essential details.", resp.AIMessage)
}

func TestOrchestrator_InvalidImage(t *testing.T) {
	o := newTestOrchestrator(config.LocaleEnglish)
	_, err := o.AnalyzeStep(context.Background(), &model.AnalyzeStepRequest{
		InputType: model.InputImage,
		NewInput:  strPtr("not//base64!"),
	})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestOrchestrator_Locale(t *testing.T) {
	o := newTestOrchestrator(config.LocaleRomanian)
	ctx := context.Background()
	current := map[string]any{"property_type": "apartment"}

	ro, err := o.AnalyzeStep(ctx, &model.AnalyzeStepRequest{CurrentData: current, InputType: model.InputFieldUpdate})
	require.NoError(t, err)
	assert.Equal(t, "Excelent! Am identificat că este vorba despre un apartament. Să continuăm cu detaliile esențiale.", ro.AIMessage)

	en, err := o.AnalyzeStep(ctx, &model.AnalyzeStepRequest{CurrentData: current, InputType: model.InputFieldUpdate, Locale: config.LocaleEnglish})
	require.NoError(t, err)
	assert.Equal(t, "Great! I can see this is an apartment. Let's continue with the essential details.", en.AIMessage)
}

func TestGuidanceMessage_Buckets(t *testing.T) {
	form := func(n int) map[string]any {
		m := map[string]any{"property_type": "house"}
		for i := 1; i < n; i++ {
			m[fmt.Sprintf("field_%d", i)] = i
		}
		return m
	}

	tests := []struct {
		name    string
		current map[string]any
		want    string
	}{
		{"no property type", map[string]any{"bedrooms": 2}, "Să începem prin a identifica ce tip de proprietate afișați."},
		{"blank property type", map[string]any{"property_type": ""}, "Să începem prin a identifica ce tip de proprietate afișați."},
		{"early", form(2), "Excelent! Am identificat că este vorba despre un casă. Să continuăm cu detaliile esențiale."},
		{"middle", form(4), "Faceți progrese bune! Încă câteva detalii cheie pentru anunțul dvs."},
		{"late", form(6), "Aproape gata! Permiteți-mi să completez informațiile finale."},
		{"complete", form(7), "Perfect! Ați completat toate informațiile necesare. Sunteți gata să previzualizați și să salvați anunțul?"},
		{"untranslated type", map[string]any{"property_type": "villa"}, "Excelent! Am identificat că este vorba despre un villa. Să continuăm cu detaliile esențiale."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuidanceMessage(config.LocaleRomanian, tt.current))
		})
	}

	assert.Equal(t, GuidanceMessage(config.LocaleEnglish, form(4)), GuidanceMessage("fr", form(4)))
}

func TestOrchestrator_CompletionPercentage(t *testing.T) {
	o := newTestOrchestrator(config.LocaleEnglish)

	assert.InDelta(t, 100.0/12, o.CompletionPercentage(map[string]any{"property_type": "house"}), 0.001)
	assert.InDelta(t, 200.0/10, o.CompletionPercentage(map[string]any{"property_type": "condo", "price": 1}), 0.001)

	full := map[string]any{"property_type": "land"}
	for i := 0; i < 30; i++ {
		full[fmt.Sprintf("f%d", i)] = i
	}
	assert.Equal(t, 100.0, o.CompletionPercentage(full))
}
