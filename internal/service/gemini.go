package service

import (
	"context"
	"fmt"

	"listingguide/internal/config"
	"listingguide/internal/model"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiVision analyzes photos with Google Gemini
type GeminiVision struct {
	client    *genai.Client
	model     string
	prompt    string
	extractor *FeatureExtractor
	logger    *zap.Logger
}

// NewGeminiVision creates the provider. An empty prompt selects DefaultPropertyPrompt.
func NewGeminiVision(ctx context.Context, cfg config.GeminiConfig, prompt string, extractor *FeatureExtractor, logger *zap.Logger) (*GeminiVision, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if prompt == "" {
		prompt = DefaultPropertyPrompt
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiVision{
		client:    client,
		model:     cfg.Model,
		prompt:    prompt,
		extractor: extractor,
		logger:    logger,
	}, nil
}

// Name implements VisionAnalyzer
func (g *GeminiVision) Name() string { return "gemini" }

// Analyze implements VisionAnalyzer
func (g *GeminiVision) Analyze(ctx context.Context, data []byte) (*model.ImageAnalysis, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: DetectContentType(data), Data: data}},
			genai.NewPartFromText(g.prompt),
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	analysis, err := parseVisionAnswer(resp.Text(), g.extractor)
	if err != nil {
		return nil, err
	}
	if resp.UsageMetadata != nil {
		g.logger.Debug("gemini vision answer parsed",
			zap.String("model", g.model),
			zap.Int32("tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}
	return analysis, nil
}
