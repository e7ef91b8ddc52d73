package service

import (
	"context"
	"fmt"

	"listingguide/internal/config"

	"go.uber.org/zap"
)

// Embedder produces vectors for listing descriptions
type Embedder interface {
	// CreateEmbeddings returns one vector per text, in order
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled returns whether the provider is configured and ready
	IsEnabled() bool
}

// Ensure OpenAIClient implements Embedder
var _ Embedder = (*OpenAIClient)(nil)

// Ensure every provider implements VisionAnalyzer
var (
	_ VisionAnalyzer = (*MockVision)(nil)
	_ VisionAnalyzer = (*OpenAIVision)(nil)
	_ VisionAnalyzer = (*GeminiVision)(nil)
)

// NewVisionAnalyzer builds the provider selected by cfg.Vision.Provider
func NewVisionAnalyzer(ctx context.Context, cfg *config.Config, openai *OpenAIClient, extractor *FeatureExtractor, logger *zap.Logger) (VisionAnalyzer, error) {
	switch cfg.Vision.Provider {
	case config.VisionMock, "":
		return NewMockVision(), nil
	case config.VisionOpenAI:
		if !openai.IsEnabled() {
			return nil, fmt.Errorf("openai vision selected but OPENAI_API_KEY is empty")
		}
		return NewOpenAIVision(openai, cfg.Vision.Prompt, extractor, logger), nil
	case config.VisionGemini:
		return NewGeminiVision(ctx, cfg.Gemini, cfg.Vision.Prompt, extractor, logger)
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Vision.Provider)
	}
}
