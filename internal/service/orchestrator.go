package service

import (
	"context"
	"math"

	"listingguide/internal/config"
	"listingguide/internal/model"

	"go.uber.org/zap"
)

// OrchestratorOptions tunes the analyze-step flow
type OrchestratorOptions struct {
	ConfidenceThreshold float64
	MaxSuggestions      int
	Locale              string
}

// Orchestrator runs one step of the guided listing flow: interpret the new input,
// merge what it implies into the form, then pick the next fields to ask for
type Orchestrator struct {
	intents   *IntentParser
	catalog   *FieldCatalog
	suggester *FieldSuggester
	opts      OrchestratorOptions
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator over catalog
func NewOrchestrator(intents *IntentParser, catalog *FieldCatalog, opts OrchestratorOptions, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = DefaultFieldCatalog()
	}
	if intents == nil {
		intents = NewIntentParser(nil, nil, logger)
	}
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if opts.Locale == "" {
		opts.Locale = config.LocaleEnglish
	}
	return &Orchestrator{
		intents:   intents,
		catalog:   catalog,
		suggester: NewFieldSuggester(catalog, opts.MaxSuggestions, logger),
		opts:      opts,
		logger:    logger,
	}
}

// Catalog exposes the field catalog the orchestrator suggests from
func (o *Orchestrator) Catalog() *FieldCatalog {
	return o.catalog
}

// AnalyzeStep processes one input. The caller's form state is never modified.
func (o *Orchestrator) AnalyzeStep(ctx context.Context, req *model.AnalyzeStepRequest) (*model.AnalyzeStepResponse, error) {
	intent, err := o.intents.Parse(ctx, req)
	if err != nil {
		return nil, err
	}

	state := make(map[string]any, len(req.CurrentData)+len(intent.Inferred))
	for k, v := range req.CurrentData {
		state[k] = v
	}
	var merged []string
	for k, v := range intent.Inferred {
		if _, filled := state[k]; filled {
			continue
		}
		state[k] = v
		merged = append(merged, k)
	}

	suggestion := o.suggester.Suggest(state, intent.Signals, o.opts.ConfidenceThreshold)

	locale := req.Locale
	if locale == "" {
		locale = o.opts.Locale
	}

	o.logger.Debug("analyze step",
		zap.String("input_type", req.InputType),
		zap.Strings("merged", merged),
		zap.Int("filled", len(state)),
		zap.Int("next_fields", len(suggestion.Fields)),
	)

	return &model.AnalyzeStepResponse{
		ExtractedData:        state,
		UISchema:             suggestion.Fields,
		AIMessage:            GuidanceMessage(locale, state),
		ConfidenceScores:     intent.Confidence,
		Suggestions:          suggestion.Suggestions,
		StepNumber:           len(state),
		CompletionPercentage: o.CompletionPercentage(state),
	}, nil
}

// CompletionPercentage is the share of catalog fields already filled, capped at 100
func (o *Orchestrator) CompletionPercentage(current map[string]any) float64 {
	total := o.catalog.TotalFields(propertyTypeOf(current))
	if total == 0 {
		return 0
	}
	return math.Min(100, 100*float64(len(current))/float64(total))
}
