package service

import (
	"context"
	"errors"
	"strings"

	"listingguide/internal/model"
	"listingguide/internal/utils"

	"go.uber.org/zap"
)

// visionSignalConfidence is assigned to everything a vision model reports
const visionSignalConfidence = 0.8

// StepIntent is what a single analyze-step input contributes to the form
type StepIntent struct {
	// Inferred holds field values to merge into the form where still missing
	Inferred   map[string]any
	Signals    *model.ExtractedFeatures
	Confidence map[string]float64
	Analysis   *model.ImageAnalysis
}

func emptyIntent() *StepIntent {
	return &StepIntent{
		Inferred:   map[string]any{},
		Confidence: map[string]float64{},
	}
}

// IntentParser turns text, photo or field-update inputs into inferred form values
type IntentParser struct {
	extractor *FeatureExtractor
	images    *ImageAnalyzer
	logger    *zap.Logger
}

// NewIntentParser creates a parser. images may be nil, in which case photo inputs infer nothing.
func NewIntentParser(extractor *FeatureExtractor, images *ImageAnalyzer, logger *zap.Logger) *IntentParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractor == nil {
		extractor = NewFeatureExtractor(nil, logger)
	}
	return &IntentParser{extractor: extractor, images: images, logger: logger}
}

// Parse interprets the new input of a step. Only malformed photo payloads are errors;
// a vision failure leaves the step without inferred values.
func (p *IntentParser) Parse(ctx context.Context, req *model.AnalyzeStepRequest) (*StepIntent, error) {
	switch req.InputType {
	case model.InputText:
		if req.NewInput == nil || strings.TrimSpace(*req.NewInput) == "" {
			return emptyIntent(), nil
		}
		return p.fromText(*req.NewInput), nil
	case model.InputImage:
		return p.fromImage(ctx, req)
	default:
		return emptyIntent(), nil
	}
}

func (p *IntentParser) fromText(text string) *StepIntent {
	features := p.extractor.Extract(text)
	intent := intentFromFeatures(&features)
	intent.Inferred["description"] = strings.TrimSpace(text)
	intent.Confidence["description"] = 1.0
	return intent
}

func (p *IntentParser) fromImage(ctx context.Context, req *model.AnalyzeStepRequest) (*StepIntent, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case req.NewInput != nil && strings.TrimSpace(*req.NewInput) != "":
		data, err = DecodeImage(*req.NewInput)
	case req.ImageURL != nil && *req.ImageURL != "":
		data, err = p.images.LoadImage(ctx, *req.ImageURL)
	default:
		return emptyIntent(), nil
	}
	if err != nil {
		return nil, err
	}

	analysis, err := p.images.AnalyzeOne(ctx, 0, data)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			return nil, err
		}
		p.logger.Warn("photo step continues without vision signals", zap.Error(err))
		return emptyIntent(), nil
	}

	signals := SignalsFromAnalysis(&analysis)
	intent := intentFromFeatures(&signals)
	intent.Analysis = &analysis
	return intent, nil
}

// intentFromFeatures maps detected signals onto the form fields they answer
func intentFromFeatures(f *model.ExtractedFeatures) *StepIntent {
	intent := emptyIntent()
	intent.Signals = f

	if f.PropertyType != nil {
		intent.Inferred[FieldPropertyType] = string(*f.PropertyType)
		intent.Confidence[FieldPropertyType] = f.PropertyTypeConfidence
	}
	for field, kind := range map[string]model.RoomKind{"bedrooms": model.RoomBedroom, "bathrooms": model.RoomBathroom} {
		if n, ok := f.Rooms[kind]; ok {
			intent.Inferred[field] = n
			intent.Confidence[field] = f.RoomsConfidence[kind]
		}
	}
	if f.HasAmenity(model.AmenityPool) {
		intent.Inferred["has_pool"] = true
		intent.Confidence["has_pool"] = f.AmenitiesConfidence[model.AmenityPool]
	}
	if f.HasAmenity(model.AmenityGarage) {
		intent.Inferred["has_parking"] = true
		intent.Confidence["has_parking"] = f.AmenitiesConfidence[model.AmenityGarage]
	}
	return intent
}

// SignalsFromAnalysis converts a vision record into the signal bundle the field
// suggester consumes. Free-form labels are folded onto the known enums; labels
// nothing matches are dropped.
func SignalsFromAnalysis(a *model.ImageAnalysis) model.ExtractedFeatures {
	f := model.NewExtractedFeatures()
	if a == nil {
		return f
	}

	if pt, ok := normalizePropertyType(a.PropertyType); ok {
		f.PropertyType = &pt
		f.PropertyTypeConfidence = visionSignalConfidence
	}
	if style, ok := normalizeLabel(a.Style, styleKeywords); ok {
		f.Style = &style
		f.StyleConfidence = visionSignalConfidence
	}

	for _, label := range a.Amenities {
		am, ok := normalizeLabel(label, amenityKeywords)
		if !ok || f.HasAmenity(am) {
			continue
		}
		f.Amenities = append(f.Amenities, am)
		f.AmenitiesConfidence[am] = visionSignalConfidence
	}
	for _, label := range a.Materials {
		m, ok := normalizeLabel(label, materialKeywords)
		if !ok {
			continue
		}
		if _, dup := f.MaterialsConfidence[m]; dup {
			continue
		}
		f.Materials = append(f.Materials, m)
		f.MaterialsConfidence[m] = visionSignalConfidence
	}
	for label, n := range a.Rooms {
		kind, ok := normalizeLabel(label, roomKeywords)
		if !ok || n <= 0 {
			continue
		}
		f.Rooms[kind] += n
		f.RoomsConfidence[kind] = visionSignalConfidence
	}
	return f
}

// normalizePropertyType keeps any known type as reported, so "condo" stays a condo
// instead of folding into the apartment keywords
func normalizePropertyType(label string) (model.PropertyType, bool) {
	if pt := model.PropertyType(utils.CanonicalLabel(label)); pt.IsValid() {
		return pt, true
	}
	return normalizeLabel(label, propertyTypeKeywords)
}

// normalizeLabel finds the table entry a label names: the canonical value itself
// first, then any surface keyword, in declaration order
func normalizeLabel[T ~string](label string, table []keywordEntry[T]) (T, bool) {
	canonical := utils.CanonicalLabel(label)
	if canonical == "" || canonical == unknownValue {
		return "", false
	}
	for _, entry := range table {
		if string(entry.Value) == canonical {
			return entry.Value, true
		}
	}
	for _, entry := range table {
		for _, kw := range entry.Keywords {
			if utils.FuzzyMatch(kw, canonical) {
				return entry.Value, true
			}
		}
	}
	return "", false
}
