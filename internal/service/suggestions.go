package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"listingguide/internal/model"

	"go.uber.org/zap"
)

// Suggestion reason constants
const (
	ReasonRequired        = "Required field for complete listing"
	ReasonHighValue       = "High-value field that improves listing quality"
	ReasonPoolDetails     = "Pool detected, need details"
	ReasonParkingDetails  = "Parking confirmed, need details"
	ReasonSelectType      = "Property type determines which fields apply"
	reasonDetectedFormat  = "Detected %s in image/text"
	reasonTypeSpecificFmt = "Important for %s properties"
)

const (
	// DefaultConfidenceThreshold is the minimum detection confidence that makes a feature count
	DefaultConfidenceThreshold = 0.3
	// DefaultMaxSuggestions caps how many fields are shown per step
	DefaultMaxSuggestions = 3

	highConfidence   = 0.7
	highValueOffset  = 3
	contextualOffset = 5
)

var essentialFields = []string{FieldPropertyType, "address", "price", "bedrooms", "bathrooms"}

var typeRequiredFields = map[model.PropertyType][]string{
	model.PropertyTypeHouse:     {"lot_size", "stories"},
	model.PropertyTypeApartment: {"floor_number"},
	model.PropertyTypeCondo:     {"condo_fees"},
}

var highValueFields = []string{"square_feet", "description", "has_parking", "has_pool", "garage", "building_age", "amenities"}

// featureFields maps a detected amenity to the fields worth asking about; order matters
var featureFields = []struct {
	amenity model.Amenity
	fields  []string
}{
	{model.AmenityPool, []string{"has_pool", "pool_type"}},
	{model.AmenityGarage, []string{"has_parking", "garage"}},
	{model.AmenityBalcony, []string{"balcony_type"}},
	{model.AmenityFireplace, []string{"fireplace_type"}},
	{model.AmenityGarden, []string{"garden_type"}},
	{model.AmenityElevator, []string{"elevator_type"}},
	{model.AmenityGym, []string{"gym_type"}},
	{model.AmenitySecurity, []string{"security_system"}},
	{model.AmenityAirConditioning, []string{"ac_type"}},
	{model.AmenityHardwoodFloors, []string{"flooring_type"}},
	{model.AmenityGraniteCounters, []string{"countertop_material"}},
}

var (
	poolDetailFields    = []string{"pool_type", "pool_maintenance"}
	parkingDetailFields = []string{"parking_type", "parking_spaces"}
)

// contextualTypes keeps a fixed iteration order over contextualByType
var contextualTypes = []model.PropertyType{model.PropertyTypeHouse, model.PropertyTypeApartment, model.PropertyTypeCondo}

var contextualByType = map[model.PropertyType][]string{
	model.PropertyTypeHouse:     {"lot_size", "stories", "roof_age", "garage"},
	model.PropertyTypeApartment: {"floor_number", "elevator", "pets_allowed"},
	model.PropertyTypeCondo:     {"condo_fees", "amenities", "building_age"},
}

// SuggestionResult pairs the resolved field definitions with the ranking that chose them
type SuggestionResult struct {
	Fields      []model.FieldDefinition
	Suggestions []model.FieldSuggestion
}

// FieldSuggester ranks missing form fields and picks the next few to ask for
type FieldSuggester struct {
	catalog        *FieldCatalog
	maxSuggestions int
	logger         *zap.Logger
}

// NewFieldSuggester creates a suggester backed by catalog
func NewFieldSuggester(catalog *FieldCatalog, maxSuggestions int, logger *zap.Logger) *FieldSuggester {
	if catalog == nil {
		catalog = DefaultFieldCatalog()
	}
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FieldSuggester{catalog: catalog, maxSuggestions: maxSuggestions, logger: logger}
}

// Suggest returns at most maxSuggestions fields that are not yet present in current.
// Until property_type is known it is the only suggestion.
func (s *FieldSuggester) Suggest(current map[string]any, detected *model.ExtractedFeatures, threshold float64) SuggestionResult {
	pt := propertyTypeOf(current)

	if _, ok := current[FieldPropertyType]; !ok {
		def, _ := s.catalog.Resolve(FieldPropertyType, pt)
		def.Required = true
		return SuggestionResult{
			Fields: []model.FieldDefinition{def},
			Suggestions: []model.FieldSuggestion{{
				FieldID:    FieldPropertyType,
				Priority:   1,
				Category:   model.CategoryRequired,
				Confidence: 1.0,
				Reason:     ReasonSelectType,
			}},
		}
	}

	ranked := s.Rank(current, detected, threshold)
	if len(ranked) > s.maxSuggestions {
		ranked = ranked[:s.maxSuggestions]
	}

	result := SuggestionResult{
		Fields:      make([]model.FieldDefinition, 0, len(ranked)),
		Suggestions: make([]model.FieldSuggestion, 0, len(ranked)),
	}
	for _, sug := range ranked {
		def, ok := s.catalog.Resolve(sug.FieldID, pt)
		if !ok {
			s.logger.Debug("dropping unresolvable field", zap.String("field_id", sug.FieldID))
			continue
		}
		result.Fields = append(result.Fields, def)
		result.Suggestions = append(result.Suggestions, sug)
	}

	s.logger.Debug("field suggestions generated",
		zap.String("property_type", string(pt)),
		zap.Int("filled", len(current)),
		zap.Int("suggested", len(result.Fields)),
	)
	return result
}

// Rank scores every missing candidate field, best first
func (s *FieldSuggester) Rank(current map[string]any, detected *model.ExtractedFeatures, threshold float64) []model.FieldSuggestion {
	pt := propertyTypeOf(current)
	ranked := []model.FieldSuggestion{}

	for _, field := range candidateFields(current, pt) {
		det, hasDet := detectedFeatureFor(field, detected, threshold)

		switch {
		case hasDet && det.confidence >= highConfidence:
			ranked = append(ranked, model.FieldSuggestion{
				FieldID: field, Priority: 1, Category: model.CategoryDetected,
				Confidence: det.confidence, Reason: fmt.Sprintf(reasonDetectedFormat, det.amenity),
			})
		case isRequiredField(field, pt):
			ranked = append(ranked, model.FieldSuggestion{
				FieldID: field, Priority: 2, Category: model.CategoryRequired,
				Confidence: 1.0, Reason: ReasonRequired,
			})
		case hasDet:
			ranked = append(ranked, model.FieldSuggestion{
				FieldID: field, Priority: 3, Category: model.CategoryDetected,
				Confidence: det.confidence, Reason: fmt.Sprintf(reasonDetectedFormat, det.amenity),
			})
		case contains(highValueFields, field):
			ranked = append(ranked, model.FieldSuggestion{
				FieldID: field, Priority: highValuePriority(field, len(current)) + highValueOffset,
				Category: model.CategoryHighValue, Confidence: 1.0, Reason: ReasonHighValue,
			})
		default:
			if priority, reason, ok := contextualPriority(field, current, pt); ok {
				ranked = append(ranked, model.FieldSuggestion{
					FieldID: field, Priority: priority + contextualOffset,
					Category: model.CategoryContextual, Confidence: 1.0, Reason: reason,
				})
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority < ranked[j].Priority
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// candidateFields lists every possible field in a fixed order, minus those already filled
func candidateFields(current map[string]any, pt model.PropertyType) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(fields ...string) {
		for _, f := range fields {
			if seen[f] {
				continue
			}
			seen[f] = true
			if _, filled := current[f]; !filled {
				out = append(out, f)
			}
		}
	}

	add(essentialFields...)
	add(typeRequiredFields[pt]...)
	add(highValueFields...)
	for _, ff := range featureFields {
		add(ff.fields...)
	}
	add(poolDetailFields...)
	add(parkingDetailFields...)
	for _, t := range contextualTypes {
		add(contextualByType[t]...)
	}
	return out
}

type detectedFeature struct {
	amenity    model.Amenity
	confidence float64
}

func detectedFeatureFor(field string, detected *model.ExtractedFeatures, threshold float64) (detectedFeature, bool) {
	if detected == nil {
		return detectedFeature{}, false
	}
	for _, ff := range featureFields {
		if !contains(ff.fields, field) || !detected.HasAmenity(ff.amenity) {
			continue
		}
		conf := detected.AmenitiesConfidence[ff.amenity]
		if conf >= threshold {
			return detectedFeature{amenity: ff.amenity, confidence: conf}, true
		}
	}
	return detectedFeature{}, false
}

func isRequiredField(field string, pt model.PropertyType) bool {
	return contains(essentialFields, field) || contains(typeRequiredFields[pt], field)
}

// highValuePriority ranks description later while the form is still mostly empty
func highValuePriority(field string, filled int) int {
	switch field {
	case "price", "square_feet":
		return 3
	case "description":
		switch {
		case filled >= 5:
			return 4
		case filled >= 3:
			return 6
		default:
			return 8
		}
	default:
		return 5
	}
}

func contextualPriority(field string, current map[string]any, pt model.PropertyType) (int, string, bool) {
	if fields, ok := contextualByType[pt]; ok {
		for i, f := range fields {
			if f == field {
				return 2 + i, fmt.Sprintf(reasonTypeSpecificFmt, pt), true
			}
		}
	}
	if contains(poolDetailFields, field) && truthy(current["has_pool"]) {
		return 2, ReasonPoolDetails, true
	}
	if contains(parkingDetailFields, field) && truthy(current["has_parking"]) {
		return 3, ReasonParkingDetails, true
	}
	return 0, "", false
}

// propertyTypeOf reads the property type from form state
func propertyTypeOf(current map[string]any) model.PropertyType {
	v, ok := current[FieldPropertyType].(string)
	if !ok {
		return ""
	}
	return model.PropertyType(strings.ToLower(strings.TrimSpace(v)))
}

// truthy interprets a form value as a boolean
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
