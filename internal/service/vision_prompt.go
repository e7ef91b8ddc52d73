package service

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"listingguide/internal/model"
	"listingguide/internal/utils"
)

// DefaultPropertyPrompt asks a vision model for one JSON analysis record
const DefaultPropertyPrompt = `You are analyzing property images for a home seller who is creating a property listing.
This analysis will help them accurately describe their property features, condition, and amenities to attract potential buyers.

Analyze this property image and provide a structured response with the following information:

1. description: A detailed description of what you see in the image (2-3 sentences, highlighting key features that would matter to a buyer)
2. property_type: The type of property (apartment, house, townhouse, condo, etc.)
3. rooms: Count of different room types visible (bedroom, bathroom, kitchen, living_room, dining_room, etc.). Use an empty object for exterior shots.
4. amenities: List of amenities and features visible (pool, fireplace, balcony, garage, dishwasher, etc.)
5. style: Architectural style (modern, traditional, rustic, craftsman, etc.)
6. materials: Building materials and finishes visible (hardwood_floors, granite_counters, tile, carpet, etc.)
7. condition: Overall condition impression (excellent, good, fair, needs_work)

Respond with JSON only, like this example:
{
  "description": "A modern kitchen with granite countertops and stainless steel appliances. The space features ample cabinet storage and appears well-maintained.",
  "property_type": "apartment",
  "rooms": {"kitchen": 1},
  "amenities": ["granite_counters", "stainless_steel", "dishwasher"],
  "style": "modern",
  "materials": ["granite_counters", "stainless_steel", "tile"],
  "condition": "excellent"
}

Be specific and accurate based only on what you can see in the image.`

var errEmptyAnswer = errors.New("vision model returned an empty answer")

// visionRecord is the JSON shape requested from vision models. Room counts are
// decoded loosely because models sometimes quote them.
type visionRecord struct {
	Description  string         `json:"description"`
	PropertyType string         `json:"property_type"`
	Rooms        map[string]any `json:"rooms"`
	Amenities    []string       `json:"amenities"`
	Style        string         `json:"style"`
	Materials    []string       `json:"materials"`
	Condition    string         `json:"condition"`
}

func (r visionRecord) toAnalysis() *model.ImageAnalysis {
	a := &model.ImageAnalysis{
		Description:  strings.TrimSpace(r.Description),
		PropertyType: utils.CanonicalLabel(r.PropertyType),
		Rooms:        map[string]int{},
		Amenities:    canonicalLabels(r.Amenities),
		Style:        utils.CanonicalLabel(r.Style),
		Materials:    canonicalLabels(r.Materials),
		Condition:    model.ParseCondition(r.Condition),
	}
	for kind, raw := range r.Rooms {
		if n, ok := roomCount(raw); ok && n > 0 {
			a.Rooms[utils.CanonicalLabel(kind)] += n
		}
	}
	return a
}

// parseVisionAnswer reads a model answer as a JSON record, falling back to keyword
// extraction over the prose when the model ignored the JSON instruction
func parseVisionAnswer(answer string, extractor *FeatureExtractor) (*model.ImageAnalysis, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, errEmptyAnswer
	}

	var record visionRecord
	if err := utils.ParseModelJSON(answer, &record); err == nil {
		return record.toAnalysis(), nil
	}
	return analysisFromText(answer, extractor), nil
}

// analysisFromText builds an analysis record from free text using the feature extractor
func analysisFromText(text string, extractor *FeatureExtractor) *model.ImageAnalysis {
	if extractor == nil {
		extractor = NewFeatureExtractor(nil, nil)
	}
	f := extractor.Extract(text)

	a := &model.ImageAnalysis{
		Description: text,
		Rooms:       make(map[string]int, len(f.Rooms)),
		Amenities:   make([]string, 0, len(f.Amenities)),
		Materials:   make([]string, 0, len(f.Materials)),
		Condition:   model.ConditionUnknown,
	}
	if f.PropertyType != nil {
		a.PropertyType = string(*f.PropertyType)
	}
	if f.Style != nil {
		a.Style = string(*f.Style)
	}
	for kind, n := range f.Rooms {
		a.Rooms[string(kind)] = n
	}
	for _, am := range f.Amenities {
		a.Amenities = append(a.Amenities, string(am))
	}
	for _, m := range f.Materials {
		a.Materials = append(a.Materials, string(m))
	}
	return a
}

func canonicalLabels(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		label := utils.CanonicalLabel(s)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

func roomCount(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || n < 0 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
