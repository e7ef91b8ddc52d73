package service

import (
	"sort"
	"strings"

	"listingguide/internal/model"
	"listingguide/internal/utils"

	"go.uber.org/zap"
)

const (
	unknownValue = "unknown"

	openConceptMinKinds = 3
	openConceptMinRooms = 3
)

// exteriorAllowList names the exterior amenities reported as exterior features
var exteriorAllowList = map[string]bool{
	"garage": true, "garden": true, "pool": true, "balcony": true, "patio": true,
	"deck": true, "front_porch": true, "landscaping": true, "landscape": true,
}

// exteriorTriggers derive generic features from exterior photo descriptions
var exteriorTriggers = []struct {
	feature string
	words   []string
}{
	{"outdoor living space", []string{"porch", "patio", "deck", "balcony"}},
	{"landscaping", []string{"garden", "landscaped", "yard", "landscaping"}},
	{"parking", []string{"garage", "driveway", "parking"}},
}

// Synthesizer reconciles per-photo analyses into one property overview
type Synthesizer struct {
	logger *zap.Logger
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{logger: logger}
}

// Synthesize merges analyses into a PropertyOverview. Photos without countable rooms
// are treated as exterior shots. Empty input yields an empty overview.
func (s *Synthesizer) Synthesize(analyses []model.ImageAnalysis) model.PropertyOverview {
	if len(analyses) == 0 {
		return model.PropertyOverview{
			RoomBreakdown:      map[string]int{},
			LayoutType:         model.LayoutUnknown,
			PropertyType:       unknownValue,
			Style:              unknownValue,
			CommonAmenities:    []string{},
			CommonMaterials:    []string{},
			Condition:          model.ConditionUnknown,
			UnifiedDescription: "No images analyzed.",
			InteriorFeatures:   []string{},
			ExteriorFeatures:   []string{},
		}
	}

	var interior, exterior []model.ImageAnalysis
	for _, a := range analyses {
		if a.IsExterior() {
			exterior = append(exterior, a)
		} else {
			interior = append(interior, a)
		}
	}

	openConcept := false
	for _, a := range interior {
		if len(a.Rooms) >= openConceptMinKinds && a.RoomTotal() >= openConceptMinRooms {
			openConcept = true
			break
		}
	}

	overview := model.PropertyOverview{
		RoomBreakdown: map[string]int{},
		LayoutType:    model.LayoutTraditional,
	}
	if openConcept {
		overview.LayoutType = model.LayoutOpenConcept
	}

	// One photo showing several functional areas is a single open space, not several rooms
	singleOpenSpace := openConcept && len(interior) == 1
	if singleOpenSpace {
		overview.TotalRooms = 1
		overview.RoomBreakdown[string(model.RoomOpenConceptSpace)] = 1
		overview.FunctionalAreas = sortedKeys(interior[0].Rooms)
	} else {
		for _, a := range interior {
			for kind, n := range a.Rooms {
				overview.RoomBreakdown[kind] += n
				overview.TotalRooms += n
			}
		}
	}

	amenities := unionSorted(interior, func(a model.ImageAnalysis) []string { return a.Amenities })
	materials := unionSorted(interior, func(a model.ImageAnalysis) []string { return a.Materials })
	overview.CommonAmenities = amenities
	overview.CommonMaterials = materials
	overview.InteriorFeatures = append([]string{}, amenities...)
	overview.ExteriorFeatures = exteriorFeatures(exterior)

	overview.PropertyType = dominantValue(interior, exterior, func(a model.ImageAnalysis) string { return a.PropertyType })
	overview.Style = dominantValue(interior, exterior, func(a model.ImageAnalysis) string { return a.Style })
	overview.Condition = overallCondition(analyses)

	overview.UnifiedDescription = describeProperty(descriptionInput{
		totalRooms:      overview.TotalRooms,
		breakdown:       overview.RoomBreakdown,
		amenities:       amenities,
		materials:       materials,
		propertyType:    overview.PropertyType,
		style:           overview.Style,
		analyses:        analyses,
		layout:          overview.LayoutType,
		exterior:        overview.ExteriorFeatures,
		functionalAreas: overview.FunctionalAreas,
	})

	s.logger.Debug("property synthesized",
		zap.Int("images", len(analyses)),
		zap.Int("interior", len(interior)),
		zap.Int("exterior", len(exterior)),
		zap.String("layout", string(overview.LayoutType)),
		zap.Int("total_rooms", overview.TotalRooms),
	)

	return overview
}

// exteriorFeatures keeps allow-listed exterior amenities in first-seen order and
// falls back to trigger words in the descriptions when none qualify
func exteriorFeatures(exterior []model.ImageAnalysis) []string {
	features := []string{}
	seen := map[string]bool{}
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			features = append(features, f)
		}
	}

	for _, a := range exterior {
		for _, amenity := range a.Amenities {
			key := strings.ToLower(strings.TrimSpace(amenity))
			if exteriorAllowList[key] {
				add(utils.Humanize(key))
			}
		}
	}
	if len(features) > 0 {
		return features
	}

	for _, a := range exterior {
		desc := strings.ToLower(a.Description)
		for _, trigger := range exteriorTriggers {
			for _, w := range trigger.words {
				if strings.Contains(desc, w) {
					add(trigger.feature)
					break
				}
			}
		}
	}
	return features
}

// dominantValue picks the most frequent reported value, preferring interior photos.
// Ties go to the value seen first; "unknown" never wins.
func dominantValue(interior, exterior []model.ImageAnalysis, get func(model.ImageAnalysis) string) string {
	for _, group := range [][]model.ImageAnalysis{interior, exterior} {
		if v := mode(group, get); v != "" {
			return v
		}
	}
	return unknownValue
}

func mode(group []model.ImageAnalysis, get func(model.ImageAnalysis) string) string {
	counts := map[string]int{}
	var order []string
	for _, a := range group {
		v := strings.ToLower(strings.TrimSpace(get(a)))
		if v == "" || v == unknownValue {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// overallCondition returns the shared condition, or mixed when photos disagree
func overallCondition(analyses []model.ImageAnalysis) model.Condition {
	distinct := map[model.Condition]bool{}
	var first model.Condition
	for _, a := range analyses {
		c := a.Condition
		if c == "" {
			c = model.ConditionUnknown
		}
		if len(distinct) == 0 {
			first = c
		}
		distinct[c] = true
	}
	switch len(distinct) {
	case 0:
		return model.ConditionUnknown
	case 1:
		return first
	default:
		return model.ConditionMixed
	}
}

func unionSorted(group []model.ImageAnalysis, get func(model.ImageAnalysis) []string) []string {
	set := map[string]bool{}
	for _, a := range group {
		for _, v := range get(a) {
			if v = strings.TrimSpace(v); v != "" {
				set[v] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
