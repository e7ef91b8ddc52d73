package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"listingguide/internal/model"

	"go.uber.org/zap"
)

const (
	// Minimum score for an amenity or material to be accepted
	multiValueThreshold = 0.1
	// Townhouse wins over house only with at least this share of the house score
	townhouseRatio = 0.7
	// Whole-word property type keywords weigh more than substrings
	exactWordBonus = 1.5
)

// FeatureExtractor turns free-text descriptions into typed, confidence-scored attributes.
// It holds only read-only tables and is safe for concurrent use.
type FeatureExtractor struct {
	scorer Scorer
	rooms  []roomMatcher
	logger *zap.Logger
}

type roomMatcher struct {
	kind     model.RoomKind
	keywords []roomKeyword
}

type roomKeyword struct {
	keyword  string
	patterns []*regexp.Regexp
}

// NewFeatureExtractor creates an extractor. A nil scorer means substring matching.
func NewFeatureExtractor(scorer Scorer, logger *zap.Logger) *FeatureExtractor {
	if scorer == nil {
		scorer = SubstringScorer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rooms := make([]roomMatcher, 0, len(roomKeywords))
	for _, entry := range roomKeywords {
		m := roomMatcher{kind: entry.Value}
		for _, kw := range entry.Keywords {
			q := regexp.QuoteMeta(kw)
			m.keywords = append(m.keywords, roomKeyword{
				keyword: kw,
				patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)(\d+)\s*` + q), // "3 bedroom"
					regexp.MustCompile(`(?i)(\d+)-` + q),   // "3-bedroom"
					regexp.MustCompile(`(?i)` + q + `\s*(\d+)`),
				},
			})
		}
		rooms = append(rooms, m)
	}

	return &FeatureExtractor{scorer: scorer, rooms: rooms, logger: logger}
}

// Extract pulls property type, amenities, style, room counts and materials out of text.
// Empty input yields an empty result.
func (e *FeatureExtractor) Extract(text string) model.ExtractedFeatures {
	features := model.NewExtractedFeatures()
	if strings.TrimSpace(text) == "" {
		return features
	}

	lower := strings.ToLower(text)
	textLen := float64(utf8.RuneCountInString(lower))

	if pt, conf, ok := e.extractPropertyType(lower, textLen); ok {
		features.PropertyType = &pt
		features.PropertyTypeConfidence = conf
	}

	features.Amenities, features.AmenitiesConfidence = extractMulti(e, lower, textLen, amenityKeywords)

	if style, conf, ok := bestOf(e, lower, textLen, styleKeywords); ok {
		features.Style = &style
		features.StyleConfidence = conf
	}

	e.extractRooms(lower, textLen, &features)

	features.Materials, features.MaterialsConfidence = extractMulti(e, lower, textLen, materialKeywords)

	e.logger.Debug("features extracted",
		zap.Int("text_len", int(textLen)),
		zap.Int("amenities", len(features.Amenities)),
		zap.Int("rooms", len(features.Rooms)),
		zap.Int("materials", len(features.Materials)),
	)

	return features
}

// score sums len(kw)/len(text)*100 over matched keywords, capped at 1
func (e *FeatureExtractor) score(text string, textLen float64, keywords []string) float64 {
	total := 0.0
	for _, kw := range keywords {
		if e.scorer.Matches(text, kw) {
			total += float64(utf8.RuneCountInString(kw)) / textLen * 100
		}
	}
	return math.Min(total, 1.0)
}

func extractMulti[T ~string](e *FeatureExtractor, text string, textLen float64, table []keywordEntry[T]) ([]T, map[T]float64) {
	found := []T{}
	conf := map[T]float64{}
	for _, entry := range table {
		s := e.score(text, textLen, entry.Keywords)
		if s > multiValueThreshold {
			found = append(found, entry.Value)
			conf[entry.Value] = s
		}
	}
	return found, conf
}

// bestOf returns the highest scoring entry; ties keep the earliest declared entry
func bestOf[T ~string](e *FeatureExtractor, text string, textLen float64, table []keywordEntry[T]) (T, float64, bool) {
	var best T
	bestScore := 0.0
	found := false
	for _, entry := range table {
		s := e.score(text, textLen, entry.Keywords)
		if s > 0 && s > bestScore {
			best, bestScore, found = entry.Value, s, true
		}
	}
	return best, bestScore, found
}

func (e *FeatureExtractor) extractPropertyType(text string, textLen float64) (model.PropertyType, float64, bool) {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		words[w] = struct{}{}
	}

	scores := make(map[model.PropertyType]float64)
	for _, entry := range propertyTypeKeywords {
		total := 0.0
		for _, kw := range entry.Keywords {
			if !e.scorer.Matches(text, kw) {
				continue
			}
			s := float64(utf8.RuneCountInString(kw)) / textLen
			if _, exact := words[kw]; exact {
				s *= exactWordBonus
			}
			total += s
		}
		if total > 0 {
			scores[entry.Value] = math.Min(total, 1.0)
		}
	}

	// "townhouse" contains "house", so an explicit mention is needed to prefer it
	townScore, hasTown := scores[model.PropertyTypeTownhouse]
	houseScore, hasHouse := scores[model.PropertyTypeHouse]
	if hasTown && hasHouse {
		explicit := strings.Contains(text, "townhouse") || strings.Contains(text, "townhome")
		if explicit && townScore >= houseScore*townhouseRatio {
			return model.PropertyTypeTownhouse, townScore, true
		}
		return model.PropertyTypeHouse, houseScore, true
	}

	var best model.PropertyType
	bestScore := 0.0
	for _, entry := range propertyTypeKeywords {
		if s, ok := scores[entry.Value]; ok && s > bestScore {
			best, bestScore = entry.Value, s
		}
	}
	return best, bestScore, bestScore > 0
}

func (e *FeatureExtractor) extractRooms(text string, textLen float64, features *model.ExtractedFeatures) {
	for _, room := range e.rooms {
		for _, kw := range room.keywords {
			count, matched := kw.count(text)
			if !matched {
				continue
			}
			// First keyword with a numeric match decides the kind, even when the count is zero
			if count > 0 {
				features.Rooms[room.kind] = count
				features.RoomsConfidence[room.kind] = math.Min(float64(utf8.RuneCountInString(kw.keyword))/textLen, 1.0)
			}
			break
		}
	}
}

// count returns the largest number found by the first pattern that yields one
func (k roomKeyword) count(text string) (int, bool) {
	for _, p := range k.patterns {
		matches := p.FindAllStringSubmatch(text, -1)
		best, parsed := 0, false
		for _, m := range matches {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if !parsed || n > best {
				best, parsed = n, true
			}
		}
		if parsed {
			return best, true
		}
	}
	return 0, false
}
