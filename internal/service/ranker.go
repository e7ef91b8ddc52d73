package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"listingguide/internal/model"
)

// Match reason constants
const (
	ReasonSameType         = "Same property type"
	ReasonBedroomsMatch    = "Bedrooms match"
	ReasonBathroomsMatch   = "Bathrooms match"
	ReasonSimilarPrice     = "Similar price"
	ReasonSimilarSize      = "Similar size"
	ReasonSimilarDescribed = "Similar description"
	ReasonNewlyListed      = "Newly listed"
	ReasonGeneralMatch     = "General match"
)

const (
	priceTolerance = 0.15
	sizeTolerance  = 0.15
)

// Ranker re-scores vector-search neighbours of a listing
type Ranker struct {
	weightSimilarity float64
	weightPrice      float64
	weightRecency    float64
	now              func() time.Time
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightSimilarity, weightPrice, weightRecency float64) *Ranker {
	return &Ranker{
		weightSimilarity: weightSimilarity,
		weightPrice:      weightPrice,
		weightRecency:    weightRecency,
		now:              time.Now,
	}
}

// DefaultRanker weights embedding similarity highest
func DefaultRanker() *Ranker {
	return NewRanker(0.7, 0.2, 0.1)
}

// Rank scores candidates against source, best first
func (r *Ranker) Rank(source *model.Listing, candidates []model.Listing) []model.SimilarListing {
	results := make([]model.SimilarListing, 0, len(candidates))

	for _, c := range candidates {
		similarity := similarityFromDistance(c.Distance)
		priceScore := r.calculatePriceScore(source.Price, c.Price)
		recencyScore := r.calculateRecencyScore(c.CreatedAt)

		results = append(results, model.SimilarListing{
			Listing:    c,
			Similarity: similarity,
			Score: (r.weightSimilarity * similarity) +
				(r.weightPrice * priceScore) +
				(r.weightRecency * recencyScore),
			MatchedReasons: r.generateMatchedReasons(source, c, similarity),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// similarityFromDistance maps pgvector cosine distance [0,2] onto [0,1]
func similarityFromDistance(distance *float64) float64 {
	if distance == nil {
		return 0
	}
	return clamp01(1 - *distance/2)
}

// calculatePriceScore is 1 for equal prices and falls off with the relative difference
func (r *Ranker) calculatePriceScore(source, candidate *float64) float64 {
	if source == nil || candidate == nil || *source <= 0 {
		return 0.5 // Neutral score if either price is unknown
	}
	diff := math.Abs(*candidate-*source) / *source
	return clamp01(1 - diff)
}

// calculateRecencyScore decays with listing age
func (r *Ranker) calculateRecencyScore(created time.Time) float64 {
	if created.IsZero() {
		return 0.5
	}
	days := r.now().Sub(created).Hours() / 24
	// After 30 days: ~0.74, after 90 days: ~0.41
	return clamp01(math.Exp(-0.01 * days))
}

func (r *Ranker) generateMatchedReasons(source *model.Listing, c model.Listing, similarity float64) []string {
	reasons := []string{}

	if source.PropertyType != nil && c.PropertyType != nil && strings.EqualFold(*source.PropertyType, *c.PropertyType) {
		reasons = append(reasons, ReasonSameType)
	}
	if source.Bedrooms != nil && c.Bedrooms != nil && *source.Bedrooms == *c.Bedrooms {
		reasons = append(reasons, ReasonBedroomsMatch)
	}
	if source.Bathrooms != nil && c.Bathrooms != nil && *source.Bathrooms == *c.Bathrooms {
		reasons = append(reasons, ReasonBathroomsMatch)
	}
	if withinTolerance(source.Price, c.Price, priceTolerance) {
		reasons = append(reasons, ReasonSimilarPrice)
	}
	if source.SquareFeet != nil && c.SquareFeet != nil {
		s, cs := float64(*source.SquareFeet), float64(*c.SquareFeet)
		if withinTolerance(&s, &cs, sizeTolerance) {
			reasons = append(reasons, ReasonSimilarSize)
		}
	}
	if similarity >= 0.9 {
		reasons = append(reasons, ReasonSimilarDescribed)
	}
	if !c.CreatedAt.IsZero() && r.now().Sub(c.CreatedAt) < 7*24*time.Hour {
		reasons = append(reasons, ReasonNewlyListed)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}

func withinTolerance(a, b *float64, tolerance float64) bool {
	if a == nil || b == nil || *a <= 0 {
		return false
	}
	return math.Abs(*b-*a) / *a <= tolerance
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
