package service

import (
	"testing"

	"listingguide/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interiorShot(rooms map[string]int, amenities ...string) model.ImageAnalysis {
	return model.ImageAnalysis{
		Description:  "interior",
		PropertyType: "house",
		Rooms:        rooms,
		Amenities:    amenities,
		Materials:    []string{},
		Condition:    model.ConditionGood,
	}
}

func TestSynthesizer_Empty(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize(nil)

	assert.Zero(t, got.TotalRooms)
	assert.Equal(t, model.LayoutUnknown, got.LayoutType)
	assert.Contains(t, got.UnifiedDescription, "No images")
	assert.Empty(t, got.RoomBreakdown)
	assert.NotNil(t, got.ExteriorFeatures)
}

func TestSynthesizer_SingleOpenConceptImage(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		interiorShot(map[string]int{"living_room": 1, "kitchen": 1, "dining_area": 1, "office": 1}),
	})

	assert.Equal(t, model.LayoutOpenConcept, got.LayoutType)
	assert.Equal(t, 1, got.TotalRooms)
	assert.Equal(t, map[string]int{"open_concept_space": 1}, got.RoomBreakdown)
	assert.Equal(t, []string{"dining_area", "kitchen", "living_room", "office"}, got.FunctionalAreas)
	assert.Equal(t,
		"This house has 1 open-concept space including Dining Area, Kitchen, Living Room, Office.",
		got.UnifiedDescription)
}

func TestSynthesizer_OpenConceptAcrossImagesDoesNotCollapse(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		interiorShot(map[string]int{"living_room": 1, "kitchen": 1, "dining_area": 1}),
		interiorShot(map[string]int{"bedroom": 2}),
	})

	assert.Equal(t, model.LayoutOpenConcept, got.LayoutType)
	assert.Equal(t, 5, got.TotalRooms)
	assert.Equal(t, 2, got.RoomBreakdown["bedroom"])
	assert.Empty(t, got.FunctionalAreas)
	assert.Contains(t, got.UnifiedDescription, "open-concept layout with 5 distinct areas including")
}

func TestSynthesizer_Traditional(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		interiorShot(map[string]int{"kitchen": 1}),
		interiorShot(map[string]int{"bedroom": 1}),
	})

	assert.Equal(t, model.LayoutTraditional, got.LayoutType)
	assert.Equal(t, 2, got.TotalRooms)
	assert.Equal(t, "This house has 2 rooms: 1 Bedroom, 1 Kitchen.", got.UnifiedDescription)
}

func TestSynthesizer_ExteriorKeptApart(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		interiorShot(map[string]int{"kitchen": 1}, "dishwasher"),
		{Description: "front of the house", Rooms: map[string]int{}, Amenities: []string{"garage", "front_porch", "solar_panels"}},
	})

	assert.Equal(t, 1, got.TotalRooms)
	assert.Equal(t, []string{"garage", "front porch"}, got.ExteriorFeatures)
	assert.Equal(t, []string{"dishwasher"}, got.CommonAmenities)
	assert.NotContains(t, got.CommonAmenities, "garage")
	assert.Contains(t, got.UnifiedDescription, "Exterior features include garage, front porch")
}

func TestSynthesizer_ExteriorTriggerWords(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		{Description: "Wide driveway and a landscaped yard", Rooms: map[string]int{}},
		{Description: "Back patio next to the garden", Rooms: map[string]int{"bedroom": 0}},
	})

	assert.Zero(t, got.TotalRooms)
	assert.Equal(t, []string{"landscaping", "parking", "outdoor living space"}, got.ExteriorFeatures)
	assert.Contains(t, got.UnifiedDescription, "Exterior features include")
}

func TestSynthesizer_NoRoomsNoExterior(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{{Description: "blurry", Rooms: map[string]int{}}})

	assert.Equal(t, "No rooms detected in the provided images.", got.UnifiedDescription)
}

func TestSynthesizer_Condition(t *testing.T) {
	s := NewSynthesizer(nil)

	withCondition := func(conds ...model.Condition) []model.ImageAnalysis {
		out := make([]model.ImageAnalysis, len(conds))
		for i, c := range conds {
			out[i] = interiorShot(map[string]int{"kitchen": 1})
			out[i].Condition = c
		}
		return out
	}

	got := s.Synthesize(withCondition(model.ConditionExcellent, model.ConditionExcellent, model.ConditionExcellent))
	assert.Equal(t, model.ConditionExcellent, got.Condition)

	got = s.Synthesize(withCondition(model.ConditionExcellent, model.ConditionGood, model.ConditionFair))
	assert.Equal(t, model.ConditionMixed, got.Condition)

	got = s.Synthesize(withCondition("", ""))
	assert.Equal(t, model.ConditionUnknown, got.Condition)
}

func TestSynthesizer_DominantValues(t *testing.T) {
	s := NewSynthesizer(nil)

	analyses := []model.ImageAnalysis{
		{PropertyType: "unknown", Style: "", Rooms: map[string]int{"kitchen": 1}},
		{PropertyType: "condo", Style: "Modern", Rooms: map[string]int{"bedroom": 1}},
		{PropertyType: "apartment", Style: "rustic", Rooms: map[string]int{"bathroom": 1}},
		{PropertyType: "apartment", Rooms: map[string]int{"office": 1}},
		{PropertyType: "house", Style: "ranch", Rooms: map[string]int{}},
	}

	got := s.Synthesize(analyses)
	assert.Equal(t, "apartment", got.PropertyType)
	assert.Equal(t, "modern", got.Style)

	exteriorOnly := s.Synthesize([]model.ImageAnalysis{{PropertyType: "house", Rooms: map[string]int{}}})
	assert.Equal(t, "house", exteriorOnly.PropertyType)
	assert.Equal(t, "unknown", exteriorOnly.Style)
}

func TestSynthesizer_AmenityHighlights(t *testing.T) {
	s := NewSynthesizer(nil)

	a := interiorShot(map[string]int{"kitchen": 1}, "hardwood_floors", "granite_counters", "stainless_steel", "skylight", "walk_in_closet", "vaulted_ceiling")
	a.Materials = []string{"hardwood_floors"}
	b := interiorShot(map[string]int{"living_room": 1}, "hardwood_floors", "fireplace")
	b.Style = "craftsman"

	got := s.Synthesize([]model.ImageAnalysis{a, b})

	assert.Equal(t,
		"This house has 2 rooms: 1 Kitchen, 1 Living Room. Features include hardwood floors throughout, "+
			"granite countertops, stainless steel appliances, fireplace, skylight, vaulted ceiling. Overall style: craftsman.",
		got.UnifiedDescription)
}

func TestSynthesizer_HighlightsHaveNoArticle(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		interiorShot(map[string]int{"kitchen": 1}, "dishwasher", "fireplace"),
	})

	assert.Contains(t, got.UnifiedDescription, "Features include fireplace, dishwasher.")
	assert.NotContains(t, got.UnifiedDescription, "a fireplace")
	assert.NotContains(t, got.UnifiedDescription, "a dishwasher")
}

func TestSynthesizer_HardwoodNeedsMajority(t *testing.T) {
	s := NewSynthesizer(nil)

	a := interiorShot(map[string]int{"kitchen": 1}, "hardwood_floors")
	a.Materials = []string{"hardwood_floors"}
	b := interiorShot(map[string]int{"bedroom": 1})

	got := s.Synthesize([]model.ImageAnalysis{a, b})
	assert.NotContains(t, got.UnifiedDescription, "hardwood floors throughout")
}

func TestSynthesizer_FailedPlaceholdersAreExterior(t *testing.T) {
	s := NewSynthesizer(nil)

	got := s.Synthesize([]model.ImageAnalysis{
		interiorShot(map[string]int{"bedroom": 1}),
		model.FailedAnalysis(1, assert.AnError),
	})

	require.Equal(t, 1, got.TotalRooms)
	assert.Equal(t, "house", got.PropertyType)
	assert.Equal(t, model.ConditionMixed, got.Condition)
}
