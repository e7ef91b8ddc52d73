package service

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"listingguide/internal/model"
)

// mockScenes are the canned analyses served by MockVision
var mockScenes = map[string]model.ImageAnalysis{
	"kitchen": {
		Description:  "A modern kitchen with granite countertops, stainless steel appliances, and hardwood floors. Features include a dishwasher, refrigerator, and stove.",
		PropertyType: "apartment",
		Rooms:        map[string]int{"kitchen": 1},
		Amenities:    []string{"granite_counters", "stainless_steel", "dishwasher", "refrigerator", "stove", "hardwood_floors"},
		Style:        "modern",
		Materials:    []string{"granite_counters", "stainless_steel", "hardwood_floors"},
	},
	"living_room": {
		Description:  "A spacious living room with hardwood floors, large windows, and a fireplace. The room appears to be in a modern apartment.",
		PropertyType: "apartment",
		Rooms:        map[string]int{"living_room": 1},
		Amenities:    []string{"fireplace", "hardwood_floors"},
		Style:        "modern",
		Materials:    []string{"hardwood_floors"},
	},
	"bedroom": {
		Description:  "A bedroom with hardwood floors and large windows. The room appears clean and well-maintained.",
		PropertyType: "apartment",
		Rooms:        map[string]int{"bedroom": 1},
		Amenities:    []string{"hardwood_floors", "large_window"},
		Style:        "modern",
		Materials:    []string{"hardwood_floors"},
	},
	"bathroom": {
		Description:  "A modern bathroom with tile floors, a bathtub, and updated fixtures. The space is clean and well-lit.",
		PropertyType: "apartment",
		Rooms:        map[string]int{"bathroom": 1},
		Amenities:    []string{"tile_floors", "bathtub", "updated_fixtures"},
		Style:        "modern",
		Materials:    []string{"tile"},
	},
	"dining_room": {
		Description:  "A formal dining room with hardwood floors and a chandelier. The room connects to the kitchen and living areas.",
		PropertyType: "house",
		Rooms:        map[string]int{"dining_room": 1},
		Amenities:    []string{"hardwood_floors", "chandelier"},
		Style:        "traditional",
		Materials:    []string{"hardwood_floors"},
	},
	"exterior": {
		Description:  "A two-story house with vinyl siding, a garage, and a small front yard. The property appears well-maintained.",
		PropertyType: "house",
		Rooms:        map[string]int{},
		Amenities:    []string{"garage", "garden"},
		Style:        "traditional",
		Materials:    []string{"vinyl_siding"},
	},
}

var (
	tallScenes   = []string{"kitchen", "bathroom"}
	squareScenes = []string{"living_room", "bedroom", "dining_room"}
)

// MockVision answers with canned analyses picked from the photo's shape.
// The same bytes always give the same answer.
type MockVision struct{}

// NewMockVision creates the offline vision provider
func NewMockVision() *MockVision {
	return &MockVision{}
}

// Name implements VisionAnalyzer
func (m *MockVision) Name() string { return "mock" }

// Analyze implements VisionAnalyzer
func (m *MockVision) Analyze(ctx context.Context, data []byte) (*model.ImageAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	scene := mockSceneFor(cfg.Width, cfg.Height, data)
	canned := mockScenes[scene]

	result := canned
	result.Rooms = make(map[string]int, len(canned.Rooms))
	for k, v := range canned.Rooms {
		result.Rooms[k] = v
	}
	result.Amenities = append([]string{}, canned.Amenities...)
	result.Materials = append([]string{}, canned.Materials...)
	result.Condition = mockCondition(len(data))
	return &result, nil
}

func mockSceneFor(width, height int, data []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(data)
	pick := h.Sum32()

	switch {
	case float64(width) > float64(height)*1.5:
		return "exterior"
	case float64(height) > float64(width)*1.2:
		return tallScenes[pick%uint32(len(tallScenes))]
	default:
		return squareScenes[pick%uint32(len(squareScenes))]
	}
}

// mockCondition treats larger uploads as better-kept properties
func mockCondition(size int) model.Condition {
	switch {
	case size > 50000:
		return model.ConditionExcellent
	case size > 20000:
		return model.ConditionGood
	default:
		return model.ConditionFair
	}
}
