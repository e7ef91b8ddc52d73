package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Listing represents a saved property listing
type Listing struct {
	ID           int64           `json:"id" db:"id"`
	ListingUUID  string          `json:"listing_uuid" db:"listing_uuid"`
	PropertyType *string         `json:"property_type,omitempty" db:"property_type"`
	Price        *float64        `json:"price,omitempty" db:"price"`
	Bedrooms     *int            `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms    *int            `json:"bathrooms,omitempty" db:"bathrooms"`
	SquareFeet   *int            `json:"square_feet,omitempty" db:"square_feet"`
	Address      *string         `json:"address,omitempty" db:"address"`
	Description  *string         `json:"description,omitempty" db:"description"`
	FormData     JSONMap         `json:"form_data" db:"form_data"`
	Embedding    pgvector.Vector `json:"-" db:"embedding"`
	Distance     *float64        `json:"distance,omitempty" db:"distance"` // Cosine distance in similarity queries
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Images    []ListingImage    `json:"images,omitempty" db:"-"`
	Synthesis *ListingSynthesis `json:"synthesis,omitempty" db:"-"`
}

// SimilarListing is a listing ranked against another one
type SimilarListing struct {
	Listing        Listing  `json:"listing"`
	Score          float64  `json:"score"`
	Similarity     float64  `json:"similarity"`
	MatchedReasons []string `json:"matched_reasons"`
}

// ListingImage is one photo attached to a listing together with its analysis
type ListingImage struct {
	ID          int64         `json:"id" db:"id"`
	ListingID   int64         `json:"listing_id" db:"listing_id"`
	ImageURL    *string       `json:"image_url,omitempty" db:"image_url"`
	ObjectKey   *string       `json:"object_key,omitempty" db:"object_key"`
	ContentType *string       `json:"content_type,omitempty" db:"content_type"`
	Analysis    AnalysisJSON  `json:"analysis" db:"analysis"`
	OrderIndex  int           `json:"order_index" db:"order_index"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	Data        []byte        `json:"-" db:"-"`
	Record      ImageAnalysis `json:"-" db:"-"`
}

// ListingSynthesis is the persisted multi-photo overview of a listing
type ListingSynthesis struct {
	ListingID          int64        `json:"listing_id" db:"listing_id"`
	TotalRooms         int          `json:"total_rooms" db:"total_rooms"`
	LayoutType         string       `json:"layout_type" db:"layout_type"`
	UnifiedDescription string       `json:"unified_description" db:"unified_description"`
	RoomBreakdown      JSONIntMap   `json:"room_breakdown" db:"room_breakdown"`
	PropertyOverview   OverviewJSON `json:"property_overview" db:"property_overview"`
	InteriorFeatures   JSONArray    `json:"interior_features" db:"interior_features"`
	ExteriorFeatures   JSONArray    `json:"exterior_features" db:"exterior_features"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
}

// NewListingSynthesis flattens an overview into its stored form
func NewListingSynthesis(o PropertyOverview) *ListingSynthesis {
	return &ListingSynthesis{
		TotalRooms:         o.TotalRooms,
		LayoutType:         string(o.LayoutType),
		UnifiedDescription: o.UnifiedDescription,
		RoomBreakdown:      JSONIntMap(o.RoomBreakdown),
		PropertyOverview:   OverviewJSON(o),
		InteriorFeatures:   JSONArray(o.InteriorFeatures),
		ExteriorFeatures:   JSONArray(o.ExteriorFeatures),
	}
}

// Description is a free-text property description submitted on its own
type Description struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EmbeddingItem pairs a listing with its freshly computed description vector
type EmbeddingItem struct {
	ListingID int64     `json:"listing_id"`
	Embedding []float32 `json:"embedding"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// JSONIntMap represents a JSON object of counters
type JSONIntMap map[string]int

// Value implements driver.Valuer interface
func (j JSONIntMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONIntMap) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// AnalysisJSON stores an ImageAnalysis in a jsonb column
type AnalysisJSON ImageAnalysis

// Value implements driver.Valuer interface
func (a AnalysisJSON) Value() (driver.Value, error) {
	return json.Marshal(ImageAnalysis(a))
}

// Scan implements sql.Scanner interface
func (a *AnalysisJSON) Scan(value interface{}) error {
	return scanJSON(value, (*ImageAnalysis)(a))
}

// OverviewJSON stores a PropertyOverview in a jsonb column
type OverviewJSON PropertyOverview

// Value implements driver.Valuer interface
func (o OverviewJSON) Value() (driver.Value, error) {
	return json.Marshal(PropertyOverview(o))
}

// Scan implements sql.Scanner interface
func (o *OverviewJSON) Scan(value interface{}) error {
	return scanJSON(value, (*PropertyOverview)(o))
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
