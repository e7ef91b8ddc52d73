package model

import "strconv"

// ImageAnalysis is the per-photo record produced by a vision collaborator
type ImageAnalysis struct {
	ImageIndex   int            `json:"image_index"`
	Description  string         `json:"description"`
	PropertyType string         `json:"property_type,omitempty"`
	Rooms        map[string]int `json:"rooms"`
	Amenities    []string       `json:"amenities"`
	Style        string         `json:"style,omitempty"`
	Materials    []string       `json:"materials"`
	Condition    Condition      `json:"condition,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// RoomTotal sums the room counts of the analysis
func (a *ImageAnalysis) RoomTotal() int {
	total := 0
	for _, n := range a.Rooms {
		total += n
	}
	return total
}

// IsExterior reports whether the photo shows no countable rooms
func (a *ImageAnalysis) IsExterior() bool {
	return len(a.Rooms) == 0 || a.RoomTotal() == 0
}

// FailedAnalysis builds the placeholder used when a photo could not be analyzed
func FailedAnalysis(index int, err error) ImageAnalysis {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ImageAnalysis{
		ImageIndex:   index,
		Description:  "Analysis failed for image " + strconv.Itoa(index),
		PropertyType: "unknown",
		Rooms:        map[string]int{},
		Amenities:    []string{},
		Style:        "unknown",
		Materials:    []string{},
		Condition:    ConditionUnknown,
		Error:        msg,
	}
}

// PropertyOverview is the property-level summary reconciled from several photo analyses
type PropertyOverview struct {
	TotalRooms         int            `json:"total_rooms"`
	RoomBreakdown      map[string]int `json:"room_breakdown"`
	LayoutType         LayoutType     `json:"layout_type"`
	PropertyType       string         `json:"property_type"`
	Style              string         `json:"style"`
	CommonAmenities    []string       `json:"common_amenities"`
	CommonMaterials    []string       `json:"common_materials"`
	Condition          Condition      `json:"condition"`
	UnifiedDescription string         `json:"unified_description"`
	InteriorFeatures   []string       `json:"interior_features"`
	ExteriorFeatures   []string       `json:"exterior_features"`
	// FunctionalAreas lists the room kinds folded into an open-concept space
	FunctionalAreas []string `json:"functional_areas,omitempty"`
}

// BatchAnalysis is the result of analyzing a set of photos together
type BatchAnalysis struct {
	BatchID     string           `json:"batch_id"`
	Analyses    []ImageAnalysis  `json:"individual_analyses"`
	Synthesis   PropertyOverview `json:"synthesis"`
	FailedCount int              `json:"failed_count"`
}
