package model

import "strings"

// PropertyType is the kind of property a listing describes
type PropertyType string

const (
	PropertyTypeApartment   PropertyType = "apartment"
	PropertyTypeHouse       PropertyType = "house"
	PropertyTypeTownhouse   PropertyType = "townhouse"
	PropertyTypeLand        PropertyType = "land"
	PropertyTypeMobile      PropertyType = "mobile"
	PropertyTypeMultiFamily PropertyType = "multi_family"
	PropertyTypeCondo       PropertyType = "condo"
	PropertyTypeCommercial  PropertyType = "commercial"
)

// PropertyTypes lists every property type the service understands
var PropertyTypes = []PropertyType{
	PropertyTypeApartment,
	PropertyTypeHouse,
	PropertyTypeTownhouse,
	PropertyTypeLand,
	PropertyTypeMobile,
	PropertyTypeMultiFamily,
	PropertyTypeCondo,
	PropertyTypeCommercial,
}

// IsValid checks if a property type is recognized
func (p PropertyType) IsValid() bool {
	for _, v := range PropertyTypes {
		if p == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the property type
func (p PropertyType) Label() string {
	switch p {
	case PropertyTypeMultiFamily:
		return "Multi-Family"
	case "":
		return ""
	default:
		return TitleCase(string(p))
	}
}

// Amenity is a discrete property feature such as a pool or a fireplace
type Amenity string

const (
	AmenityPool            Amenity = "pool"
	AmenityGarage          Amenity = "garage"
	AmenityBalcony         Amenity = "balcony"
	AmenityFireplace       Amenity = "fireplace"
	AmenityDeck            Amenity = "deck"
	AmenityGarden          Amenity = "garden"
	AmenityHotTub          Amenity = "hot_tub"
	AmenityGym             Amenity = "gym"
	AmenityElevator        Amenity = "elevator"
	AmenitySecurity        Amenity = "security"
	AmenityAirConditioning Amenity = "air_conditioning"
	AmenityHeating         Amenity = "heating"
	AmenityDishwasher      Amenity = "dishwasher"
	AmenityWasher          Amenity = "washer"
	AmenityDryer           Amenity = "dryer"
	AmenityRefrigerator    Amenity = "refrigerator"
	AmenityStove           Amenity = "stove"
	AmenityMicrowave       Amenity = "microwave"
	AmenityDisposal        Amenity = "disposal"
	AmenityHardwoodFloors  Amenity = "hardwood_floors"
	AmenityGraniteCounters Amenity = "granite_counters"
	AmenityWalkInCloset    Amenity = "walk_in_closet"
	AmenityVaultedCeiling  Amenity = "vaulted_ceiling"
	AmenitySkylight        Amenity = "skylight"
	AmenityFrenchDoors     Amenity = "french_doors"
)

// Style is an architectural style
type Style string

const (
	StyleModern        Style = "modern"
	StyleTraditional   Style = "traditional"
	StyleRustic        Style = "rustic"
	StyleVictorian     Style = "victorian"
	StyleCraftsman     Style = "craftsman"
	StyleMediterranean Style = "mediterranean"
	StyleCapeCod       Style = "cape_cod"
	StyleRanch         Style = "ranch"
	StyleSplitLevel    Style = "split_level"
	StyleTwoStory      Style = "two_story"
)

// RoomKind is a room category that can be counted
type RoomKind string

const (
	RoomBedroom     RoomKind = "bedroom"
	RoomBathroom    RoomKind = "bathroom"
	RoomKitchen     RoomKind = "kitchen"
	RoomLivingRoom  RoomKind = "living_room"
	RoomDiningRoom  RoomKind = "dining_room"
	RoomOffice      RoomKind = "office"
	RoomBasement    RoomKind = "basement"
	RoomAttic       RoomKind = "attic"
	RoomGarage      RoomKind = "garage"
	RoomLaundryRoom RoomKind = "laundry_room"

	// RoomOpenConceptSpace is the synthetic room used when a single photo shows an open-concept layout
	RoomOpenConceptSpace RoomKind = "open_concept_space"
)

// Material is a building material or finish
type Material string

const (
	MaterialHardwoodFloors  Material = "hardwood_floors"
	MaterialGraniteCounters Material = "granite_counters"
	MaterialStainlessSteel  Material = "stainless_steel"
	MaterialTile            Material = "tile"
	MaterialCarpet          Material = "carpet"
	MaterialLaminate        Material = "laminate"
	MaterialVinyl           Material = "vinyl"
	MaterialMarble          Material = "marble"
	MaterialQuartz          Material = "quartz"
	MaterialBrick           Material = "brick"
	MaterialStone           Material = "stone"
	MaterialStucco          Material = "stucco"
	MaterialVinylSiding     Material = "vinyl_siding"
	MaterialWoodSiding      Material = "wood_siding"
)

// Condition is the observed state of a property
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionNeedsWork Condition = "needs_work"
	ConditionUnknown   Condition = "unknown"
	// ConditionMixed is only produced by synthesis
	ConditionMixed Condition = "mixed"
)

// ParseCondition maps free-form model output onto a Condition, defaulting to unknown
func ParseCondition(s string) Condition {
	switch Condition(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")) {
	case ConditionExcellent:
		return ConditionExcellent
	case ConditionGood:
		return ConditionGood
	case ConditionFair:
		return ConditionFair
	case ConditionNeedsWork, "needs_repair", "poor":
		return ConditionNeedsWork
	case ConditionMixed:
		return ConditionMixed
	default:
		return ConditionUnknown
	}
}

// LayoutType describes how interior rooms are arranged
type LayoutType string

const (
	LayoutOpenConcept LayoutType = "open_concept"
	LayoutTraditional LayoutType = "traditional"
	LayoutUnknown     LayoutType = "unknown"
)

// TitleCase turns "living_room" into "Living Room"
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ExtractedFeatures holds typed, confidence-scored attributes pulled out of free text.
// Every confidence is in [0,1] and every confidence key has a matching entry in its collection.
type ExtractedFeatures struct {
	PropertyType           *PropertyType        `json:"property_type"`
	PropertyTypeConfidence float64              `json:"property_type_confidence"`
	Amenities              []Amenity            `json:"amenities"`
	AmenitiesConfidence    map[Amenity]float64  `json:"amenities_confidence"`
	Style                  *Style               `json:"style"`
	StyleConfidence        float64              `json:"style_confidence"`
	Rooms                  map[RoomKind]int     `json:"rooms"`
	RoomsConfidence        map[RoomKind]float64 `json:"rooms_confidence"`
	Materials              []Material           `json:"materials"`
	MaterialsConfidence    map[Material]float64 `json:"materials_confidence"`
}

// NewExtractedFeatures returns an empty, non-nil result
func NewExtractedFeatures() ExtractedFeatures {
	return ExtractedFeatures{
		Amenities:           []Amenity{},
		AmenitiesConfidence: map[Amenity]float64{},
		Rooms:               map[RoomKind]int{},
		RoomsConfidence:     map[RoomKind]float64{},
		Materials:           []Material{},
		MaterialsConfidence: map[Material]float64{},
	}
}

// HasAmenity reports whether the amenity was detected
func (f *ExtractedFeatures) HasAmenity(a Amenity) bool {
	if f == nil {
		return false
	}
	for _, v := range f.Amenities {
		if v == a {
			return true
		}
	}
	return false
}
