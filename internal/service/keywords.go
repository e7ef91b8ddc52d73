package service

import "listingguide/internal/model"

// keywordEntry maps a canonical value to the phrases that signal it.
// Tables are slices so declaration order decides ties.
type keywordEntry[T ~string] struct {
	Value    T
	Keywords []string
}

var propertyTypeKeywords = []keywordEntry[model.PropertyType]{
	{model.PropertyTypeApartment, []string{"apartment", "apt", "flat", "condo", "condominium", "studio", "loft"}},
	{model.PropertyTypeHouse, []string{"house", "home", "residence", "dwelling", "single family", "single-family"}},
	{model.PropertyTypeTownhouse, []string{"townhouse", "townhome", "row house", "rowhouse", "attached"}},
	{model.PropertyTypeLand, []string{"land", "lot", "plot", "acreage", "parcel", "vacant land"}},
	{model.PropertyTypeMobile, []string{"mobile", "manufactured", "trailer", "rv"}},
	{model.PropertyTypeMultiFamily, []string{"multi-family", "duplex", "triplex", "fourplex", "apartment building"}},
}

var amenityKeywords = []keywordEntry[model.Amenity]{
	{model.AmenityPool, []string{"pool", "swimming pool", "lap pool", "infinity pool", "pool area"}},
	{model.AmenityGarage, []string{"garage", "carport", "parking space", "attached garage", "detached garage"}},
	{model.AmenityBalcony, []string{"balcony", "balconies", "terrace", "patio", "veranda"}},
	{model.AmenityFireplace, []string{"fireplace", "fire place", "wood burning", "gas fireplace"}},
	{model.AmenityDeck, []string{"deck", "wood deck", "composite deck", "decking"}},
	{model.AmenityGarden, []string{"garden", "yard", "backyard", "front yard", "lawn"}},
	{model.AmenityHotTub, []string{"hot tub", "jacuzzi", "spa", "whirlpool"}},
	{model.AmenityGym, []string{"gym", "fitness", "exercise room", "workout room", "home gym"}},
	{model.AmenityElevator, []string{"elevator", "lift", "wheelchair access", "handicap access"}},
	{model.AmenitySecurity, []string{"security", "alarm", "camera", "cameras", "security system"}},
	{model.AmenityAirConditioning, []string{"air conditioning", "ac", "central air", "hvac", "climate control"}},
	{model.AmenityHeating, []string{"heating", "central heating", "forced air", "radiator"}},
	{model.AmenityDishwasher, []string{"dishwasher", "dish washer", "stainless appliances"}},
	{model.AmenityWasher, []string{"washer", "washing machine", "laundry", "laundry room"}},
	{model.AmenityDryer, []string{"dryer", "clothes dryer", "laundry"}},
	{model.AmenityRefrigerator, []string{"refrigerator", "fridge", "stainless steel appliances"}},
	{model.AmenityStove, []string{"stove", "range", "oven", "cooktop"}},
	{model.AmenityMicrowave, []string{"microwave", "microwave oven"}},
	{model.AmenityDisposal, []string{"garbage disposal", "waste disposal"}},
	{model.AmenityHardwoodFloors, []string{"hardwood", "hard wood", "wood floors", "hardwood floors"}},
	{model.AmenityGraniteCounters, []string{"granite", "granite counters", "granite countertops"}},
	{model.AmenityWalkInCloset, []string{"walk-in closet", "walk in closet", "large closet"}},
	{model.AmenityVaultedCeiling, []string{"vaulted ceiling", "high ceiling", "cathedral ceiling"}},
	{model.AmenitySkylight, []string{"skylight", "skylights", "roof window"}},
	{model.AmenityFrenchDoors, []string{"french doors", "patio doors", "sliding doors"}},
}

var styleKeywords = []keywordEntry[model.Style]{
	{model.StyleModern, []string{"modern", "contemporary", "sleek", "minimalist", "clean lines"}},
	{model.StyleTraditional, []string{"traditional", "classic", "colonial", "timeless", "conventional"}},
	{model.StyleRustic, []string{"rustic", "country", "farmhouse", "cabin", "log", "woodsy"}},
	{model.StyleVictorian, []string{"victorian", "ornate", "detailed", "gingerbread"}},
	{model.StyleCraftsman, []string{"craftsman", "bungalow", "arts and crafts", "mission style"}},
	{model.StyleMediterranean, []string{"mediterranean", "spanish", "tuscan", "stucco", "tile roof"}},
	{model.StyleCapeCod, []string{"cape cod", "cape", "new england"}},
	{model.StyleRanch, []string{"ranch", "rambler", "single story", "one story"}},
	{model.StyleSplitLevel, []string{"split level", "tri-level", "bi-level"}},
	{model.StyleTwoStory, []string{"two story", "2-story", "colonial"}},
}

var roomKeywords = []keywordEntry[model.RoomKind]{
	{model.RoomBedroom, []string{"bedroom", "bedrooms", "bed", "master bedroom", "guest room"}},
	{model.RoomBathroom, []string{"bathroom", "bathrooms", "bath", "powder room", "half bath", "full bath"}},
	{model.RoomKitchen, []string{"kitchen", "eat-in kitchen", "gourmet kitchen", "chef kitchen"}},
	{model.RoomLivingRoom, []string{"living room", "living area", "great room", "family room"}},
	{model.RoomDiningRoom, []string{"dining room", "dining area", "formal dining"}},
	{model.RoomOffice, []string{"office", "study", "den", "library", "work room"}},
	{model.RoomBasement, []string{"basement", "finished basement", "unfinished basement"}},
	{model.RoomAttic, []string{"attic", "loft", "bonus room"}},
	{model.RoomGarage, []string{"garage", "garage space"}},
	{model.RoomLaundryRoom, []string{"laundry room", "utility room", "mud room"}},
}

var materialKeywords = []keywordEntry[model.Material]{
	{model.MaterialHardwoodFloors, []string{"hardwood floors", "wood floors", "hardwood flooring"}},
	{model.MaterialGraniteCounters, []string{"granite countertops", "granite counters", "granite"}},
	{model.MaterialStainlessSteel, []string{"stainless steel", "stainless appliances", "stainless"}},
	{model.MaterialTile, []string{"tile", "ceramic tile", "porcelain tile", "stone tile"}},
	{model.MaterialCarpet, []string{"carpet", "carpeting", "wall-to-wall carpet"}},
	{model.MaterialLaminate, []string{"laminate", "laminate flooring"}},
	{model.MaterialVinyl, []string{"vinyl", "vinyl flooring", "luxury vinyl"}},
	{model.MaterialMarble, []string{"marble", "marble counters", "marble floors"}},
	{model.MaterialQuartz, []string{"quartz", "quartz countertops"}},
	{model.MaterialBrick, []string{"brick", "brick exterior", "brick wall"}},
	{model.MaterialStone, []string{"stone", "stone exterior", "natural stone"}},
	{model.MaterialStucco, []string{"stucco", "stucco exterior"}},
	{model.MaterialVinylSiding, []string{"vinyl siding", "siding"}},
	{model.MaterialWoodSiding, []string{"wood siding", "cedar siding", "shingles"}},
}
