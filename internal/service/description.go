package service

import (
	"fmt"
	"strings"

	"listingguide/internal/model"
)

const maxOtherAmenities = 2

type descriptionInput struct {
	totalRooms      int
	breakdown       map[string]int
	amenities       []string
	materials       []string
	propertyType    string
	style           string
	analyses        []model.ImageAnalysis
	layout          model.LayoutType
	exterior        []string
	functionalAreas []string
}

// describeProperty renders the one-paragraph summary of a synthesized property
func describeProperty(in descriptionInput) string {
	if in.totalRooms == 0 && len(in.exterior) == 0 {
		return "No rooms detected in the provided images."
	}

	var roomParts []string
	for _, kind := range sortedKeys(in.breakdown) {
		n := in.breakdown[kind]
		if n <= 0 {
			continue
		}
		name := model.TitleCase(kind)
		if n == 1 {
			roomParts = append(roomParts, "1 "+name)
		} else {
			roomParts = append(roomParts, fmt.Sprintf("%d %ss", n, name))
		}
	}
	roomDesc := strings.Join(roomParts, ", ")

	openConcept := in.layout == model.LayoutOpenConcept
	if openConcept && len(in.functionalAreas) > 0 {
		areas := make([]string, len(in.functionalAreas))
		for i, a := range in.functionalAreas {
			areas[i] = model.TitleCase(a)
		}
		roomDesc = strings.Join(areas, ", ")
	}

	var b strings.Builder
	b.WriteString("This ")
	b.WriteString(in.propertyType)
	switch {
	case openConcept && in.totalRooms == 1:
		b.WriteString(" has 1 open-concept space")
	case openConcept && in.totalRooms == 0:
		b.WriteString(" features an open-concept design")
	case openConcept:
		fmt.Fprintf(&b, " has an open-concept layout with %d distinct areas", in.totalRooms)
	case in.totalRooms == 1:
		b.WriteString(" has 1 room")
	case in.totalRooms > 1:
		fmt.Fprintf(&b, " has %d rooms", in.totalRooms)
	}

	if roomDesc != "" {
		if openConcept {
			b.WriteString(" including ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(roomDesc)
	}

	if highlights := amenityHighlights(in); len(highlights) > 0 {
		b.WriteString(". Features include ")
		b.WriteString(strings.Join(highlights, ", "))
	}
	if len(in.exterior) > 0 {
		b.WriteString(". Exterior features include ")
		b.WriteString(strings.Join(in.exterior, ", "))
	}
	if in.style != "" && in.style != unknownValue {
		b.WriteString(". Overall style: ")
		b.WriteString(in.style)
	}
	b.WriteString(".")
	return b.String()
}

// amenityHighlights lists the headline amenities first, then up to two others
func amenityHighlights(in descriptionInput) []string {
	var out []string

	// hardwood must show up in more than half of the photos to be called out
	if contains(in.materials, string(model.MaterialHardwoodFloors)) {
		seen := 0
		for _, a := range in.analyses {
			if contains(a.Amenities, string(model.AmenityHardwoodFloors)) {
				seen++
			}
		}
		if 2*seen > len(in.analyses) {
			out = append(out, "hardwood floors throughout")
		}
	}
	if contains(in.amenities, string(model.AmenityGraniteCounters)) {
		out = append(out, "granite countertops")
	}
	if contains(in.amenities, string(model.MaterialStainlessSteel)) {
		out = append(out, "stainless steel appliances")
	}
	if contains(in.amenities, string(model.AmenityFireplace)) {
		out = append(out, "fireplace")
	}
	if contains(in.amenities, string(model.AmenityDishwasher)) {
		out = append(out, "dishwasher")
	}

	headline := map[string]bool{
		string(model.AmenityHardwoodFloors):  true,
		string(model.AmenityGraniteCounters): true,
		string(model.MaterialStainlessSteel): true,
		string(model.AmenityFireplace):       true,
		string(model.AmenityDishwasher):      true,
	}
	others := 0
	for _, a := range in.amenities {
		if headline[a] || others == maxOtherAmenities {
			continue
		}
		out = append(out, strings.ReplaceAll(a, "_", " "))
		others++
	}
	return out
}
