package service

import (
	"fmt"

	"listingguide/internal/config"
	"listingguide/internal/model"
)

type guidanceMessages struct {
	start     string
	early     string // formatted with the property type name
	middle    string
	late      string
	complete  string
	typeNames map[model.PropertyType]string
}

var guidanceByLocale = map[string]guidanceMessages{
	config.LocaleEnglish: {
		start:    "Let's start by identifying what type of property you're listing.",
		early:    "Great! I can see this is %s. Let's continue with the essential details.",
		middle:   "You're making good progress! Just a few more key details for your listing.",
		late:     "Almost done! Let me help you complete the final information.",
		complete: "Perfect! You've completed all the necessary information. Are you ready to preview and save your listing?",
		typeNames: map[model.PropertyType]string{
			model.PropertyTypeApartment:   "an apartment",
			model.PropertyTypeHouse:       "a house",
			model.PropertyTypeCondo:       "a condo",
			model.PropertyTypeTownhouse:   "a townhouse",
			model.PropertyTypeLand:        "a plot of land",
			model.PropertyTypeCommercial:  "a commercial property",
			model.PropertyTypeMobile:      "a mobile home",
			model.PropertyTypeMultiFamily: "a multi-family property",
		},
	},
	config.LocaleRomanian: {
		start:    "Să începem prin a identifica ce tip de proprietate afișați.",
		early:    "Excelent! Am identificat că este vorba despre un %s. Să continuăm cu detaliile esențiale.",
		middle:   "Faceți progrese bune! Încă câteva detalii cheie pentru anunțul dvs.",
		late:     "Aproape gata! Permiteți-mi să completez informațiile finale.",
		complete: "Perfect! Ați completat toate informațiile necesare. Sunteți gata să previzualizați și să salvați anunțul?",
		typeNames: map[model.PropertyType]string{
			model.PropertyTypeApartment:   "apartament",
			model.PropertyTypeHouse:       "casă",
			model.PropertyTypeCondo:       "condominium",
			model.PropertyTypeTownhouse:   "casă în șir",
			model.PropertyTypeLand:        "teren",
			model.PropertyTypeCommercial:  "proprietate comercială",
			model.PropertyTypeMobile:      "casă mobilă",
			model.PropertyTypeMultiFamily: "imobil multifamilial",
		},
	},
}

// GuidanceMessage picks the assistant message for the form state. The wording depends
// only on whether a property type is set and on how many fields are filled.
// Unknown locales fall back to English.
func GuidanceMessage(locale string, current map[string]any) string {
	msgs, ok := guidanceByLocale[locale]
	if !ok {
		msgs = guidanceByLocale[config.LocaleEnglish]
	}

	pt, _ := current[FieldPropertyType].(string)
	if pt == "" {
		return msgs.start
	}

	switch step := len(current); {
	case step < 3:
		name, ok := msgs.typeNames[propertyTypeOf(current)]
		if !ok {
			name = pt
		}
		return fmt.Sprintf(msgs.early, name)
	case step < 5:
		return msgs.middle
	case step < 7:
		return msgs.late
	default:
		return msgs.complete
	}
}
