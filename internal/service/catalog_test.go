package service

import (
	"os"
	"path/filepath"
	"testing"

	"listingguide/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFieldCatalog(t *testing.T) {
	c := DefaultFieldCatalog()

	assert.Len(t, c.Common(), 8)
	assert.Equal(t, 12, c.TotalFields(model.PropertyTypeHouse))
	assert.Equal(t, 12, c.TotalFields(model.PropertyTypeApartment))
	assert.Equal(t, 10, c.TotalFields(model.PropertyTypeCondo))
	assert.Equal(t, 8, c.TotalFields(model.PropertyTypeLand))

	all := c.All(model.PropertyTypeHouse)
	assert.Equal(t, "bedrooms", all[0].ID)
	assert.Equal(t, "stories", all[len(all)-1].ID)
}

func TestFieldCatalog_Resolve(t *testing.T) {
	c := DefaultFieldCatalog()

	pt, ok := c.Resolve(FieldPropertyType, "")
	require.True(t, ok)
	assert.Len(t, pt.Options, 6)

	_, ok = c.Resolve("amenities", model.PropertyTypeCondo)
	assert.True(t, ok)
	_, ok = c.Resolve("amenities", model.PropertyTypeApartment)
	assert.False(t, ok)

	garage, ok := c.Resolve("garage", model.PropertyTypeApartment)
	require.True(t, ok)
	assert.Equal(t, model.ComponentSelect, garage.ComponentType)

	bedrooms, ok := c.Resolve("bedrooms", model.PropertyTypeHouse)
	require.True(t, ok)
	require.NotNil(t, bedrooms.Max)
	assert.Equal(t, 20.0, *bedrooms.Max)
}

func TestFieldCatalog_LookupsAreCopies(t *testing.T) {
	c := DefaultFieldCatalog()

	def, _ := c.Resolve(FieldPropertyType, "")
	def.Options[0].Label = "changed"
	def.Required = false

	again, _ := c.Resolve(FieldPropertyType, "")
	assert.Equal(t, "House", again.Options[0].Label)
	assert.True(t, again.Required)

	common := c.Common()
	*common[0].Max = 1
	assert.Equal(t, 20.0, *c.Common()[0].Max)
}

func TestParseFieldCatalog_Invalid(t *testing.T) {
	gate := `
synthetic:
  - id: property_type
    component_type: select
    label: Property Type
    options: [{value: house, label: House}]
`
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{"not yaml", "common: [", "failed to parse"},
		{"missing gate", "common: []", "is required"},
		{"missing id", "common:\n  - component_type: text\n" + gate, "missing id"},
		{"duplicate", "common:\n  - {id: a, component_type: text}\n  - {id: a, component_type: text}\n" + gate, "duplicate"},
		{"unknown component", "common:\n  - {id: a, component_type: slider}\n" + gate, "unknown component type"},
		{"select without options", "common:\n  - {id: a, component_type: select}\n" + gate, "no options"},
		{"inverted bounds", "common:\n  - {id: a, component_type: number, min: 5, max: 1}\n" + gate, "min > max"},
		{"unknown property type", "property_types:\n  castle:\n    - {id: a, component_type: text}\n" + gate, "unknown property type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFieldCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestLoadFieldCatalog(t *testing.T) {
	c, err := LoadFieldCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.Common(), 8)

	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
common:
  - {id: price, component_type: number, label: Price, required: true}
synthetic:
  - id: property_type
    component_type: select
    label: Property Type
    options: [{value: house, label: House}]
`), 0o600))

	c, err = LoadFieldCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalFields(model.PropertyTypeHouse))

	_, err = LoadFieldCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
