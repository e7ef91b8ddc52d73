package service

import (
	_ "embed"
	"fmt"
	"os"

	"listingguide/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// FieldPropertyType is the field that gates every other suggestion
const FieldPropertyType = "property_type"

// FieldCatalog is the static table of form fields. It is never mutated after loading;
// lookups hand out clones.
type FieldCatalog struct {
	common    []model.FieldDefinition
	byType    map[model.PropertyType][]model.FieldDefinition
	synthetic map[string]model.FieldDefinition
}

type catalogFile struct {
	Common        []model.FieldDefinition            `yaml:"common"`
	PropertyTypes map[string][]model.FieldDefinition `yaml:"property_types"`
	Synthetic     []model.FieldDefinition            `yaml:"synthetic"`
}

// DefaultFieldCatalog returns the built-in catalog
func DefaultFieldCatalog() *FieldCatalog {
	c, err := ParseFieldCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in field catalog is invalid: %v", err))
	}
	return c
}

// LoadFieldCatalog reads a catalog from path, or the built-in one when path is empty
func LoadFieldCatalog(path string) (*FieldCatalog, error) {
	if path == "" {
		return DefaultFieldCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field catalog: %w", err)
	}
	return ParseFieldCatalog(data)
}

// ParseFieldCatalog decodes and validates a YAML catalog
func ParseFieldCatalog(data []byte) (*FieldCatalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse field catalog: %w", err)
	}

	c := &FieldCatalog{
		common:    file.Common,
		byType:    make(map[model.PropertyType][]model.FieldDefinition, len(file.PropertyTypes)),
		synthetic: make(map[string]model.FieldDefinition, len(file.Synthetic)),
	}

	if err := validateFields("common", file.Common); err != nil {
		return nil, err
	}
	for pt, fields := range file.PropertyTypes {
		if !model.PropertyType(pt).IsValid() {
			return nil, fmt.Errorf("field catalog: unknown property type %q", pt)
		}
		if err := validateFields(pt, fields); err != nil {
			return nil, err
		}
		c.byType[model.PropertyType(pt)] = fields
	}
	if err := validateFields("synthetic", file.Synthetic); err != nil {
		return nil, err
	}
	for _, f := range file.Synthetic {
		c.synthetic[f.ID] = f
	}
	if _, ok := c.synthetic[FieldPropertyType]; !ok {
		return nil, fmt.Errorf("field catalog: synthetic %q definition is required", FieldPropertyType)
	}

	return c, nil
}

func validateFields(section string, fields []model.FieldDefinition) error {
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.ID == "" {
			return fmt.Errorf("field catalog %s[%d]: missing id", section, i)
		}
		if seen[f.ID] {
			return fmt.Errorf("field catalog %s: duplicate field %q", section, f.ID)
		}
		seen[f.ID] = true

		switch f.ComponentType {
		case model.ComponentText, model.ComponentNumber, model.ComponentToggle:
		case model.ComponentSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("field catalog %s: select field %q has no options", section, f.ID)
			}
		default:
			return fmt.Errorf("field catalog %s: field %q has unknown component type %q", section, f.ID, f.ComponentType)
		}

		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return fmt.Errorf("field catalog %s: field %q has min > max", section, f.ID)
		}
	}
	return nil
}

// Common returns the fields asked for every property type
func (c *FieldCatalog) Common() []model.FieldDefinition {
	return cloneFields(c.common)
}

// ForPropertyType returns the type-specific fields, empty for unknown types
func (c *FieldCatalog) ForPropertyType(pt model.PropertyType) []model.FieldDefinition {
	return cloneFields(c.byType[pt])
}

// All returns common fields followed by the fields specific to pt
func (c *FieldCatalog) All(pt model.PropertyType) []model.FieldDefinition {
	return append(c.Common(), c.ForPropertyType(pt)...)
}

// TotalFields counts common plus type-specific fields
func (c *FieldCatalog) TotalFields(pt model.PropertyType) int {
	return len(c.common) + len(c.byType[pt])
}

// Resolve looks a field up in order: property type gate, common fields,
// the current type's fields, then synthetic feature-derived fields
func (c *FieldCatalog) Resolve(id string, pt model.PropertyType) (model.FieldDefinition, bool) {
	if id == FieldPropertyType {
		return c.synthetic[id].Clone(), true
	}
	for _, f := range c.common {
		if f.ID == id {
			return f.Clone(), true
		}
	}
	for _, f := range c.byType[pt] {
		if f.ID == id {
			return f.Clone(), true
		}
	}
	if f, ok := c.synthetic[id]; ok {
		return f.Clone(), true
	}
	return model.FieldDefinition{}, false
}

func cloneFields(fields []model.FieldDefinition) []model.FieldDefinition {
	out := make([]model.FieldDefinition, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}
