package groundgen

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/talgya/frontline/internal/geo"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// TemplateUnit is one static object of a building template, offset from
// the template origin.
type TemplateUnit struct {
	Type    string    `yaml:"type"`
	Offset  geo.Point `yaml:"offset"`
	Heading float64   `yaml:"heading"`
}

// Templates maps a building category to its layout variants.
type Templates map[string][][]TemplateUnit

// ParseTemplates decodes building templates from YAML.
func ParseTemplates(raw []byte) (Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("building templates: %w", err)
	}
	for category, variants := range t {
		for i, v := range variants {
			if len(v) == 0 {
				return nil, fmt.Errorf("building template %s #%d is empty", category, i)
			}
		}
	}
	return t, nil
}

// DefaultTemplates returns the built-in building layouts.
func DefaultTemplates() Templates {
	t, err := ParseTemplates(defaultTemplatesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return t
}
