// Theater definitions: the static campaign layout loaded from YAML.
package theater

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/frontline/internal/geo"
)

//go:embed default_theater.yaml
var defaultTheaterYAML []byte

// Definition is the on-disk description of a theater.
type Definition struct {
	Name          string              `yaml:"name"`
	Terrain       *GenConfig          `yaml:"terrain"`
	ControlPoints []ControlPointEntry `yaml:"control_points"`
}

// ControlPointEntry describes one control point in a definition file.
type ControlPointEntry struct {
	ID             int       `yaml:"id"`
	Name           string    `yaml:"name"`
	Type           string    `yaml:"type"`
	Position       geo.Point `yaml:"position"`
	Captured       bool      `yaml:"captured"`
	CapturedInvert bool      `yaml:"captured_invert"`
	Importance     float64   `yaml:"importance"`
	Links          []int     `yaml:"links"`
}

// LoadDefinition reads a theater definition from path.
func LoadDefinition(path string) (Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	d, err := ParseDefinition(raw)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDefinition decodes a theater definition.
func ParseDefinition(raw []byte) (Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("theater definition: %w", err)
	}
	if len(d.ControlPoints) == 0 {
		return d, fmt.Errorf("theater definition %q has no control points", d.Name)
	}
	return d, nil
}

// DefaultDefinition returns the built-in coastal theater.
func DefaultDefinition() Definition {
	d, err := ParseDefinition(defaultTheaterYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded theater: %v", err))
	}
	return d
}

// Build generates terrain and control points. seed is used when the
// definition does not pin its own terrain seed.
func (d Definition) Build(seed int64) (*Theater, error) {
	cfg := DefaultGenConfig()
	if d.Terrain != nil {
		cfg = *d.Terrain
	}
	if cfg.Seed == 0 {
		cfg.Seed = seed
	}

	grid := Generate(cfg)
	counts := grid.SurfaceCounts()
	slog.Info("terrain generated", "theater", d.Name, "seed", grid.Config.Seed,
		SurfaceName(SurfaceLand), counts[SurfaceLand],
		SurfaceName(SurfaceSea), counts[SurfaceSea])

	th := New(d.Name, grid)
	for _, e := range d.ControlPoints {
		typ, err := ParseControlPointType(e.Type)
		if err != nil {
			return nil, fmt.Errorf("control point %q: %w", e.Name, err)
		}
		cp := NewControlPoint(ControlPointID(e.ID), e.Name, typ, e.Position, e.Importance)
		cp.Captured = Side(e.Captured)
		cp.CapturedInvert = Side(e.CapturedInvert)
		if err := th.Add(cp); err != nil {
			return nil, err
		}
	}

	for _, e := range d.ControlPoints {
		a := th.ControlPoint(ControlPointID(e.ID))
		for _, link := range e.Links {
			b := th.ControlPoint(ControlPointID(link))
			if b == nil {
				return nil, fmt.Errorf("control point %q links to unknown id %d", e.Name, link)
			}
			th.Connect(a, b)
		}
	}

	return th, nil
}
