// Terrain generation using layered simplex noise over a coastline gradient.
// The theater is rasterized into square cells classified as land or sea;
// anything outside the map bounds is neither.
package theater

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/frontline/internal/geo"
)

// Terrain answers surface membership queries for map points.
type Terrain interface {
	IsOnLand(p geo.Point) bool
	IsInSea(p geo.Point) bool
}

// Surface classifies a terrain cell.
type Surface uint8

const (
	SurfaceNone Surface = iota // Off-map or excluded
	SurfaceLand
	SurfaceSea
)

// DefaultTerrainSeed is used when a config pins no seed.
const DefaultTerrainSeed int64 = 1

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Seed        int64   `yaml:"seed" json:"seed"`                 // 0 = DefaultTerrainSeed
	MinX        float64 `yaml:"min_x" json:"min_x"`               // Southern bound
	MaxX        float64 `yaml:"max_x" json:"max_x"`               // Northern bound
	MinY        float64 `yaml:"min_y" json:"min_y"`               // Western bound
	MaxY        float64 `yaml:"max_y" json:"max_y"`               // Eastern bound
	CellSize    float64 `yaml:"cell_size" json:"cell_size"`       // Meters per grid cell
	SeaLevel    float64 `yaml:"sea_level" json:"sea_level"`       // Elevation threshold for sea (0.0–1.0)
	CoastY      float64 `yaml:"coast_y" json:"coast_y"`           // Mean coastline; land lies west of it
	CoastWidth  float64 `yaml:"coast_width" json:"coast_width"`   // Width of the land/sea gradient
	NoiseWeight float64 `yaml:"noise_weight" json:"noise_weight"` // Share of elevation taken from noise
}

// DefaultGenConfig returns a 400 × 600 km theater with sea to the east.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:        0,
		MinX:        -200000,
		MaxX:        200000,
		MinY:        -300000,
		MaxY:        300000,
		CellSize:    1000,
		SeaLevel:    0.5,
		CoastY:      150000,
		CoastWidth:  60000,
		NoiseWeight: 0.35,
	}
}

// Grid is a rasterized terrain.
type Grid struct {
	Config GenConfig
	cols   int
	rows   int
	cells  []Surface // row-major: cells[row*cols + col]
}

// Generate rasterizes terrain for cfg. The same seed always yields the same grid.
func Generate(cfg GenConfig) *Grid {
	if cfg.Seed == 0 {
		cfg.Seed = DefaultTerrainSeed
	}
	seed := cfg.Seed
	if cfg.CellSize <= 0 {
		cfg.CellSize = DefaultGenConfig().CellSize
	}
	if cfg.CoastWidth <= 0 {
		cfg.CoastWidth = DefaultGenConfig().CoastWidth
	}

	elevNoise := opensimplex.NewNormalized(seed)

	g := &Grid{
		Config: cfg,
		cols:   int(math.Ceil((cfg.MaxY - cfg.MinY) / cfg.CellSize)),
		rows:   int(math.Ceil((cfg.MaxX - cfg.MinX) / cfg.CellSize)),
	}
	if g.cols < 0 {
		g.cols = 0
	}
	if g.rows < 0 {
		g.rows = 0
	}
	g.cells = make([]Surface, g.cols*g.rows)

	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			// Sample at the cell center.
			y := cfg.MinY + (float64(col)+0.5)*cfg.CellSize

			gradient := clamp((cfg.CoastY-y)/cfg.CoastWidth, -1, 1)
			base := 0.5 + 0.5*gradient
			n := octaveNoise(elevNoise, float64(col), float64(row), 4, 0.02, 0.5)
			elev := base*(1-cfg.NoiseWeight) + n*cfg.NoiseWeight

			surface := SurfaceSea
			if elev >= cfg.SeaLevel {
				surface = SurfaceLand
			}
			g.cells[row*g.cols+col] = surface
		}
	}

	return g
}

// SurfaceAt returns the surface of the cell containing p.
func (g *Grid) SurfaceAt(p geo.Point) Surface {
	if p.X < g.Config.MinX || p.Y < g.Config.MinY {
		return SurfaceNone
	}
	row := int((p.X - g.Config.MinX) / g.Config.CellSize)
	col := int((p.Y - g.Config.MinY) / g.Config.CellSize)
	if row >= g.rows || col >= g.cols {
		return SurfaceNone
	}
	return g.cells[row*g.cols+col]
}

// IsOnLand implements Terrain.
func (g *Grid) IsOnLand(p geo.Point) bool {
	return g.SurfaceAt(p) == SurfaceLand
}

// IsInSea implements Terrain.
func (g *Grid) IsInSea(p geo.Point) bool {
	return g.SurfaceAt(p) == SurfaceSea
}

// SurfaceCounts returns a summary of the cell classification.
func (g *Grid) SurfaceCounts() map[Surface]int {
	counts := make(map[Surface]int)
	for _, s := range g.cells {
		counts[s]++
	}
	return counts
}

// SurfaceName returns a human-readable name for a surface type.
func SurfaceName(s Surface) string {
	switch s {
	case SurfaceLand:
		return "Land"
	case SurfaceSea:
		return "Sea"
	default:
		return "None"
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
