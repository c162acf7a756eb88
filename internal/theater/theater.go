package theater

import (
	"fmt"

	"github.com/talgya/frontline/internal/geo"
)

// Theater holds the campaign map: terrain and every control point on it.
type Theater struct {
	Name          string          `json:"name"`
	TerrainConfig GenConfig       `json:"terrain"`
	Terrain       Terrain         `json:"-"` // Rebuilt from TerrainConfig on load
	ControlPoints []*ControlPoint `json:"control_points"`

	// ID counters for generated groups and units.
	LastGroupID int `json:"last_group_id"`
	LastUnitID  int `json:"last_unit_id"`
}

// New creates an empty theater over the given terrain.
func New(name string, terrain Terrain) *Theater {
	th := &Theater{Name: name, Terrain: terrain}
	if g, ok := terrain.(*Grid); ok {
		th.TerrainConfig = g.Config
	}
	return th
}

// IsOnLand reports whether p is on land.
func (t *Theater) IsOnLand(p geo.Point) bool {
	return t.Terrain != nil && t.Terrain.IsOnLand(p)
}

// IsInSea reports whether p is at sea.
func (t *Theater) IsInSea(p geo.Point) bool {
	return t.Terrain != nil && t.Terrain.IsInSea(p)
}

// Add appends a control point. IDs must be unique.
func (t *Theater) Add(cp *ControlPoint) error {
	if t.ControlPoint(cp.ID) != nil {
		return fmt.Errorf("duplicate control point id %d", cp.ID)
	}
	t.ControlPoints = append(t.ControlPoints, cp)
	return nil
}

// Remove drops a control point and every link pointing at it.
func (t *Theater) Remove(cp *ControlPoint) {
	kept := t.ControlPoints[:0]
	for _, c := range t.ControlPoints {
		if c.ID != cp.ID {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(t.ControlPoints); i++ {
		t.ControlPoints[i] = nil
	}
	t.ControlPoints = kept

	for _, c := range t.ControlPoints {
		links := c.Links[:0]
		for _, id := range c.Links {
			if id != cp.ID {
				links = append(links, id)
			}
		}
		c.Links = links
	}
}

// Connect links two control points in both directions.
func (t *Theater) Connect(a, b *ControlPoint) {
	if !a.IsLinked(b.ID) {
		a.Links = append(a.Links, b.ID)
	}
	if !b.IsLinked(a.ID) {
		b.Links = append(b.Links, a.ID)
	}
}

// ControlPoint returns the control point with the given ID, or nil.
func (t *Theater) ControlPoint(id ControlPointID) *ControlPoint {
	for _, cp := range t.ControlPoints {
		if cp.ID == id {
			return cp
		}
	}
	return nil
}

// PointsFor returns the control points owned by side.
func (t *Theater) PointsFor(side Side) []*ControlPoint {
	var out []*ControlPoint
	for _, cp := range t.ControlPoints {
		if cp.Captured == side {
			out = append(out, cp)
		}
	}
	return out
}

// PlayerPoints returns the player-owned control points.
func (t *Theater) PlayerPoints() []*ControlPoint {
	return t.PointsFor(Player)
}

// EnemyPoints returns the enemy-owned control points.
func (t *Theater) EnemyPoints() []*ControlPoint {
	return t.PointsFor(Enemy)
}

// Neighbors returns the control points linked to cp.
func (t *Theater) Neighbors(cp *ControlPoint) []*ControlPoint {
	var out []*ControlPoint
	for _, id := range cp.Links {
		if n := t.ControlPoint(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// HasFrontLine reports whether cp borders a control point of the other side.
func (t *Theater) HasFrontLine(cp *ControlPoint) bool {
	if cp.IsFleet() {
		return false
	}
	for _, n := range t.Neighbors(cp) {
		if n.Captured != cp.Captured && !n.IsFleet() {
			return true
		}
	}
	return false
}

// Conflicts returns every active front line, player side first.
func (t *Theater) Conflicts() []FrontLine {
	var lines []FrontLine
	for _, cp := range t.PlayerPoints() {
		if cp.IsFleet() {
			continue
		}
		for _, n := range t.Neighbors(cp) {
			if n.Captured == Enemy && !n.IsFleet() {
				lines = append(lines, FrontLine{A: cp, B: n})
			}
		}
	}
	return lines
}

// Installations returns every installation in the theater.
func (t *Theater) Installations() []*Installation {
	var out []*Installation
	for _, cp := range t.ControlPoints {
		out = append(out, cp.Installations...)
	}
	return out
}

// NextGroupID allocates a unit group ID.
func (t *Theater) NextGroupID() int {
	t.LastGroupID++
	return t.LastGroupID
}

// NextUnitID allocates a unit ID.
func (t *Theater) NextUnitID() int {
	t.LastUnitID++
	return t.LastUnitID
}

// FrontLine is the contested boundary between a player control point (A)
// and an adjacent enemy control point (B).
type FrontLine struct {
	A *ControlPoint
	B *ControlPoint
}

// Position returns where the fighting happens: on the line between the two
// bases, pushed towards the weaker side. Equal strength gives the midpoint.
func (f FrontLine) Position() geo.Point {
	total := f.A.Strength + f.B.Strength
	ratio := 0.5
	if total > 0 {
		ratio = f.A.Strength / total
	}
	return f.A.Position.Lerp(f.B.Position, ratio)
}

func (f FrontLine) String() string {
	return fmt.Sprintf("%s vs %s", f.A.Name, f.B.Name)
}
