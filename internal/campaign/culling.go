// Culling: points of interest the mission generator keeps detail around.
package campaign

import (
	"math"

	"github.com/talgya/frontline/internal/geo"
)

// ComputeCullingPoints recomputes the turn's points of interest: front
// lines and their bases, carriers when they must not be culled, the nearest
// opposing bases when there is no front, and every non-BARCAP target.
func (g *Game) ComputeCullingPoints() {
	var points []geo.Point

	for _, fl := range g.Theater.Conflicts() {
		points = append(points, fl.Position(), fl.A.Position, fl.B.Position)
	}

	if g.Settings.PerfDoNotCullCarrier {
		for _, cp := range g.Theater.ControlPoints {
			if cp.IsFleet() {
				points = append(points, cp.Position)
			}
		}
	}

	if len(points) == 0 {
		points = append(points, g.nearestOpposingBases()...)
	}

	for _, ato := range []*ATO{&g.BlueATO, &g.RedATO} {
		for _, pkg := range ato.Packages {
			// BARCAPs are flown nearly everywhere and are defensive.
			if pkg.Task == MissionBARCAP {
				continue
			}
			points = append(points, pkg.Target.Position)
		}
	}

	if len(points) == 0 {
		points = append(points, geo.Point{})
	}
	g.culling = points
}

// nearestOpposingBases returns the closest player/enemy pair and the point
// between them, or nothing when one side holds every base.
func (g *Game) nearestOpposingBases() []geo.Point {
	best := math.Inf(1)
	var out []geo.Point
	for _, a := range g.Theater.PlayerPoints() {
		for _, b := range g.Theater.EnemyPoints() {
			if d := a.Position.DistanceTo(b.Position); d < best {
				best = d
				out = []geo.Point{a.Position, b.Position, a.Position.Midpoint(b.Position)}
			}
		}
	}
	return out
}

// CullingPoints returns the current turn's points of interest.
func (g *Game) CullingPoints() []geo.Point {
	return append([]geo.Point(nil), g.culling...)
}

// PositionCulled reports whether units at p may be left out of the mission
// because p is far from every point of interest.
func (g *Game) PositionCulled(p geo.Point) bool {
	if !g.Settings.PerfCulling {
		return false
	}
	limit := g.Settings.PerfCullingDistance * 1000
	for _, c := range g.culling {
		if c.DistanceTo(p) < limit {
			return false
		}
	}
	return true
}
