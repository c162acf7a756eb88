package planning

import (
	"math"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
)

const (
	maxDetours    = 8
	detourPadding = 1.15
)

// Mesh routes around the circles of an opposing threat zone.
type Mesh struct {
	circles []Circle
}

// NavMeshes builds meshes from the opposing side's zone.
type NavMeshes struct{}

// NavMesh implements campaign.NavMeshBuilder.
func (NavMeshes) NavMesh(opposing campaign.ThreatZone, _ *theater.Theater) campaign.NavMesh {
	m := &Mesh{}
	if z, ok := opposing.(*Zone); ok {
		m.circles = z.Circles
	}
	return m
}

// Route implements campaign.NavMesh. Circles containing either endpoint
// cannot be avoided and are flown through.
func (m *Mesh) Route(from, to geo.Point) []geo.Point {
	path := []geo.Point{from}
	cur := from
	for i := 0; i < maxDetours; i++ {
		c, ok := m.firstBlocking(cur, to)
		if !ok {
			break
		}
		cur = detour(cur, to, c)
		path = append(path, cur)
	}
	return append(path, to)
}

func (m *Mesh) firstBlocking(from, to geo.Point) (Circle, bool) {
	var best Circle
	bestDist := math.Inf(1)
	for _, c := range m.circles {
		if c.Contains(from) || c.Contains(to) {
			continue
		}
		if segmentDistance(from, to, c.Center) >= c.Radius {
			continue
		}
		if d := from.DistanceTo(c.Center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// detour returns a waypoint just outside c on the side the segment passes.
func detour(from, to geo.Point, c Circle) geo.Point {
	closest := closestOnSegment(from, to, c.Center)
	dx, dy := closest.X-c.Center.X, closest.Y-c.Center.Y
	if n := math.Hypot(dx, dy); n > 1e-9 {
		dx, dy = dx/n, dy/n
	} else {
		// Straight through the center: go around the right-hand side.
		sx, sy := to.X-from.X, to.Y-from.Y
		n := math.Hypot(sx, sy)
		dx, dy = -sy/n, sx/n
	}
	r := c.Radius * detourPadding
	return geo.Pt(c.Center.X+dx*r, c.Center.Y+dy*r)
}

func closestOnSegment(a, b, p geo.Point) geo.Point {
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return a
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Lerp(b, t)
}

func segmentDistance(a, b, p geo.Point) float64 {
	return closestOnSegment(a, b, p).DistanceTo(p)
}
