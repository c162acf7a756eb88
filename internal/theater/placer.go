// Installation placement: rejection sampling for a valid site near a base.
package theater

import (
	"math/rand"

	"github.com/talgya/frontline/internal/geo"
)

// Placement limits.
const (
	MaxPlacementAttempts   = 300
	ClearanceRadius        = 2500.0  // Footprint probe distance
	InstallationSeparation = 10000.0 // Minimum distance between installations
	ControlPointSeparation = 30000.0 // Minimum distance from other bases
)

// PlacementQuery describes the site being searched for.
type PlacementQuery struct {
	WantsLand     bool // false = sea
	Near          geo.Point
	Theater       *Theater
	MinRange      float64
	MaxRange      float64
	Existing      []*Installation // Must be the current list, stale lists overlap
	IsBaseDefense bool            // Skips separation from other bases
}

// FindLocation draws up to MaxPlacementAttempts candidates and returns the
// first one that satisfies every constraint. ok is false when none did.
func FindLocation(rng *rand.Rand, q PlacementQuery) (p geo.Point, ok bool) {
	for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
		candidate := q.Near.RandomPointWithin(rng, q.MinRange, q.MaxRange)
		if q.acceptable(candidate) {
			return candidate, true
		}
	}
	return geo.Point{}, false
}

func (q PlacementQuery) acceptable(p geo.Point) bool {
	if !q.surfaceMatches(p) {
		return false
	}

	// Keep the whole footprint on one side of the coastline.
	for heading := 0; heading < 360; heading += 45 {
		if !q.surfaceMatches(p.PointFromHeading(float64(heading), ClearanceRadius)) {
			return false
		}
	}

	if tooClose(p, q.Existing, InstallationSeparation) {
		return false
	}

	if q.IsBaseDefense {
		return true
	}
	for _, cp := range q.Theater.ControlPoints {
		if cp.Position == q.Near {
			continue
		}
		if cp.Position.DistanceTo(p) < ControlPointSeparation {
			return false
		}
		if tooClose(p, cp.Installations, InstallationSeparation) {
			return false
		}
	}
	return true
}

func (q PlacementQuery) surfaceMatches(p geo.Point) bool {
	if q.WantsLand {
		return q.Theater.IsOnLand(p)
	}
	return q.Theater.IsInSea(p)
}

func tooClose(p geo.Point, existing []*Installation, minDist float64) bool {
	for _, inst := range existing {
		if inst.Position.DistanceTo(p) < minDist {
			return true
		}
	}
	return false
}
