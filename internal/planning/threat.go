// Threat zones: circles of coverage around live air defenses and manned
// airfields.
package planning

import (
	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
)

// Engagement radius per group kind. Armor does not threaten aircraft.
var threatRanges = map[theater.GroupKind]float64{
	theater.GroupSAM:     40000,
	theater.GroupSHORAD:  8000,
	theater.GroupShip:    30000,
	theater.GroupCarrier: 60000,
	theater.GroupLHA:     20000,
}

// AirfieldThreatRange covers fighters scrambling from a base with aircraft.
const AirfieldThreatRange = 50000

// Circle is one covered disc.
type Circle struct {
	Center geo.Point `json:"center"`
	Radius float64   `json:"radius"`
}

// Contains reports whether p lies inside the circle.
func (c Circle) Contains(p geo.Point) bool {
	return c.Center.DistanceTo(p) < c.Radius
}

// Zone is the union of a side's threat circles.
type Zone struct {
	Circles []Circle `json:"circles"`
}

// Threatened implements campaign.ThreatZone.
func (z *Zone) Threatened(p geo.Point) bool {
	for _, c := range z.Circles {
		if c.Contains(p) {
			return true
		}
	}
	return false
}

// ThreatZones builds zones from live installations and stationed aircraft.
type ThreatZones struct{}

// ThreatZones implements campaign.ThreatZoneBuilder.
func (ThreatZones) ThreatZones(g *campaign.Game, side theater.Side) campaign.ThreatZone {
	zone := &Zone{}
	for _, cp := range g.Theater.PointsFor(side) {
		if cp.Base.TotalAircraft() > 0 {
			zone.Circles = append(zone.Circles, Circle{Center: cp.Position, Radius: AirfieldThreatRange})
		}
		for _, inst := range cp.Installations {
			if !inst.Alive() {
				continue
			}
			for _, group := range inst.Groups {
				if r, ok := threatRanges[group.Kind]; ok && len(group.Units) > 0 {
					zone.Circles = append(zone.Circles, Circle{Center: inst.Position, Radius: r})
				}
			}
		}
	}
	return zone
}
