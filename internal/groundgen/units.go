// Unit group generation: fills a placed installation with faction units.
package groundgen

import (
	"math/rand"

	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/theater"
)

// UnitGroupGenerator produces the unit group for an installation, or nil
// when the faction cannot field that kind of group.
type UnitGroupGenerator interface {
	Generate(kind theater.GroupKind, f *faction.Faction, inst *theater.Installation) *theater.UnitGroup
}

// Group sizes and unit spacing per kind.
var groupSizes = map[theater.GroupKind]int{
	theater.GroupSAM:     4,
	theater.GroupSHORAD:  2,
	theater.GroupArmor:   4,
	theater.GroupShip:    2,
	theater.GroupMissile: 2,
	theater.GroupCarrier: 3, // Carrier plus escorts
	theater.GroupLHA:     2, // LHA plus escort
}

var unitSpacing = map[theater.GroupKind]float64{
	theater.GroupSAM:     150,
	theater.GroupSHORAD:  60,
	theater.GroupArmor:   40,
	theater.GroupShip:    800,
	theater.GroupMissile: 100,
	theater.GroupCarrier: 1500,
	theater.GroupLHA:     1200,
}

// FactionUnits builds groups from the faction's unit lists.
type FactionUnits struct {
	Theater *theater.Theater // Allocates unit IDs
	Rng     *rand.Rand
}

// Generate implements UnitGroupGenerator.
func (u *FactionUnits) Generate(kind theater.GroupKind, f *faction.Faction, inst *theater.Installation) *theater.UnitGroup {
	var lead, escorts []string
	switch kind {
	case theater.GroupSAM:
		lead = f.SAMs
	case theater.GroupSHORAD:
		lead = f.SHORADs
	case theater.GroupArmor:
		lead = f.FrontlineUnits
	case theater.GroupShip:
		lead = f.NavalUnits
	case theater.GroupMissile:
		lead = f.Missiles
	case theater.GroupCarrier:
		lead, escorts = f.AircraftCarrier, f.NavalUnits
	case theater.GroupLHA:
		lead, escorts = f.HelicopterCarrier, f.NavalUnits
	}
	if len(lead) == 0 {
		return nil
	}

	size := groupSizes[kind]
	spacing := unitSpacing[kind]
	leadType := lead[u.Rng.Intn(len(lead))]

	group := &theater.UnitGroup{
		ID:   inst.GroupID,
		Name: inst.Name,
		Kind: kind,
	}
	for i := 0; i < size; i++ {
		unitType := leadType
		if i > 0 && len(escorts) > 0 {
			unitType = escorts[u.Rng.Intn(len(escorts))]
		} else if i > 0 && (kind == theater.GroupCarrier || kind == theater.GroupLHA) {
			break // No escorts available.
		}

		pos := inst.Position
		if i > 0 {
			// Ring around the lead unit.
			pos = inst.Position.PointFromHeading(inst.Heading+float64(i-1)*360/float64(size-1), spacing)
		}
		group.Units = append(group.Units, theater.Unit{
			ID:       u.Theater.NextUnitID(),
			Type:     unitType,
			Position: pos,
			Heading:  inst.Heading,
		})
	}
	return group
}
