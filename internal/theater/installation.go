package theater

import (
	"fmt"

	"github.com/talgya/frontline/internal/geo"
)

// Category classifies installations.
type Category string

const (
	CategoryAA       Category = "aa"
	CategoryBuilding Category = "building"
	CategoryNavy     Category = "navy"
	CategoryMissile  Category = "missile"
	CategoryCarrier  Category = "carrier"
	CategoryLHA      Category = "lha"
)

// GroupKind names the kind of unit group filling an installation.
type GroupKind string

const (
	GroupSAM     GroupKind = "sam"
	GroupSHORAD  GroupKind = "shorad"
	GroupArmor   GroupKind = "armor"
	GroupShip    GroupKind = "ship"
	GroupMissile GroupKind = "missile"
	GroupCarrier GroupKind = "carrier"
	GroupLHA     GroupKind = "lha"
)

// Unit is a single vehicle or ship within a group.
type Unit struct {
	ID       int       `json:"id"`
	Type     string    `json:"type"`
	Position geo.Point `json:"position"`
	Heading  float64   `json:"heading"`
}

// UnitGroup is a set of units spawned together at an installation.
type UnitGroup struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Kind  GroupKind `json:"kind"`
	Units []Unit    `json:"units"`
}

// Installation is a ground object placed near a control point. The pair
// (GroupID, ObjectID) identifies it for the lifetime of the campaign.
type Installation struct {
	GroupID        int            `json:"group_id"`
	ObjectID       int            `json:"object_id"`
	Name           string         `json:"name"`
	Category       Category       `json:"category"`
	Subcategory    string         `json:"subcategory,omitempty"` // Building category, e.g. "ammo"
	Position       geo.Point      `json:"position"`
	Heading        float64        `json:"heading"`
	ControlPointID ControlPointID `json:"control_point_id"`
	UnitType       string         `json:"unit_type,omitempty"` // Static object type for buildings
	ForAirbase     bool           `json:"for_airbase,omitempty"`
	Groups         []*UnitGroup   `json:"groups"`
	Dead           bool           `json:"dead,omitempty"`
}

// UnitCount returns the number of units across all groups.
func (i *Installation) UnitCount() int {
	n := 0
	for _, g := range i.Groups {
		n += len(g.Units)
	}
	return n
}

// Alive reports whether the installation still has something standing.
func (i *Installation) Alive() bool {
	if i.Dead {
		return false
	}
	if i.Category == CategoryBuilding {
		return true
	}
	return i.UnitCount() > 0
}

func (i *Installation) String() string {
	return fmt.Sprintf("%s [%s %d/%d]", i.Name, i.Category, i.GroupID, i.ObjectID)
}
