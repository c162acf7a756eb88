// Package theater provides the campaign map: terrain, control points,
// installations, front lines, and installation placement.
package theater

import (
	"fmt"
	"strings"

	"github.com/talgya/frontline/internal/geo"
)

// Side is the owning coalition of a control point. It is persisted as the
// boolean "captured" flag, so the polarity below must never change.
type Side bool

const (
	Player Side = true  // Blue coalition, captured == true
	Enemy  Side = false // Red coalition
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return !s
}

func (s Side) String() string {
	if s == Player {
		return "blue"
	}
	return "red"
}

// Importance bounds for control points.
const (
	ImportanceLow    = 1.0
	ImportanceMedium = 1.2
	ImportanceHigh   = 1.4
)

// ControlPointID is a stable identifier for a control point.
type ControlPointID int

// ControlPointType determines which installation policy applies to a base.
type ControlPointType uint8

const (
	TypeAirbase      ControlPointType = iota // Land airfield
	TypeFOB                                  // Forward operating base
	TypeCarrierGroup                         // Aircraft carrier group at sea
	TypeLHAGroup                             // Amphibious assault ship at sea
)

var controlPointTypeNames = map[ControlPointType]string{
	TypeAirbase:      "airbase",
	TypeFOB:          "fob",
	TypeCarrierGroup: "carrier",
	TypeLHAGroup:     "lha",
}

func (t ControlPointType) String() string {
	if name, ok := controlPointTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseControlPointType converts a type name to a ControlPointType.
func ParseControlPointType(name string) (ControlPointType, error) {
	for t, n := range controlPointTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown control point type %q", name)
}

// Base is the unit inventory stationed at a control point, by unit type.
type Base struct {
	Aircraft   map[string]int `json:"aircraft"`
	Armor      map[string]int `json:"armor"`
	AirDefense map[string]int `json:"air_defense"`
}

// NewBase returns an empty inventory.
func NewBase() Base {
	return Base{
		Aircraft:   make(map[string]int),
		Armor:      make(map[string]int),
		AirDefense: make(map[string]int),
	}
}

// Inventory classes used by deliveries.
const (
	ClassAircraft   = "aircraft"
	ClassArmor      = "armor"
	ClassAirDefense = "air_defense"
)

// Commission adds count units of unitType to the inventory class.
func (b *Base) Commission(class, unitType string, count int) {
	if b.Aircraft == nil || b.Armor == nil || b.AirDefense == nil {
		fresh := NewBase()
		if b.Aircraft == nil {
			b.Aircraft = fresh.Aircraft
		}
		if b.Armor == nil {
			b.Armor = fresh.Armor
		}
		if b.AirDefense == nil {
			b.AirDefense = fresh.AirDefense
		}
	}
	switch class {
	case ClassAircraft:
		b.Aircraft[unitType] += count
	case ClassArmor:
		b.Armor[unitType] += count
	case ClassAirDefense:
		b.AirDefense[unitType] += count
	}
}

// TotalAircraft returns the number of aircraft stationed.
func (b *Base) TotalAircraft() int {
	return sum(b.Aircraft)
}

// TotalArmor returns the number of ground vehicles stationed.
func (b *Base) TotalArmor() int {
	return sum(b.Armor)
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// Delivery is a purchase waiting to arrive at a control point next turn.
type Delivery struct {
	Class    string `json:"class"`
	UnitType string `json:"unit_type"`
	Count    int    `json:"count"`
}

// ControlPoint is a capturable base on the theater map.
type ControlPoint struct {
	ID             ControlPointID   `json:"id"`
	Name           string           `json:"name"`
	Type           ControlPointType `json:"type"`
	Position       geo.Point        `json:"position"`
	Captured       Side             `json:"captured"`
	CapturedInvert Side             `json:"captured_invert"`
	Strength       float64          `json:"strength"` // 0.0–1.0
	Importance     float64          `json:"importance"`
	Links          []ControlPointID `json:"links"`

	Installations []*Installation `json:"installations"`

	Base              Base       `json:"base"`
	Pending           []Delivery `json:"pending_deliveries,omitempty"`
	RunwayDamaged     bool       `json:"runway_damaged,omitempty"`
	RunwayRepairTurns int        `json:"runway_repair_turns"` // Turns until a paid repair completes
}

// NewControlPoint creates a full-strength control point with an empty base.
func NewControlPoint(id ControlPointID, name string, typ ControlPointType, pos geo.Point, importance float64) *ControlPoint {
	return &ControlPoint{
		ID:         id,
		Name:       name,
		Type:       typ,
		Position:   pos,
		Strength:   1.0,
		Importance: importance,
		Base:       NewBase(),
	}
}

// IsCarrier reports whether the control point is an aircraft carrier group.
func (cp *ControlPoint) IsCarrier() bool {
	return cp.Type == TypeCarrierGroup
}

// IsLHA reports whether the control point is an amphibious assault ship.
func (cp *ControlPoint) IsLHA() bool {
	return cp.Type == TypeLHAGroup
}

// IsFleet reports whether the control point is a ship.
func (cp *ControlPoint) IsFleet() bool {
	return cp.IsCarrier() || cp.IsLHA()
}

// IsGlobal reports whether the control point has no physical neighbors on
// the map. Global control points get no ground installations.
func (cp *ControlPoint) IsGlobal() bool {
	return len(cp.Links) == 0
}

// AffectStrength adjusts strength by delta, clamped to [0, 1].
func (cp *ControlPoint) AffectStrength(delta float64) {
	cp.Strength = clamp(cp.Strength+delta, 0, 1)
}

// IsLinked reports whether other is directly connected to cp.
func (cp *ControlPoint) IsLinked(other ControlPointID) bool {
	for _, id := range cp.Links {
		if id == other {
			return true
		}
	}
	return false
}

func (cp *ControlPoint) String() string {
	return fmt.Sprintf("%s (%d)", cp.Name, cp.ID)
}
