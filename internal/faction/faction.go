// Package faction provides the order-of-battle definitions each side draws
// units, buildings and ship names from.
package faction

import "math"

// Task is an aircraft tasking used when commissioning base inventories.
type Task string

const (
	TaskStrike     Task = "strike"
	TaskCAP        Task = "cap"
	TaskCAS        Task = "cas"
	TaskAirDefense Task = "air_defense"
)

// Faction lists everything one coalition can field.
type Faction struct {
	Name    string `yaml:"name" json:"name"`
	Country string `yaml:"country" json:"country"`

	Aircraft   map[Task][]string `yaml:"aircraft" json:"aircraft"`
	AirDefense []string          `yaml:"air_defense" json:"air_defense"` // Base inventory SAM types

	SAMs           []string `yaml:"sams" json:"sams"`
	SHORADs        []string `yaml:"shorads" json:"shorads"`
	FrontlineUnits []string `yaml:"frontline_units" json:"frontline_units"`

	NavalUnits     []string `yaml:"naval_units" json:"naval_units"`
	NavyGroupCount int      `yaml:"navy_group_count" json:"navy_group_count"`

	Missiles          []string `yaml:"missiles" json:"missiles"`
	MissileGroupCount int      `yaml:"missile_group_count" json:"missile_group_count"`

	AircraftCarrier        []string `yaml:"aircraft_carrier" json:"aircraft_carrier"`
	HelicopterCarrier      []string `yaml:"helicopter_carrier" json:"helicopter_carrier"`
	CarrierNames           []string `yaml:"carrier_names" json:"carrier_names"`
	HelicopterCarrierNames []string `yaml:"helicopter_carrier_names" json:"helicopter_carrier_names"`

	BuildingSet []string `yaml:"building_set" json:"building_set"`
}

// HasNavy reports whether the faction can generate naval groups.
func (f *Faction) HasNavy() bool {
	return len(f.NavalUnits) > 0
}

// HasMissiles reports whether the faction can generate missile sites.
func (f *Faction) HasMissiles() bool {
	return len(f.Missiles) > 0
}

// UnitsFor returns the unit types used for a commissioning task.
func (f *Faction) UnitsFor(task Task) []string {
	if task == TaskAirDefense {
		return f.AirDefense
	}
	return f.Aircraft[task]
}

// ChooseUnits picks up to variety unit types for task. Types are listed from
// least to most capable; importanceFactor in [0, 1] slides the window
// towards the capable end.
func (f *Faction) ChooseUnits(task Task, importanceFactor float64, variety int) []string {
	units := f.UnitsFor(task)
	if len(units) == 0 || variety <= 0 {
		return nil
	}
	if len(units) <= variety {
		return append([]string(nil), units...)
	}
	factor := math.Max(0, math.Min(1, importanceFactor))
	start := int(math.Round(factor * float64(len(units)-variety)))
	return append([]string(nil), units[start:start+variety]...)
}
