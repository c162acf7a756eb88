// Package groundgen seeds ground installations (air defenses, buildings,
// navies, missile sites, carrier groups) onto a fresh theater.
package groundgen

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/namegen"
	"github.com/talgya/frontline/internal/theater"
)

// Search radii for each installation kind.
const (
	objectiveMinRange   = 10000
	objectiveMaxRange   = 40000
	navyMinRange        = 5000
	navyMaxRange        = 40000
	missileMinRange     = 2500
	missileMaxRange     = 40000
	baseDefenseMinRange = 800
	baseDefenseMaxRange = 3200
)

// Options gate optional installation kinds.
type Options struct {
	NoPlayerNavy bool
	NoEnemyNavy  bool
}

// Generator places installations for every control point of a theater.
type Generator struct {
	Theater   *theater.Theater
	Player    *faction.Faction
	Enemy     *faction.Faction
	Options   Options
	Units     UnitGroupGenerator
	Templates Templates
	Names     *namegen.Generator

	rng *rand.Rand
}

// New creates a generator using the default templates and unit generator.
func New(th *theater.Theater, player, enemy *faction.Faction, opts Options, rng *rand.Rand, names *namegen.Generator) *Generator {
	return &Generator{
		Theater:   th,
		Player:    player,
		Enemy:     enemy,
		Options:   opts,
		Units:     &FactionUnits{Theater: th, Rng: rng},
		Templates: DefaultTemplates(),
		Names:     names,
		rng:       rng,
	}
}

// Generate populates every control point. Control points whose carrier or
// LHA group cannot be created are removed from the theater.
func (g *Generator) Generate() error {
	// Copied so points can be removed while iterating.
	points := append([]*theater.ControlPoint(nil), g.Theater.ControlPoints...)
	for _, cp := range points {
		keep, err := g.generateFor(cp)
		if err != nil {
			return fmt.Errorf("generate %s: %w", cp.Name, err)
		}
		if !keep {
			g.Theater.Remove(cp)
			slog.Info("control point removed from theater", "control_point", cp.Name)
			continue
		}
		slog.Debug("control point populated", "control_point", cp.Name, "installations", len(cp.Installations))
	}
	return nil
}

func (g *Generator) generateFor(cp *theater.ControlPoint) (bool, error) {
	f := g.Enemy
	if cp.Captured == theater.Player {
		f = g.Player
	}
	s := &site{Generator: g, cp: cp, faction: f}
	cp.Installations = nil

	switch cp.Type {
	case theater.TypeCarrierGroup:
		return s.fleet(theater.GroupCarrier, theater.CategoryCarrier, f.CarrierNames)
	case theater.TypeLHAGroup:
		return s.fleet(theater.GroupLHA, theater.CategoryLHA, f.HelicopterCarrierNames)
	default:
		return s.airbase()
	}
}

// site generates installations for a single control point.
type site struct {
	*Generator
	cp      *theater.ControlPoint
	faction *faction.Faction
}

func (s *site) airbase() (bool, error) {
	if s.cp.IsGlobal() {
		return true, nil
	}
	if err := s.base(); err != nil {
		return false, err
	}
	n := 3 + s.rng.Intn(4)
	for i := 0; i < n; i++ {
		s.baseDefense(i)
	}
	return true, nil
}

func (s *site) fleet(kind theater.GroupKind, category theater.Category, names []string) (bool, error) {
	if err := s.base(); err != nil {
		return false, err
	}
	if len(names) == 0 {
		slog.Info("skipping fleet control point, faction has no ship names",
			"control_point", s.cp.Name, "faction", s.faction.Name, "kind", kind)
		return false, nil
	}

	inst := &theater.Installation{
		GroupID:        s.Theater.NextGroupID(),
		Name:           s.Names.ObjectiveName(),
		Category:       category,
		Position:       s.cp.Position,
		ControlPointID: s.cp.ID,
	}
	group := s.Units.Generate(kind, s.faction, inst)
	if group == nil {
		slog.Info("skipping fleet control point, faction has no ships of this kind",
			"control_point", s.cp.Name, "faction", s.faction.Name, "kind", kind)
		return false, nil
	}
	inst.Groups = []*theater.UnitGroup{group}
	s.cp.Installations = append(s.cp.Installations, inst)
	s.cp.Name = names[s.rng.Intn(len(names))]
	return true, nil
}

// base places the objectives shared by every control point type.
func (s *site) base() error {
	if s.cp.IsGlobal() {
		return nil
	}

	s.airDefenseSite()

	amount := 2 + s.rng.Intn(5)
	for i := 0; i < amount; i++ {
		if s.rng.Intn(4) == 0 {
			s.airDefenseSite()
			continue
		}
		if len(s.faction.BuildingSet) == 0 {
			continue
		}
		category := s.faction.BuildingSet[s.rng.Intn(len(s.faction.BuildingSet))]
		if err := s.building(category); err != nil {
			return err
		}
	}

	// Even airbases get ships when the search finds water nearby.
	if s.faction.HasNavy() && !s.navyDisabled() {
		for i := 0; i < s.faction.NavyGroupCount; i++ {
			s.ship()
		}
	}
	if s.faction.HasMissiles() {
		for i := 0; i < s.faction.MissileGroupCount; i++ {
			s.missileSite()
		}
	}
	return nil
}

func (s *site) navyDisabled() bool {
	if s.cp.Captured == theater.Player {
		return s.Options.NoPlayerNavy
	}
	return s.Options.NoEnemyNavy
}

func (s *site) find(wantsLand bool, minRange, maxRange float64, existing []*theater.Installation, baseDefense bool) (geo.Point, bool) {
	return theater.FindLocation(s.rng, theater.PlacementQuery{
		WantsLand:     wantsLand,
		Near:          s.cp.Position,
		Theater:       s.Theater,
		MinRange:      minRange,
		MaxRange:      maxRange,
		Existing:      existing,
		IsBaseDefense: baseDefense,
	})
}

func (s *site) building(category string) error {
	variants := s.Templates[category]
	if len(variants) == 0 {
		return fmt.Errorf("faction %q uses building category %q with no template", s.faction.Name, category)
	}
	name := s.Names.ObjectiveName()
	template := variants[s.rng.Intn(len(variants))]

	point, ok := s.find(category != "oil", objectiveMinRange, objectiveMaxRange, s.cp.Installations, false)
	if !ok {
		slog.Error("could not find point for objective", "objective", name, "control_point", s.cp.Name)
		return nil
	}

	groupID := s.Theater.NextGroupID()
	for i, unit := range template {
		s.cp.Installations = append(s.cp.Installations, &theater.Installation{
			GroupID:        groupID,
			ObjectID:       i + 1,
			Name:           name,
			Category:       theater.CategoryBuilding,
			Subcategory:    category,
			Position:       point.Add(unit.Offset),
			Heading:        unit.Heading,
			ControlPointID: s.cp.ID,
			UnitType:       unit.Type,
		})
	}
	return nil
}

func (s *site) airDefenseSite() {
	name := s.Names.ObjectiveName()
	pos, ok := s.find(true, objectiveMinRange, objectiveMaxRange, s.cp.Installations, false)
	if !ok {
		slog.Error("could not find point for air defense site", "objective", name, "control_point", s.cp.Name)
		return
	}
	inst := s.newGroupSite(name, theater.CategoryAA, pos)
	if group := s.Units.Generate(theater.GroupSAM, s.faction, inst); group != nil {
		inst.Groups = []*theater.UnitGroup{group}
	}
	s.cp.Installations = append(s.cp.Installations, inst)
}

func (s *site) ship() {
	pos, ok := s.find(false, navyMinRange, navyMaxRange, s.cp.Installations, false)
	if !ok {
		slog.Error("could not find point for navy", "control_point", s.cp.Name)
		return
	}
	inst := s.newGroupSite(s.Names.ObjectiveName(), theater.CategoryNavy, pos)
	group := s.Units.Generate(theater.GroupShip, s.faction, inst)
	if group == nil {
		return
	}
	inst.Groups = []*theater.UnitGroup{group}
	s.cp.Installations = append(s.cp.Installations, inst)
}

func (s *site) missileSite() {
	pos, ok := s.find(true, missileMinRange, missileMaxRange, s.cp.Installations, false)
	if !ok {
		slog.Info("could not find point for missile site", "control_point", s.cp.Name)
		return
	}
	inst := s.newGroupSite(s.Names.ObjectiveName(), theater.CategoryMissile, pos)
	group := s.Units.Generate(theater.GroupMissile, s.faction, inst)
	if group == nil {
		return
	}
	inst.Groups = []*theater.UnitGroup{group}
	s.cp.Installations = append(s.cp.Installations, inst)
}

func (s *site) baseDefense(index int) {
	pos, ok := s.find(true, baseDefenseMinRange, baseDefenseMaxRange, nil, true)
	if !ok {
		slog.Error("could not find position for base defense", "control_point", s.cp.Name, "index", index)
		return
	}
	inst := s.newGroupSite(s.Names.ObjectiveName(), theater.CategoryAA, pos)
	inst.ForAirbase = true
	if group := s.Units.Generate(s.defenseKind(index), s.faction, inst); group != nil {
		inst.Groups = []*theater.UnitGroup{group}
	}
	s.cp.Installations = append(s.cp.Installations, inst)
}

// defenseKind picks the base-defense group for the index-th site: the first
// is always armor, the second a SAM half the time, later ones SHORAD a
// third of the time.
func (s *site) defenseKind(index int) theater.GroupKind {
	switch {
	case index == 0:
		return theater.GroupArmor
	case index == 1:
		if s.rng.Intn(2) == 0 {
			return theater.GroupSAM
		}
		return theater.GroupArmor
	default:
		if s.rng.Intn(3) == 0 {
			return theater.GroupSHORAD
		}
		return theater.GroupArmor
	}
}

func (s *site) newGroupSite(name string, category theater.Category, pos geo.Point) *theater.Installation {
	return &theater.Installation{
		GroupID:        s.Theater.NextGroupID(),
		Name:           name,
		Category:       category,
		Position:       pos,
		Heading:        s.cp.Position.HeadingTo(pos),
		ControlPointID: s.cp.ID,
	}
}
