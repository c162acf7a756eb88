// Collaborators: the planning services a campaign delegates to each turn.
package campaign

import (
	"math/rand"

	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
)

// ThreatZone answers whether a point is covered by one side's defenses.
type ThreatZone interface {
	Threatened(p geo.Point) bool
}

// NavMesh routes flights between two points.
type NavMesh interface {
	Route(from, to geo.Point) []geo.Point
}

// MissionType is the primary task of a package.
type MissionType string

const (
	MissionBARCAP MissionType = "barcap"
	MissionCAS    MissionType = "cas"
	MissionStrike MissionType = "strike"
)

// Target is what a package is flying against.
type Target struct {
	Name     string    `json:"name"`
	Position geo.Point `json:"position"`
}

// Package is one planned mission.
type Package struct {
	Task     MissionType            `json:"task"`
	Target   Target                 `json:"target"`
	Origin   theater.ControlPointID `json:"origin"`
	UnitType string                 `json:"unit_type"`
	Aircraft int                    `json:"aircraft"`
	Route    []geo.Point            `json:"route,omitempty"`
}

// ATO is one side's air tasking order for the turn.
type ATO struct {
	Packages []*Package `json:"packages"`
}

// Clear drops every planned package.
func (a *ATO) Clear() {
	a.Packages = nil
}

// ProcurementRequest asks for aircraft able to fly a task near a base.
type ProcurementRequest struct {
	Task  faction.Task           `json:"task"`
	Near  theater.ControlPointID `json:"near"`
	Count int                    `json:"count"`
}

// MissionPlan is a mission planner's output: packages to fly and the
// aircraft it would have liked to have.
type MissionPlan struct {
	Packages []*Package
	Requests []ProcurementRequest
}

// Stance is a ground planner's posture on one front.
type Stance string

const (
	StanceAggressive Stance = "aggressive"
	StanceDefensive  Stance = "defensive"
	StanceRetreat    Stance = "retreat"
)

// GroundPlan is the ground war plan for one control point with a front line.
type GroundPlan struct {
	ControlPoint theater.ControlPointID `json:"control_point"`
	Enemy        theater.ControlPointID `json:"enemy"`
	Stance       Stance                 `json:"stance"`
	Armor        int                    `json:"armor"`
}

// ProcurementOrder is everything the allocator may spend for one side.
type ProcurementOrder struct {
	Side            theater.Side
	Faction         *faction.Faction
	Budget          float64
	Requests        []ProcurementRequest
	FrontLineShare  float64
	ManageRunways   bool
	ManageFrontLine bool
	ManageAircraft  bool
}

type IncomeSource interface {
	Income(g *Game, side theater.Side) float64
}

type ThreatZoneBuilder interface {
	ThreatZones(g *Game, side theater.Side) ThreatZone
}

type NavMeshBuilder interface {
	NavMesh(opposing ThreatZone, th *theater.Theater) NavMesh
}

type MissionPlanner interface {
	PlanMissions(g *Game, side theater.Side) (MissionPlan, error)
}

type GroundPlanner interface {
	PlanGroundWar(g *Game, cp *theater.ControlPoint) (GroundPlan, error)
}

// ProcurementAllocator spends an order's budget and returns what is left.
type ProcurementAllocator interface {
	SpendBudget(g *Game, order ProcurementOrder) (float64, error)
}

// Upkeep runs per-control-point bookkeeping at the start of each turn.
type Upkeep interface {
	ProcessTurn(g *Game, cp *theater.ControlPoint) error
}

// Deps bundles the collaborators and randomness a campaign runs on.
type Deps struct {
	Income      IncomeSource
	ThreatZones ThreatZoneBuilder
	NavMeshes   NavMeshBuilder
	Missions    MissionPlanner
	Ground      GroundPlanner
	Procurement ProcurementAllocator
	Upkeep      Upkeep
	Rng         *rand.Rand
}

func (d Deps) validate() error {
	switch {
	case d.Income == nil:
		return errMissingDep("income")
	case d.ThreatZones == nil:
		return errMissingDep("threat zones")
	case d.NavMeshes == nil:
		return errMissingDep("nav meshes")
	case d.Missions == nil:
		return errMissingDep("mission planner")
	case d.Ground == nil:
		return errMissingDep("ground planner")
	case d.Procurement == nil:
		return errMissingDep("procurement allocator")
	case d.Upkeep == nil:
		return errMissingDep("upkeep")
	case d.Rng == nil:
		return errMissingDep("rng")
	}
	return nil
}
