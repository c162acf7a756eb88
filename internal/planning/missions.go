package planning

import (
	"fmt"
	"math"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/theater"
)

// DefaultFlightSize is the number of aircraft requested per package.
const DefaultFlightSize = 2

var missionTasks = map[campaign.MissionType]faction.Task{
	campaign.MissionBARCAP: faction.TaskCAP,
	campaign.MissionCAS:    faction.TaskCAS,
	campaign.MissionStrike: faction.TaskStrike,
}

// Missions plans BARCAP over every base with a front line, CAS over every
// front and a strike against the nearest enemy building.
type Missions struct {
	FlightSize int
}

// PlanMissions implements campaign.MissionPlanner.
func (m *Missions) PlanMissions(g *campaign.Game, side theater.Side) (campaign.MissionPlan, error) {
	var plan campaign.MissionPlan
	f := g.FactionFor(side)
	if f == nil {
		return plan, fmt.Errorf("no faction for %s", side)
	}

	for _, cp := range g.Theater.PointsFor(side) {
		if g.Theater.HasFrontLine(cp) {
			m.add(g, &plan, f, side, campaign.MissionBARCAP, cp, campaign.Target{Name: cp.Name, Position: cp.Position})
		}
	}

	for _, fl := range g.Theater.Conflicts() {
		own, enemy := fl.A, fl.B
		if side == theater.Enemy {
			own, enemy = fl.B, fl.A
		}
		m.add(g, &plan, f, side, campaign.MissionCAS, own, campaign.Target{
			Name:     fmt.Sprintf("%s front", enemy.Name),
			Position: fl.Position(),
		})
	}

	if origin, target, ok := nearestEnemyBuilding(g, side); ok {
		m.add(g, &plan, f, side, campaign.MissionStrike, origin, campaign.Target{Name: target.Name, Position: target.Position})
	}
	return plan, nil
}

func (m *Missions) add(g *campaign.Game, plan *campaign.MissionPlan, f *faction.Faction, side theater.Side,
	task campaign.MissionType, origin *theater.ControlPoint, target campaign.Target) {
	size := m.FlightSize
	if size <= 0 {
		size = DefaultFlightSize
	}
	plan.Requests = append(plan.Requests, campaign.ProcurementRequest{
		Task:  missionTasks[task],
		Near:  origin.ID,
		Count: size,
	})

	unitType, available := stationed(origin, f.UnitsFor(missionTasks[task]))
	if available == 0 {
		return
	}
	pkg := &campaign.Package{
		Task:     task,
		Target:   target,
		Origin:   origin.ID,
		UnitType: unitType,
		Aircraft: min(size, available),
	}
	if mesh := g.NavMeshFor(side); mesh != nil {
		pkg.Route = mesh.Route(origin.Position, target.Position)
	}
	plan.Packages = append(plan.Packages, pkg)
}

// stationed returns the first of types with aircraft at cp and how many.
func stationed(cp *theater.ControlPoint, types []string) (string, int) {
	for _, t := range types {
		if n := cp.Base.Aircraft[t]; n > 0 {
			return t, n
		}
	}
	return "", 0
}

func nearestEnemyBuilding(g *campaign.Game, side theater.Side) (*theater.ControlPoint, *theater.Installation, bool) {
	var origin *theater.ControlPoint
	var target *theater.Installation
	best := math.Inf(1)
	for _, cp := range g.Theater.PointsFor(side) {
		if cp.IsFleet() {
			continue
		}
		for _, enemy := range g.Theater.PointsFor(side.Opponent()) {
			for _, inst := range enemy.Installations {
				if inst.Category != theater.CategoryBuilding || !inst.Alive() {
					continue
				}
				if d := cp.Position.DistanceTo(inst.Position); d < best {
					best, origin, target = d, cp, inst
				}
			}
		}
	}
	return origin, target, target != nil
}
