// Procurement: spends a side's budget on runway repairs, front-line armor
// and the aircraft its mission planner asked for.
package planning

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/theater"
)

// Prices of everything procurement can buy.
type Prices struct {
	Aircraft     float64 `yaml:"aircraft" json:"aircraft"`
	Armor        float64 `yaml:"armor" json:"armor"`
	RunwayRepair float64 `yaml:"runway_repair" json:"runway_repair"`
}

// DefaultPrices returns the baseline price list.
func DefaultPrices() Prices {
	return Prices{Aircraft: 20, Armor: 8, RunwayRepair: 100}
}

// RunwayRepairTurns is how long a paid runway repair takes.
const RunwayRepairTurns = 4

// Allocator is the baseline procurement.
type Allocator struct {
	Prices Prices
}

// SpendBudget implements campaign.ProcurementAllocator. The returned budget
// is never larger than the one given.
func (a *Allocator) SpendBudget(g *campaign.Game, order campaign.ProcurementOrder) (float64, error) {
	if a.Prices.Aircraft <= 0 || a.Prices.Armor <= 0 || a.Prices.RunwayRepair <= 0 {
		return order.Budget, errors.New("procurement prices must be positive")
	}
	budget := order.Budget
	if budget <= 0 {
		return budget, nil
	}

	if order.ManageRunways {
		budget = a.repairRunways(g, order.Side, budget)
	}
	if order.ManageFrontLine {
		front := budget * order.FrontLineShare
		budget -= front - a.buyArmor(g, order, front)
	}
	if order.ManageAircraft {
		budget = a.buyAircraft(g, order, budget)
	}

	slog.Debug("procurement", "side", order.Side, "budget", order.Budget, "left", budget)
	return budget, nil
}

func (a *Allocator) repairRunways(g *campaign.Game, side theater.Side, budget float64) float64 {
	for _, cp := range g.Theater.PointsFor(side) {
		if !cp.RunwayDamaged || cp.RunwayRepairTurns > 0 || budget < a.Prices.RunwayRepair {
			continue
		}
		budget -= a.Prices.RunwayRepair
		cp.RunwayRepairTurns = RunwayRepairTurns
		slog.Info("runway repair ordered", "control_point", cp.Name)
	}
	return budget
}

// buyArmor spreads armor over the side's front-line bases round robin and
// returns what is left of budget.
func (a *Allocator) buyArmor(g *campaign.Game, order campaign.ProcurementOrder, budget float64) float64 {
	units := order.Faction.FrontlineUnits
	var bases []*theater.ControlPoint
	for _, cp := range g.Theater.PointsFor(order.Side) {
		if g.Theater.HasFrontLine(cp) {
			bases = append(bases, cp)
		}
	}
	if len(units) == 0 || len(bases) == 0 {
		return budget
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i].ID < bases[j].ID })

	for i := 0; budget >= a.Prices.Armor; i++ {
		cp := bases[i%len(bases)]
		deliver(cp, theater.ClassArmor, units[g.Rng().Intn(len(units))], 1)
		budget -= a.Prices.Armor
	}
	return budget
}

func (a *Allocator) buyAircraft(g *campaign.Game, order campaign.ProcurementOrder, budget float64) float64 {
	for _, req := range order.Requests {
		cp := g.Theater.ControlPoint(req.Near)
		if cp == nil || cp.Captured != order.Side {
			continue
		}
		types := order.Faction.UnitsFor(req.Task)
		if len(types) == 0 {
			continue
		}
		for n := 0; n < req.Count && budget >= a.Prices.Aircraft; n++ {
			deliver(cp, theater.ClassAircraft, types[g.Rng().Intn(len(types))], 1)
			budget -= a.Prices.Aircraft
		}
	}
	return budget
}

// deliver queues units for arrival at cp next turn, merging with an
// existing delivery of the same type.
func deliver(cp *theater.ControlPoint, class, unitType string, count int) {
	for i := range cp.Pending {
		if cp.Pending[i].Class == class && cp.Pending[i].UnitType == unitType {
			cp.Pending[i].Count += count
			return
		}
	}
	cp.Pending = append(cp.Pending, theater.Delivery{Class: class, UnitType: unitType, Count: count})
}
