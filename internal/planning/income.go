package planning

import (
	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/theater"
)

// BaseIncome is earned every turn for each control point held.
const BaseIncome = 20

// BuildingRewards is the income of one intact building by category.
var BuildingRewards = map[string]float64{
	"ammo":      2,
	"comms":     10,
	"factory":   10,
	"fuel":      2,
	"oil":       10,
	"power":     4,
	"warehouse": 2,
}

// Income pays each side for its bases and intact buildings.
type Income struct{}

// Income implements campaign.IncomeSource.
func (Income) Income(g *campaign.Game, side theater.Side) float64 {
	total := 0.0
	for _, cp := range g.Theater.PointsFor(side) {
		total += BaseIncome
		for _, inst := range cp.Installations {
			if inst.Category == theater.CategoryBuilding && inst.Alive() {
				total += BuildingRewards[inst.Subcategory]
			}
		}
	}
	return total * g.Settings.IncomeMultiplier(side)
}
