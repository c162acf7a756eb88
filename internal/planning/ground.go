package planning

import (
	"fmt"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/theater"
)

// Strength margins that tip a front into attack or retreat.
const (
	aggressiveMargin = 0.2
	retreatMargin    = 0.3
)

// Ground picks a stance on each front from the relative base strengths.
type Ground struct{}

// PlanGroundWar implements campaign.GroundPlanner. The weakest opposing
// neighbor is the one engaged.
func (Ground) PlanGroundWar(g *campaign.Game, cp *theater.ControlPoint) (campaign.GroundPlan, error) {
	var enemy *theater.ControlPoint
	for _, n := range g.Theater.Neighbors(cp) {
		if n.Captured == cp.Captured || n.IsFleet() {
			continue
		}
		if enemy == nil || n.Strength < enemy.Strength {
			enemy = n
		}
	}
	if enemy == nil {
		return campaign.GroundPlan{}, fmt.Errorf("%s has no front line", cp.Name)
	}

	stance := campaign.StanceDefensive
	switch {
	case cp.Strength > enemy.Strength+aggressiveMargin:
		stance = campaign.StanceAggressive
	case cp.Strength < enemy.Strength-retreatMargin:
		stance = campaign.StanceRetreat
	}
	return campaign.GroundPlan{
		ControlPoint: cp.ID,
		Enemy:        enemy.ID,
		Stance:       stance,
		Armor:        cp.Base.TotalArmor(),
	}, nil
}
