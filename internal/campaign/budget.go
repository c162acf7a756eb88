// Budget: income collection and procurement orchestration.
package campaign

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/frontline/internal/theater"
)

// AdjustBudget adds amount (which may be negative) to a side's budget.
func (g *Game) AdjustBudget(amount float64, side theater.Side) {
	if side == theater.Player {
		g.Budget += amount
	} else {
		g.EnemyBudget += amount
	}
}

// BudgetFor returns a side's current budget.
func (g *Game) BudgetFor(side theater.Side) float64 {
	if side == theater.Player {
		return g.Budget
	}
	return g.EnemyBudget
}

// collectIncome credits both sides, enemy first.
func (g *Game) collectIncome() {
	enemy := g.deps.Income.Income(g, theater.Enemy)
	g.EnemyBudget += enemy
	player := g.deps.Income.Income(g, theater.Player)
	g.Budget += player

	slog.Info("income collected", "turn", g.Turn,
		"player", humanize.Commaf(player), "enemy", humanize.Commaf(enemy),
		"player_budget", humanize.Commaf(g.Budget), "enemy_budget", humanize.Commaf(g.EnemyBudget))
}

func (g *Game) frontLineShare() float64 {
	if g.Turn == 0 {
		return OpeningFrontLineShare
	}
	return FrontLineShare
}

// planProcurement lets each side spend its budget on what its mission
// planner asked for. The player's automation follows the settings; the
// enemy always automates everything.
func (g *Game) planProcurement(blue, red MissionPlan) error {
	share := g.frontLineShare()

	budget, err := g.spend(ProcurementOrder{
		Side:            theater.Player,
		Faction:         g.PlayerFaction,
		Budget:          g.BudgetFor(theater.Player),
		Requests:        blue.Requests,
		FrontLineShare:  share,
		ManageRunways:   g.Settings.AutomateRunwayRepair,
		ManageFrontLine: g.Settings.AutomateFrontLineReinforcements,
		ManageAircraft:  g.Settings.AutomateAircraftReinforcements,
	})
	if err != nil {
		return err
	}
	g.Budget = budget

	budget, err = g.spend(ProcurementOrder{
		Side:            theater.Enemy,
		Faction:         g.EnemyFaction,
		Budget:          g.BudgetFor(theater.Enemy),
		Requests:        red.Requests,
		FrontLineShare:  share,
		ManageRunways:   true,
		ManageFrontLine: true,
		ManageAircraft:  true,
	})
	if err != nil {
		return err
	}
	g.EnemyBudget = budget
	return nil
}

func (g *Game) spend(order ProcurementOrder) (float64, error) {
	left, err := g.deps.Procurement.SpendBudget(g, order)
	if err != nil {
		return order.Budget, fmt.Errorf("procurement for %s: %w", order.Side, err)
	}
	if left > order.Budget || (left < 0 && order.Budget >= 0) {
		return order.Budget, fmt.Errorf("procurement for %s returned %.2f from a budget of %.2f", order.Side, left, order.Budget)
	}
	slog.Debug("procurement done", "side", order.Side, "spent", humanize.Commaf(order.Budget-left),
		"left", humanize.Commaf(left))
	return left, nil
}
