package planning

import (
	"log/slog"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/theater"
)

// Upkeep delivers last turn's purchases, progresses runway repairs and
// lets enemy bases recover.
type Upkeep struct{}

// ProcessTurn implements campaign.Upkeep.
func (Upkeep) ProcessTurn(g *campaign.Game, cp *theater.ControlPoint) error {
	for _, d := range cp.Pending {
		cp.Base.Commission(d.Class, d.UnitType, d.Count)
	}
	if len(cp.Pending) > 0 {
		slog.Debug("deliveries arrived", "control_point", cp.Name, "orders", len(cp.Pending))
	}
	cp.Pending = nil

	if cp.RunwayRepairTurns > 0 {
		cp.RunwayRepairTurns--
		if cp.RunwayRepairTurns == 0 {
			cp.RunwayDamaged = false
			g.Message("Runway at " + cp.Name + " repaired")
		}
	}

	if cp.Captured == theater.Enemy {
		cp.AffectStrength(campaign.EnemyBaseStrengthRecovery)
	}
	return nil
}
