// Package planning provides the baseline collaborators a campaign runs on:
// income, threat zones, routing, mission and ground planning, procurement
// and per-turn upkeep. Each can be swapped out through campaign.Deps.
package planning

import (
	"math/rand"

	"github.com/talgya/frontline/internal/campaign"
)

// Defaults wires every baseline collaborator around rng.
func Defaults(rng *rand.Rand) campaign.Deps {
	return campaign.Deps{
		Income:      Income{},
		ThreatZones: ThreatZones{},
		NavMeshes:   NavMeshes{},
		Missions:    &Missions{FlightSize: DefaultFlightSize},
		Ground:      Ground{},
		Procurement: &Allocator{Prices: DefaultPrices()},
		Upkeep:      Upkeep{},
		Rng:         rng,
	}
}
