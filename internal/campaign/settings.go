package campaign

import "github.com/talgya/frontline/internal/theater"

// Settings are the per-campaign options chosen at generation time and
// persisted with the campaign.
type Settings struct {
	// Automation of the player's procurement. The enemy always automates
	// everything.
	AutomateRunwayRepair            bool `yaml:"automate_runway_repair" json:"automate_runway_repair"`
	AutomateFrontLineReinforcements bool `yaml:"automate_front_line_reinforcements" json:"automate_front_line_reinforcements"`
	AutomateAircraftReinforcements  bool `yaml:"automate_aircraft_reinforcements" json:"automate_aircraft_reinforcements"`

	// Income multipliers per side.
	PlayerIncomeMultiplier float64 `yaml:"player_income_multiplier" json:"player_income_multiplier"`
	EnemyIncomeMultiplier  float64 `yaml:"enemy_income_multiplier" json:"enemy_income_multiplier"`

	// Performance culling.
	PerfCulling          bool    `yaml:"perf_culling" json:"perf_culling"`
	PerfCullingDistance  float64 `yaml:"perf_culling_distance" json:"perf_culling_distance"` // Kilometers
	PerfDoNotCullCarrier bool    `yaml:"perf_do_not_cull_carrier" json:"perf_do_not_cull_carrier"`

	// Generation options.
	DoNotGenerateCarrier bool `yaml:"do_not_generate_carrier" json:"do_not_generate_carrier"`
	DoNotGenerateLHA     bool `yaml:"do_not_generate_lha" json:"do_not_generate_lha"`
	NoPlayerNavy         bool `yaml:"no_player_navy" json:"no_player_navy"`
	NoEnemyNavy          bool `yaml:"no_enemy_navy" json:"no_enemy_navy"`
}

// DefaultSettings returns the settings a new campaign starts with.
func DefaultSettings() Settings {
	return Settings{
		PlayerIncomeMultiplier: 1.0,
		EnemyIncomeMultiplier:  1.0,
		PerfCulling:            false,
		PerfCullingDistance:    100,
		PerfDoNotCullCarrier:   true,
	}
}

// IncomeMultiplier returns the income multiplier for a side.
func (s Settings) IncomeMultiplier(side theater.Side) float64 {
	if side == theater.Player {
		return s.PlayerIncomeMultiplier
	}
	return s.EnemyIncomeMultiplier
}
