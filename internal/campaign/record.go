package campaign

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/theater"
	"github.com/talgya/frontline/internal/weather"
)

// Record is the persisted surface of a campaign. Threat zones, nav-meshes,
// culling points, plans and events are left out and rebuilt on load.
type Record struct {
	ID            uuid.UUID          `json:"id"`
	Seed          int64              `json:"seed"`
	Settings      Settings           `json:"settings"`
	Theater       *theater.Theater   `json:"theater"`
	PlayerFaction *faction.Faction   `json:"player_faction"`
	EnemyFaction  *faction.Faction   `json:"enemy_faction"`
	PlayerCountry string             `json:"player_country"`
	EnemyCountry  string             `json:"enemy_country"`
	Turn          int                `json:"turn"`
	StartDate     time.Time          `json:"start_date"`
	Budget        float64            `json:"budget"`
	EnemyBudget   float64            `json:"enemy_budget"`
	Conditions    weather.Conditions `json:"conditions"`
	Messages      []Message          `json:"messages"`
	State         TurnState          `json:"state"`
}

// Record captures the game's persisted surface. The record shares the
// theater with the game.
func (g *Game) Record() *Record {
	return &Record{
		ID:            g.ID,
		Seed:          g.Seed,
		Settings:      g.Settings,
		Theater:       g.Theater,
		PlayerFaction: g.PlayerFaction,
		EnemyFaction:  g.EnemyFaction,
		PlayerCountry: g.PlayerCountry,
		EnemyCountry:  g.EnemyCountry,
		Turn:          g.Turn,
		StartDate:     g.StartDate,
		Budget:        g.Budget,
		EnemyBudget:   g.EnemyBudget,
		Conditions:    g.Conditions,
		Messages:      append([]Message(nil), g.Messages...),
		State:         g.State,
	}
}

// Restore rebuilds a game from a record. The terrain is regenerated from
// the stored terrain config when the theater has none attached.
func Restore(r *Record, deps Deps) (*Game, error) {
	if r.Theater == nil {
		return nil, errors.New("restore campaign: record has no theater")
	}
	if r.PlayerFaction == nil || r.EnemyFaction == nil {
		return nil, errors.New("restore campaign: record is missing a faction")
	}
	if r.Theater.Terrain == nil {
		r.Theater.Terrain = theater.Generate(r.Theater.TerrainConfig)
	}

	g := &Game{
		ID:            r.ID,
		Seed:          r.Seed,
		Settings:      r.Settings,
		Theater:       r.Theater,
		PlayerFaction: r.PlayerFaction,
		EnemyFaction:  r.EnemyFaction,
		PlayerCountry: r.PlayerCountry,
		EnemyCountry:  r.EnemyCountry,
		Turn:          r.Turn,
		StartDate:     r.StartDate,
		Budget:        r.Budget,
		EnemyBudget:   r.EnemyBudget,
		Conditions:    r.Conditions,
		Messages:      r.Messages,
		State:         r.State,
	}
	if err := g.Bind(deps); err != nil {
		return nil, fmt.Errorf("restore campaign %s: %w", r.ID, err)
	}
	return g, nil
}
