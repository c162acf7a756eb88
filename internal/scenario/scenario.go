// Package scenario creates new campaigns: it prepares the theater, stocks
// the enemy bases, places ground installations and starts the game.
package scenario

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/groundgen"
	"github.com/talgya/frontline/internal/namegen"
	"github.com/talgya/frontline/internal/theater"
)

// Enemy base stocking.
const (
	UnitVariety            = 6
	UnitCountImportanceLog = 1.3
)

// CountByTask is the base number of units commissioned per task.
var CountByTask = map[faction.Task]float64{
	faction.TaskStrike:     12,
	faction.TaskCAP:        8,
	faction.TaskCAS:        4,
	faction.TaskAirDefense: 1,
}

var stockingOrder = []faction.Task{faction.TaskStrike, faction.TaskCAP, faction.TaskCAS, faction.TaskAirDefense}

// Options describe the campaign to create.
type Options struct {
	Seed        int64
	Player      *faction.Faction
	Enemy       *faction.Faction
	StartDate   time.Time
	Settings    campaign.Settings
	Budget      float64
	EnemyBudget float64
	Multiplier  float64 // Scales enemy base stocking
	Midgame     bool    // Player starts holding the first half of the bases
	Inverted    bool    // Sides start from their inverted ownership
}

// Generator builds a new campaign on a theater.
type Generator struct {
	Theater *theater.Theater
	Options Options

	// Units overrides the unit group generator used for installations.
	Units groundgen.UnitGroupGenerator

	names *namegen.Generator
	rng   *rand.Rand
}

// New creates a scenario generator.
func New(th *theater.Theater, opts Options) *Generator {
	return &Generator{
		Theater: th,
		Options: opts,
		names:   namegen.New(opts.Seed),
		rng:     rand.New(rand.NewSource(opts.Seed + 1)),
	}
}

// Generate runs every generation step and starts the campaign with deps.
func (g *Generator) Generate(deps campaign.Deps) (*campaign.Game, error) {
	if g.Options.Player == nil || g.Options.Enemy == nil {
		return nil, fmt.Errorf("scenario: both factions are required")
	}
	g.names.Reset(g.Options.Seed)

	g.prepareTheater()
	if err := ValidateImportance(g.Theater); err != nil {
		return nil, err
	}
	g.populateEnemyBases()

	ground := groundgen.New(g.Theater, g.Options.Player, g.Options.Enemy, groundgen.Options{
		NoPlayerNavy: g.Options.Settings.NoPlayerNavy,
		NoEnemyNavy:  g.Options.Settings.NoEnemyNavy,
	}, g.rng, g.names)
	if g.Units != nil {
		ground.Units = g.Units
	}
	if err := ground.Generate(); err != nil {
		return nil, fmt.Errorf("generate installations: %w", err)
	}

	game, err := campaign.New(campaign.Params{
		Seed:        g.Options.Seed,
		Theater:     g.Theater,
		Player:      g.Options.Player,
		Enemy:       g.Options.Enemy,
		StartDate:   g.Options.StartDate,
		Settings:    g.Options.Settings,
		Budget:      g.Options.Budget,
		EnemyBudget: g.Options.EnemyBudget,
	}, deps)
	if err != nil {
		return nil, fmt.Errorf("start campaign: %w", err)
	}

	slog.Info("scenario generated", "theater", g.Theater.Name, "control_points", len(g.Theater.ControlPoints),
		"installations", len(g.Theater.Installations()), "midgame", g.Options.Midgame, "inverted", g.Options.Inverted)
	return game, nil
}

func (g *Generator) prepareTheater() {
	points := g.Theater.ControlPoints
	if g.Options.Midgame && !g.Options.Inverted {
		for _, cp := range points[:len(points)/2] {
			cp.Captured = theater.Player
		}
	}

	var remove []*theater.ControlPoint
	for _, cp := range points {
		switch {
		case cp.IsCarrier() && g.Options.Settings.DoNotGenerateCarrier:
			remove = append(remove, cp)
		case cp.IsLHA() && g.Options.Settings.DoNotGenerateLHA:
			remove = append(remove, cp)
		}
		if g.Options.Inverted {
			cp.Captured = cp.CapturedInvert
		}
	}
	for _, cp := range remove {
		g.Theater.Remove(cp)
		slog.Info("fleet control point disabled by settings", "control_point", cp.Name)
	}

	// Inverted midgame hands the player the back half instead.
	if g.Options.Midgame && g.Options.Inverted {
		points = g.Theater.ControlPoints
		for _, cp := range points[len(points)-len(points)/2:] {
			cp.Captured = theater.Player
		}
	}
}

// ValidateImportance checks every control point's importance is within
// [ImportanceLow, ImportanceHigh].
func ValidateImportance(th *theater.Theater) error {
	for _, cp := range th.ControlPoints {
		if cp.Importance < theater.ImportanceLow || cp.Importance > theater.ImportanceHigh {
			return fmt.Errorf("control point %s importance must be between %.1f and %.1f, is %.2f",
				cp.Name, theater.ImportanceLow, theater.ImportanceHigh, cp.Importance)
		}
	}
	return nil
}

func (g *Generator) populateEnemyBases() {
	for _, cp := range g.Theater.EnemyPoints() {
		g.populateEnemyBase(cp)
	}
}

// populateEnemyBase resets a base and stocks it by importance: more
// important bases get more units of more capable types.
func (g *Generator) populateEnemyBase(cp *theater.ControlPoint) {
	cp.Base = theater.NewBase()
	cp.Strength = 1

	factor := (cp.Importance - theater.ImportanceLow) / (theater.ImportanceHigh - theater.ImportanceLow)
	countLog := math.Log(cp.Importance+0.01) / math.Log(UnitCountImportanceLog)

	for _, task := range stockingOrder {
		types := g.Options.Enemy.ChooseUnits(task, factor, UnitVariety)
		if len(types) == 0 {
			continue
		}
		count := math.Max(CountByTask[task]*g.multiplier()*(1+countLog), 1)
		perType := max(int(count/float64(len(types))), 1)

		class := theater.ClassAircraft
		if task == faction.TaskAirDefense {
			class = theater.ClassAirDefense
		}
		for _, t := range types {
			cp.Base.Commission(class, t, perType)
		}
	}
	slog.Debug("enemy base stocked", "control_point", cp.Name,
		"aircraft", cp.Base.TotalAircraft(), "air_defense", len(cp.Base.AirDefense))
}

func (g *Generator) multiplier() float64 {
	if g.Options.Multiplier <= 0 {
		return 1
	}
	return g.Options.Multiplier
}
