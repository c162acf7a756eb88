// Package campaign runs the turn loop of a persistent campaign: it advances
// the world one turn at a time, collects income, recovers base strength and
// drives the planning collaborators in a fixed order.
package campaign

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
	"github.com/talgya/frontline/internal/weather"
)

// Strength recovered by bases at the start of every turn.
const (
	PlayerBaseStrengthRecovery = 0.2
	EnemyBaseStrengthRecovery  = 0.05
)

// Share of the budget handed to front-line procurement. The opening turn
// keeps more for aircraft to fill the first combat air patrols.
const (
	OpeningFrontLineShare = 0.3
	FrontLineShare        = 0.5
)

var (
	ErrCampaignOver     = errors.New("campaign is over")
	ErrReentrantAdvance = errors.New("turn advance already in progress")
)

func errMissingDep(name string) error {
	return fmt.Errorf("campaign: missing %s collaborator", name)
}

// TurnState is the outcome of a turn.
type TurnState int

const (
	Continue TurnState = iota
	Win
	Loss
)

var turnStateNames = [...]string{"continue", "win", "loss"}

func (s TurnState) String() string {
	if s < Continue || s > Loss {
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
	return turnStateNames[s]
}

// MarshalText encodes the state by name.
func (s TurnState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *TurnState) UnmarshalText(b []byte) error {
	for i, name := range turnStateNames {
		if name == string(b) {
			*s = TurnState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown turn state %q", b)
}

// Message is one entry of the player-facing information log.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Turn  int    `json:"turn"`
}

// EventKind names a turn event.
type EventKind string

const EventFrontLineAttack EventKind = "frontline_attack"

// Event is something the player can fly this turn.
type Event struct {
	Kind     EventKind              `json:"kind"`
	Attacker theater.ControlPointID `json:"attacker"`
	Defender theater.ControlPointID `json:"defender"`
	Location geo.Point              `json:"location"`
}

// Game is a running campaign.
type Game struct {
	ID       uuid.UUID
	Seed     int64
	Settings Settings
	Theater  *theater.Theater

	PlayerFaction *faction.Faction
	EnemyFaction  *faction.Faction
	PlayerCountry string
	EnemyCountry  string

	Turn        int
	StartDate   time.Time
	Budget      float64
	EnemyBudget float64
	Conditions  weather.Conditions
	Messages    []Message
	State       TurnState

	// Recomputed every turn and on load.
	Events      []Event
	BlueATO     ATO
	RedATO      ATO
	GroundPlans map[theater.ControlPointID]GroundPlan

	blueThreat ThreatZone
	redThreat  ThreatZone
	blueNav    NavMesh
	redNav     NavMesh
	culling    []geo.Point

	deps      Deps
	advancing bool
}

// Params describe a campaign about to start.
type Params struct {
	Seed        int64
	Theater     *theater.Theater
	Player      *faction.Faction
	Enemy       *faction.Faction
	StartDate   time.Time
	Settings    Settings
	Budget      float64
	EnemyBudget float64
}

// New starts a campaign at turn zero. Both sides plan their opening missions
// so procurement knows what to buy; nothing is flown yet.
func New(p Params, deps Deps) (*Game, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	g := &Game{
		ID:            uuid.New(),
		Seed:          p.Seed,
		Settings:      p.Settings,
		Theater:       p.Theater,
		PlayerFaction: p.Player,
		EnemyFaction:  p.Enemy,
		PlayerCountry: p.Player.Country,
		EnemyCountry:  p.Enemy.Country,
		StartDate:     truncateDay(p.StartDate),
		Budget:        p.Budget,
		EnemyBudget:   p.EnemyBudget,
		GroundPlans:   make(map[theater.ControlPointID]GroundPlan),
		deps:          deps,
	}
	g.Messages = append(g.Messages, Message{Title: "Game Start", Text: separator, Turn: 0})
	g.Conditions = g.generateConditions()
	g.SanitizeSides()
	g.OnLoad()

	blue, red, err := g.planMissions()
	if err != nil {
		return nil, err
	}
	g.ComputeCullingPoints()
	if err := g.planProcurement(blue, red); err != nil {
		return nil, err
	}

	slog.Info("campaign created", "id", g.ID, "player", g.PlayerFaction.Name, "enemy", g.EnemyFaction.Name,
		"control_points", len(g.Theater.ControlPoints))
	return g, nil
}

var separator = strings.Repeat("-", 40)

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// OnLoad rebuilds the state that is never persisted.
func (g *Game) OnLoad() {
	if g.GroundPlans == nil {
		g.GroundPlans = make(map[theater.ControlPointID]GroundPlan)
	}
	g.computeThreatZones()
	g.ComputeCullingPoints()
}

// Bind attaches collaborators to a restored game and rebuilds transient
// state.
func (g *Game) Bind(deps Deps) error {
	if err := deps.validate(); err != nil {
		return err
	}
	g.deps = deps
	g.OnLoad()
	return nil
}

// SanitizeSides makes sure the two sides fly under different countries.
func (g *Game) SanitizeSides() {
	if g.PlayerCountry != g.EnemyCountry {
		return
	}
	switch g.PlayerCountry {
	case "USA":
		g.EnemyCountry = "USAF Aggressors"
	case "Russia":
		g.EnemyCountry = "USSR"
	default:
		g.EnemyCountry = "Russia"
	}
}

// Advance ends the current turn and sets up the next one. forceNoRecovery
// makes player bases lose strength instead of recovering it.
func (g *Game) Advance(forceNoRecovery bool) (TurnState, error) {
	if g.advancing {
		return g.State, ErrReentrantAdvance
	}
	if g.State != Continue {
		return g.State, ErrCampaignOver
	}
	g.advancing = true
	defer func() { g.advancing = false }()

	slog.Info("passing turn", "turn", g.Turn)
	g.Messages = append(g.Messages, Message{Title: fmt.Sprintf("End of turn #%d", g.Turn), Text: separator, Turn: g.Turn})
	g.Turn++

	for _, cp := range g.Theater.ControlPoints {
		if err := g.deps.Upkeep.ProcessTurn(g, cp); err != nil {
			return g.State, fmt.Errorf("upkeep for %s: %w", cp.Name, err)
		}
	}

	g.collectIncome()
	g.recoverStrength(forceNoRecovery)
	g.Conditions = g.generateConditions()

	return g.initializeTurn()
}

func (g *Game) recoverStrength(forceNoRecovery bool) {
	delta := PlayerBaseStrengthRecovery
	if forceNoRecovery || g.Turn <= 1 {
		delta = -PlayerBaseStrengthRecovery
	}
	for _, cp := range g.Theater.PlayerPoints() {
		if cp.IsFleet() {
			continue
		}
		cp.AffectStrength(delta)
	}
}

// InitializeTurn sets up the current turn: events, win/loss detection and,
// while the campaign continues, all planning for both sides.
func (g *Game) InitializeTurn() (TurnState, error) {
	if g.advancing {
		return g.State, ErrReentrantAdvance
	}
	g.advancing = true
	defer func() { g.advancing = false }()
	return g.initializeTurn()
}

func (g *Game) initializeTurn() (TurnState, error) {
	g.Events = g.Events[:0]
	g.generateEvents()

	g.State = CheckWinLoss(g.Theater.ControlPoints)
	switch g.State {
	case Win:
		g.Message("Congratulations, you are victorious! Start a new campaign to continue.")
		slog.Info("campaign won", "turn", g.Turn)
		return g.State, nil
	case Loss:
		g.Message("Game Over, you lose. Start a new campaign to continue.")
		slog.Info("campaign lost", "turn", g.Turn)
		return g.State, nil
	}

	g.computeThreatZones()
	g.GroundPlans = make(map[theater.ControlPointID]GroundPlan)
	g.BlueATO.Clear()
	g.RedATO.Clear()

	blue, red, err := g.planMissions()
	if err != nil {
		return g.State, err
	}

	for _, cp := range g.Theater.ControlPoints {
		if !g.Theater.HasFrontLine(cp) {
			continue
		}
		plan, err := g.deps.Ground.PlanGroundWar(g, cp)
		if err != nil {
			return g.State, fmt.Errorf("plan ground war for %s: %w", cp.Name, err)
		}
		g.GroundPlans[cp.ID] = plan
	}

	g.ComputeCullingPoints()
	if err := g.planProcurement(blue, red); err != nil {
		return g.State, err
	}

	slog.Info("turn initialized", "turn", g.Turn, "events", len(g.Events),
		"blue_packages", len(g.BlueATO.Packages), "red_packages", len(g.RedATO.Packages))
	return g.State, nil
}

// CheckWinLoss derives the campaign outcome from control point ownership.
func CheckWinLoss(points []*theater.ControlPoint) TurnState {
	var player, enemy bool
	for _, cp := range points {
		if cp.Captured == theater.Player {
			player = true
		} else {
			enemy = true
		}
	}
	switch {
	case !player:
		return Loss
	case !enemy:
		return Win
	default:
		return Continue
	}
}

func (g *Game) generateEvents() {
	for _, fl := range g.Theater.Conflicts() {
		g.Events = append(g.Events, Event{
			Kind:     EventFrontLineAttack,
			Attacker: fl.A.ID,
			Defender: fl.B.ID,
			Location: fl.B.Position,
		})
	}
}

func (g *Game) computeThreatZones() {
	g.blueThreat = g.deps.ThreatZones.ThreatZones(g, theater.Player)
	g.redThreat = g.deps.ThreatZones.ThreatZones(g, theater.Enemy)
	g.blueNav = g.deps.NavMeshes.NavMesh(g.redThreat, g.Theater)
	g.redNav = g.deps.NavMeshes.NavMesh(g.blueThreat, g.Theater)
}

func (g *Game) planMissions() (blue, red MissionPlan, err error) {
	blue, err = g.planSide(theater.Player)
	if err != nil {
		return blue, red, err
	}
	red, err = g.planSide(theater.Enemy)
	return blue, red, err
}

// planSide plans one side's missions and files the packages in its ATO.
func (g *Game) planSide(side theater.Side) (MissionPlan, error) {
	plan, err := g.deps.Missions.PlanMissions(g, side)
	if err != nil {
		return plan, fmt.Errorf("plan %s missions: %w", side, err)
	}
	ato := g.ATOFor(side)
	ato.Packages = append(ato.Packages, plan.Packages...)
	return plan, nil
}

func (g *Game) generateConditions() weather.Conditions {
	return weather.Generate(g.deps.Rng, g.CurrentDay(), g.CurrentTimeOfDay())
}

// Message appends an entry to the information log for the current turn.
func (g *Game) Message(text string) {
	g.Messages = append(g.Messages, Message{Title: text, Turn: g.Turn})
}

// CurrentTimeOfDay returns the phase the current turn is flown in.
func (g *Game) CurrentTimeOfDay() weather.TimeOfDay {
	return weather.ForTurn(g.Turn)
}

// CurrentDay returns the calendar day of the current turn.
func (g *Game) CurrentDay() time.Time {
	return g.StartDate.AddDate(0, 0, weather.DayOffset(g.Turn))
}

// FactionFor returns a side's faction.
func (g *Game) FactionFor(side theater.Side) *faction.Faction {
	if side == theater.Player {
		return g.PlayerFaction
	}
	return g.EnemyFaction
}

// ATOFor returns a side's air tasking order.
func (g *Game) ATOFor(side theater.Side) *ATO {
	if side == theater.Player {
		return &g.BlueATO
	}
	return &g.RedATO
}

// ThreatZoneFor returns the zone covered by a side's defenses.
func (g *Game) ThreatZoneFor(side theater.Side) ThreatZone {
	if side == theater.Player {
		return g.blueThreat
	}
	return g.redThreat
}

// NavMeshFor returns the routing mesh a side's flights use.
func (g *Game) NavMeshFor(side theater.Side) NavMesh {
	if side == theater.Player {
		return g.blueNav
	}
	return g.redNav
}

// Rng returns the campaign's random source.
func (g *Game) Rng() *rand.Rand {
	return g.deps.Rng
}
