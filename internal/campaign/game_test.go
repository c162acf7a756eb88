package campaign

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
	"github.com/talgya/frontline/internal/weather"
)

type flat struct{}

func (flat) IsOnLand(geo.Point) bool { return true }
func (flat) IsInSea(geo.Point) bool  { return false }

type noThreat struct{}

func (noThreat) Threatened(geo.Point) bool { return false }

type straight struct{}

func (straight) Route(from, to geo.Point) []geo.Point { return []geo.Point{from, to} }

// stub implements every collaborator and records how it was called.
type stub struct {
	income    map[theater.Side]float64
	spendFrac float64 // Share of each order's budget the allocator spends
	overspend float64 // Added to the returned budget

	upkeepErr error
	onUpkeep  func(g *Game)

	orders      []ProcurementOrder
	missions    []theater.Side
	groundCalls []theater.ControlPointID
}

func (s *stub) Income(_ *Game, side theater.Side) float64 { return s.income[side] }

func (s *stub) ThreatZones(*Game, theater.Side) ThreatZone { return noThreat{} }

func (s *stub) NavMesh(ThreatZone, *theater.Theater) NavMesh { return straight{} }

func (s *stub) PlanMissions(g *Game, side theater.Side) (MissionPlan, error) {
	s.missions = append(s.missions, side)
	var plan MissionPlan
	for _, fl := range g.Theater.Conflicts() {
		target := fl.B
		if side == theater.Enemy {
			target = fl.A
		}
		plan.Packages = append(plan.Packages,
			&Package{Task: MissionCAS, Target: Target{Name: "front", Position: fl.Position()}},
			&Package{Task: MissionBARCAP, Target: Target{Name: target.Name, Position: geo.Pt(1e6, 1e6)}},
		)
	}
	plan.Requests = []ProcurementRequest{{Task: faction.TaskCAP, Count: 2}}
	return plan, nil
}

func (s *stub) PlanGroundWar(_ *Game, cp *theater.ControlPoint) (GroundPlan, error) {
	s.groundCalls = append(s.groundCalls, cp.ID)
	return GroundPlan{ControlPoint: cp.ID, Stance: StanceDefensive}, nil
}

func (s *stub) SpendBudget(_ *Game, order ProcurementOrder) (float64, error) {
	s.orders = append(s.orders, order)
	return order.Budget*(1-s.spendFrac) + s.overspend, nil
}

func (s *stub) ProcessTurn(g *Game, _ *theater.ControlPoint) error {
	if s.onUpkeep != nil {
		s.onUpkeep(g)
	}
	return s.upkeepErr
}

func (s *stub) deps() Deps {
	return Deps{
		Income:      s,
		ThreatZones: s,
		NavMeshes:   s,
		Missions:    s,
		Ground:      s,
		Procurement: s,
		Upkeep:      s,
		Rng:         rand.New(rand.NewSource(1)),
	}
}

func newStub() *stub {
	return &stub{income: map[theater.Side]float64{theater.Player: 100, theater.Enemy: 50}}
}

func testParams(points ...*theater.ControlPoint) Params {
	th := theater.New("test", flat{})
	for _, cp := range points {
		th.Add(cp)
	}
	return Params{
		Seed:        1,
		Theater:     th,
		Player:      &faction.Faction{Name: "Blue", Country: "USA"},
		Enemy:       &faction.Faction{Name: "Red", Country: "Russia"},
		StartDate:   time.Date(2004, time.January, 1, 9, 30, 0, 0, time.UTC),
		Settings:    DefaultSettings(),
		Budget:      1000,
		EnemyBudget: 1000,
	}
}

// frontPair returns a linked player/enemy pair of airbases.
func frontPair() (*theater.ControlPoint, *theater.ControlPoint) {
	a := theater.NewControlPoint(1, "Alpha", theater.TypeAirbase, geo.Pt(0, 0), theater.ImportanceLow)
	a.Captured = theater.Player
	b := theater.NewControlPoint(2, "Bravo", theater.TypeAirbase, geo.Pt(0, 100000), theater.ImportanceLow)
	a.Links = []theater.ControlPointID{b.ID}
	b.Links = []theater.ControlPointID{a.ID}
	return a, b
}

func newTestGame(t *testing.T, s *stub, points ...*theater.ControlPoint) *Game {
	t.Helper()
	g, err := New(testParams(points...), s.deps())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestCheckWinLossExhaustive(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			var points []*theater.ControlPoint
			for i := 0; i < n; i++ {
				cp := theater.NewControlPoint(theater.ControlPointID(i), "cp", theater.TypeAirbase, geo.Point{}, theater.ImportanceLow)
				cp.Captured = theater.Side(mask&(1<<i) != 0)
				points = append(points, cp)
			}

			want := Continue
			switch mask {
			case 0:
				want = Loss
			case 1<<n - 1:
				want = Win
			}
			if got := CheckWinLoss(points); got != want {
				t.Fatalf("n=%d mask=%b: expected %s got %s", n, mask, want, got)
			}
		}
	}
}

func TestNewPlansOpeningTurn(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	if g.Turn != 0 || g.State != Continue {
		t.Fatalf("expected turn 0 continue got turn %d %s", g.Turn, g.State)
	}
	if len(s.missions) != 2 || s.missions[0] != theater.Player || s.missions[1] != theater.Enemy {
		t.Fatalf("expected player then enemy mission planning got %v", s.missions)
	}
	if len(s.groundCalls) != 0 {
		t.Fatalf("expected no ground planning on turn 0 got %v", s.groundCalls)
	}
	if len(g.Events) != 0 {
		t.Fatalf("expected no events on turn 0 got %d", len(g.Events))
	}
	if len(s.orders) != 2 {
		t.Fatalf("expected two procurement orders got %d", len(s.orders))
	}
	for _, o := range s.orders {
		if o.FrontLineShare != OpeningFrontLineShare {
			t.Fatalf("expected opening share %.1f got %.1f", OpeningFrontLineShare, o.FrontLineShare)
		}
	}
	if g.Messages[0].Title != "Game Start" {
		t.Fatalf("expected game start message got %q", g.Messages[0].Title)
	}
	for _, side := range []theater.Side{theater.Player, theater.Enemy} {
		if n := len(g.ATOFor(side).Packages); n != 2 {
			t.Fatalf("expected 2 %s packages got %d", side, n)
		}
	}
	if g.ATOFor(theater.Player) == g.ATOFor(theater.Enemy) {
		t.Fatalf("expected separate ATOs per side")
	}
}

func TestProcurementOrders(t *testing.T) {
	s := newStub()
	s.spendFrac = 0.25
	a, b := frontPair()
	p := testParams(a, b)
	p.Settings.AutomateAircraftReinforcements = true
	g, err := New(p, s.deps())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := g.Advance(false); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(s.orders) != 4 {
		t.Fatalf("expected four orders got %d", len(s.orders))
	}
	player, enemy := s.orders[2], s.orders[3]
	if player.Side != theater.Player || enemy.Side != theater.Enemy {
		t.Fatalf("expected player order before enemy order")
	}
	if player.FrontLineShare != FrontLineShare || enemy.FrontLineShare != FrontLineShare {
		t.Fatalf("expected share %.1f after turn 0", FrontLineShare)
	}
	if !player.ManageAircraft || player.ManageRunways || player.ManageFrontLine {
		t.Fatalf("expected player automation from settings got %+v", player)
	}
	if !enemy.ManageAircraft || !enemy.ManageRunways || !enemy.ManageFrontLine {
		t.Fatalf("expected full enemy automation got %+v", enemy)
	}
	if len(player.Requests) != 1 || player.Requests[0].Task != faction.TaskCAP {
		t.Fatalf("expected player planner requests forwarded got %v", player.Requests)
	}
	// Opening: 1000 -> 750. Turn 1: (750 + 100) * 0.75.
	if want := 850 * 0.75; g.Budget != want {
		t.Fatalf("expected player budget %.2f got %.2f", want, g.Budget)
	}
	for _, o := range s.orders {
		if o.Budget < 0 {
			t.Fatalf("expected non-negative order budget got %.2f", o.Budget)
		}
	}
}

func TestProcurementOverspendRejected(t *testing.T) {
	s := newStub()
	s.overspend = 1
	a, b := frontPair()
	if _, err := New(testParams(a, b), s.deps()); err == nil {
		t.Fatalf("expected error when allocator returns more than its budget")
	}
}

func TestStrengthRecovery(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	c := theater.NewControlPoint(3, "Charlie", theater.TypeAirbase, geo.Pt(-100000, 0), theater.ImportanceLow)
	c.Captured = theater.Player
	carrier := theater.NewControlPoint(4, "Carrier", theater.TypeCarrierGroup, geo.Pt(0, -100000), theater.ImportanceLow)
	carrier.Captured = theater.Player
	g := newTestGame(t, s, a, b, c, carrier)

	// The first advance always costs strength.
	a.Strength, c.Strength, carrier.Strength = 0.9, 0.5, 0.5
	if _, err := g.Advance(false); err != nil {
		t.Fatalf("advance: %v", err)
	}
	assertStrength(t, a, 0.7)
	assertStrength(t, c, 0.3)
	assertStrength(t, carrier, 0.5)

	a.Strength, c.Strength = 0.9, 0.5
	if _, err := g.Advance(false); err != nil {
		t.Fatalf("advance: %v", err)
	}
	assertStrength(t, a, 1.0)
	assertStrength(t, c, 0.7)
	assertStrength(t, carrier, 0.5)
	assertStrength(t, b, 1.0)

	if _, err := g.Advance(true); err != nil {
		t.Fatalf("advance: %v", err)
	}
	assertStrength(t, a, 0.8)
	assertStrength(t, c, 0.5)
}

func assertStrength(t *testing.T, cp *theater.ControlPoint, want float64) {
	t.Helper()
	if d := cp.Strength - want; d > 1e-9 || d < -1e-9 {
		t.Fatalf("%s: expected strength %.2f got %.2f", cp.Name, want, cp.Strength)
	}
}

func TestEndToEndTwoControlPoints(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	state, err := g.Advance(false)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state != Continue {
		t.Fatalf("expected continue got %s", state)
	}
	if n := len(g.CullingPoints()); n < 3 {
		t.Fatalf("expected at least 3 culling points got %d", n)
	}
	if g.Budget != 1100 || g.EnemyBudget != 1050 {
		t.Fatalf("expected budgets moved by income got %.0f / %.0f", g.Budget, g.EnemyBudget)
	}
	if len(g.Events) != 1 || g.Events[0].Attacker != a.ID || g.Events[0].Defender != b.ID {
		t.Fatalf("expected one front line attack got %v", g.Events)
	}
	if len(g.GroundPlans) != 2 {
		t.Fatalf("expected ground plans for both front line bases got %d", len(g.GroundPlans))
	}
	if len(g.BlueATO.Packages) == 0 || len(g.RedATO.Packages) == 0 {
		t.Fatalf("expected packages in both ATOs")
	}
	if g.Messages[len(g.Messages)-1].Title != "End of turn #0" {
		t.Fatalf("expected end of turn message got %q", g.Messages[len(g.Messages)-1].Title)
	}
}

func TestAdvanceAfterVictory(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	b.Captured = theater.Player
	state, err := g.Advance(false)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if state != Win {
		t.Fatalf("expected win got %s", state)
	}
	if last := g.Messages[len(g.Messages)-1]; last.Turn != 1 {
		t.Fatalf("expected victory message on turn 1 got %+v", last)
	}

	if _, err := g.Advance(false); !errors.Is(err, ErrCampaignOver) {
		t.Fatalf("expected ErrCampaignOver got %v", err)
	}
	if g.Turn != 1 {
		t.Fatalf("expected turn to stay at 1 got %d", g.Turn)
	}
}

func TestReentrantAdvance(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	var inner error
	s.onUpkeep = func(g *Game) {
		_, inner = g.Advance(false)
	}
	if _, err := g.Advance(false); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !errors.Is(inner, ErrReentrantAdvance) {
		t.Fatalf("expected ErrReentrantAdvance got %v", inner)
	}
	if g.Turn != 1 {
		t.Fatalf("expected a single turn to pass got %d", g.Turn)
	}
}

func TestUpkeepErrorPropagates(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	boom := errors.New("boom")
	s.upkeepErr = boom
	if _, err := g.Advance(false); !errors.Is(err, boom) {
		t.Fatalf("expected upkeep error got %v", err)
	}
}

func TestTimeOfDayAdvances(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	for i := 0; i < 5; i++ {
		if _, err := g.Advance(false); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if g.CurrentTimeOfDay() != weather.Day {
		t.Fatalf("expected day on turn 5 got %s", g.CurrentTimeOfDay())
	}
	if want := time.Date(2004, time.January, 2, 0, 0, 0, 0, time.UTC); !g.CurrentDay().Equal(want) {
		t.Fatalf("expected %v got %v", want, g.CurrentDay())
	}
	if g.Conditions.TimeOfDay != weather.Day {
		t.Fatalf("expected conditions regenerated for day got %s", g.Conditions.TimeOfDay)
	}
}

func TestSanitizeSides(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"USA", "USAF Aggressors"},
		{"Russia", "USSR"},
		{"France", "Russia"},
	}
	for _, tt := range tests {
		g := &Game{PlayerCountry: tt.country, EnemyCountry: tt.country}
		g.SanitizeSides()
		if g.EnemyCountry != tt.want {
			t.Errorf("%s: expected enemy %q got %q", tt.country, tt.want, g.EnemyCountry)
		}
	}
}

func TestAdjustBudget(t *testing.T) {
	g := &Game{Budget: 10, EnemyBudget: 20}
	g.AdjustBudget(5, theater.Player)
	g.AdjustBudget(-5, theater.Enemy)
	if g.Budget != 15 || g.EnemyBudget != 15 {
		t.Fatalf("expected 15/15 got %.0f/%.0f", g.Budget, g.EnemyBudget)
	}
	g.AdjustBudget(1, theater.Player)
	if g.BudgetFor(theater.Player) != 16 || g.BudgetFor(theater.Enemy) != 15 {
		t.Fatalf("expected 16/15 got %.0f/%.0f", g.BudgetFor(theater.Player), g.BudgetFor(theater.Enemy))
	}
}

func TestRecordRestore(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)
	if _, err := g.Advance(false); err != nil {
		t.Fatalf("advance: %v", err)
	}

	restored, err := Restore(g.Record(), newStub().deps())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ID != g.ID || restored.Turn != g.Turn || restored.Budget != g.Budget {
		t.Fatalf("expected restored identity, turn and budget to match")
	}
	if len(restored.CullingPoints()) == 0 {
		t.Fatalf("expected culling points recomputed on load")
	}
	if restored.ThreatZoneFor(theater.Player) == nil || restored.NavMeshFor(theater.Enemy) == nil {
		t.Fatalf("expected threat zones and nav meshes rebuilt on load")
	}
	if _, err := restored.Advance(false); err != nil {
		t.Fatalf("advance restored: %v", err)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	a, b := frontPair()
	deps := newStub().deps()
	deps.Upkeep = nil
	if _, err := New(testParams(a, b), deps); err == nil {
		t.Fatalf("expected error for missing upkeep")
	}
}
