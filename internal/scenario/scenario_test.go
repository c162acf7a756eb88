package scenario

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/planning"
	"github.com/talgya/frontline/internal/theater"
)

type flat struct{}

func (flat) IsOnLand(geo.Point) bool { return true }
func (flat) IsInSea(geo.Point) bool  { return false }

func testFaction(name string) *faction.Faction {
	return &faction.Faction{
		Name:    name,
		Country: name,
		Aircraft: map[faction.Task][]string{
			faction.TaskStrike: {"S1", "S2", "S3"},
			faction.TaskCAP:    {"C1"},
		},
		AirDefense:     []string{"SA-2"},
		SAMs:           []string{"SA-2"},
		FrontlineUnits: []string{"T-72"},
	}
}

// line returns n airbases 100 km apart, each linked to the next.
func line(n int) *theater.Theater {
	th := theater.New("line", flat{})
	var prev *theater.ControlPoint
	for i := 0; i < n; i++ {
		cp := theater.NewControlPoint(theater.ControlPointID(i+1), string(rune('A'+i)), theater.TypeAirbase,
			geo.Pt(0, float64(i)*100000), theater.ImportanceLow)
		th.Add(cp)
		if prev != nil {
			th.Connect(prev, cp)
		}
		prev = cp
	}
	th.ControlPoints[0].Captured = theater.Player
	return th
}

func testOptions() Options {
	return Options{
		Seed:        7,
		Player:      testFaction("Blue"),
		Enemy:       testFaction("Red"),
		StartDate:   time.Date(2004, time.March, 1, 0, 0, 0, 0, time.UTC),
		Settings:    campaign.DefaultSettings(),
		Budget:      2000,
		EnemyBudget: 2000,
		Multiplier:  1,
	}
}

func deps() campaign.Deps {
	return planning.Defaults(rand.New(rand.NewSource(7)))
}

func TestInvalidImportanceAborts(t *testing.T) {
	th := line(2)
	th.ControlPoints[1].Importance = 2.0

	_, err := New(th, testOptions()).Generate(deps())
	if err == nil {
		t.Fatalf("expected error for out of range importance")
	}
	if !strings.Contains(err.Error(), "B") || !strings.Contains(err.Error(), "1.4") {
		t.Fatalf("expected error naming the control point and bounds got %v", err)
	}
	if th.ControlPoints[1].Importance != 2.0 {
		t.Fatalf("expected importance left unclamped")
	}
}

func TestEnemyBaseStocking(t *testing.T) {
	th := line(2)
	enemy := th.ControlPoints[1]
	enemy.Strength = 0.3
	enemy.Base.Commission(theater.ClassArmor, "old", 5)

	g := New(th, testOptions())
	g.populateEnemyBases()

	if enemy.Strength != 1 {
		t.Fatalf("expected strength reset to 1 got %.2f", enemy.Strength)
	}
	if enemy.Base.TotalArmor() != 0 {
		t.Fatalf("expected base inventory reset")
	}
	// 12 * (1 + log_1.3(1.01)) = 12.45 over three types.
	for _, s := range []string{"S1", "S2", "S3"} {
		if n := enemy.Base.Aircraft[s]; n != 4 {
			t.Fatalf("expected 4 %s got %d", s, n)
		}
	}
	if n := enemy.Base.Aircraft["C1"]; n != 8 {
		t.Fatalf("expected 8 C1 got %d", n)
	}
	if n := enemy.Base.AirDefense["SA-2"]; n != 1 {
		t.Fatalf("expected 1 SA-2 got %d", n)
	}
	if th.ControlPoints[0].Base.TotalAircraft() != 0 {
		t.Fatalf("expected player base left empty")
	}
}

func TestImportanceScalesStocking(t *testing.T) {
	th := line(3)
	low, high := th.ControlPoints[1], th.ControlPoints[2]
	high.Importance = theater.ImportanceHigh

	New(th, testOptions()).populateEnemyBases()
	if high.Base.TotalAircraft() <= low.Base.TotalAircraft() {
		t.Fatalf("expected important base to get more aircraft got %d vs %d",
			high.Base.TotalAircraft(), low.Base.TotalAircraft())
	}
}

func TestMidgameCapturesFirstHalf(t *testing.T) {
	th := line(4)
	opts := testOptions()
	opts.Midgame = true

	New(th, opts).prepareTheater()
	for i, cp := range th.ControlPoints {
		if want := theater.Side(i < 2); cp.Captured != want {
			t.Fatalf("point %d: expected %s got %s", i, want, cp.Captured)
		}
	}
}

func TestInvertedTakesInvertedOwnership(t *testing.T) {
	th := line(3)
	th.ControlPoints[0].CapturedInvert = theater.Enemy
	th.ControlPoints[2].CapturedInvert = theater.Player
	opts := testOptions()
	opts.Inverted = true

	New(th, opts).prepareTheater()
	if th.ControlPoints[0].Captured != theater.Enemy || th.ControlPoints[2].Captured != theater.Player {
		t.Fatalf("expected inverted ownership")
	}
}

func TestFleetsRemovedBySettings(t *testing.T) {
	th := line(2)
	carrier := theater.NewControlPoint(10, "CV", theater.TypeCarrierGroup, geo.Pt(0, -100000), theater.ImportanceLow)
	lha := theater.NewControlPoint(11, "LHA", theater.TypeLHAGroup, geo.Pt(0, -150000), theater.ImportanceLow)
	th.Add(carrier)
	th.Add(lha)

	opts := testOptions()
	opts.Settings.DoNotGenerateCarrier = true
	New(th, opts).prepareTheater()

	if th.ControlPoint(10) != nil {
		t.Fatalf("expected carrier removed")
	}
	if th.ControlPoint(11) == nil {
		t.Fatalf("expected LHA kept")
	}
}

func TestGenerateStartsCampaign(t *testing.T) {
	th := line(3)
	game, err := New(th, testOptions()).Generate(deps())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if game.Turn != 0 || game.State != campaign.Continue {
		t.Fatalf("expected fresh campaign got turn %d %s", game.Turn, game.State)
	}
	if len(th.Installations()) == 0 {
		t.Fatalf("expected installations placed")
	}
	// The enemy always automates procurement.
	if game.EnemyBudget >= 2000 {
		t.Fatalf("expected opening procurement to spend some enemy budget got %.0f", game.EnemyBudget)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	build := func() *theater.Theater {
		th, err := theater.DefaultDefinition().Build(11)
		if err != nil {
			t.Fatalf("build theater: %v", err)
		}
		reg := faction.Default()
		player, err := reg.Get("USA 2005")
		if err != nil {
			t.Fatalf("faction: %v", err)
		}
		enemy, err := reg.Get("Russia 1990")
		if err != nil {
			t.Fatalf("faction: %v", err)
		}
		opts := testOptions()
		opts.Seed = 11
		opts.Player, opts.Enemy = player, enemy
		if _, err := New(th, opts).Generate(planning.Defaults(rand.New(rand.NewSource(11)))); err != nil {
			t.Fatalf("generate: %v", err)
		}
		return th
	}

	a, b := build(), build()
	if len(a.ControlPoints) != len(b.ControlPoints) {
		t.Fatalf("expected same control points got %d and %d", len(a.ControlPoints), len(b.ControlPoints))
	}
	for i := range a.ControlPoints {
		if a.ControlPoints[i].Name != b.ControlPoints[i].Name {
			t.Fatalf("control point %d named %q and %q", i, a.ControlPoints[i].Name, b.ControlPoints[i].Name)
		}
	}
	ia, ib := a.Installations(), b.Installations()
	if len(ia) != len(ib) {
		t.Fatalf("expected same installation count got %d and %d", len(ia), len(ib))
	}
	for i := range ia {
		if ia[i].Name != ib[i].Name || ia[i].Position != ib[i].Position || ia[i].GroupID != ib[i].GroupID {
			t.Fatalf("installation %d differs: %v vs %v", i, ia[i], ib[i])
		}
	}
}
