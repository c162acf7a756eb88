package steward

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talgya/frontline/internal/api"
	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/planning"
	"github.com/talgya/frontline/internal/session"
	"github.com/talgya/frontline/internal/theater"
)

type flat struct{}

func (flat) IsOnLand(geo.Point) bool { return true }
func (flat) IsInSea(geo.Point) bool  { return false }

func deps(seed int64) campaign.Deps {
	return planning.Defaults(rand.New(rand.NewSource(seed)))
}

// campaignServer serves a live two-base campaign through the real API.
func campaignServer(t *testing.T, withEnemy bool) (*httptest.Server, *session.Session) {
	t.Helper()
	th := theater.New("test", flat{})
	a := theater.NewControlPoint(1, "Alpha", theater.TypeAirbase, geo.Pt(0, 0), theater.ImportanceLow)
	a.Captured = theater.Player
	th.Add(a)
	if withEnemy {
		b := theater.NewControlPoint(2, "Bravo", theater.TypeAirbase, geo.Pt(0, 100000), theater.ImportanceLow)
		th.Add(b)
		th.Connect(a, b)
	}
	g, err := campaign.New(campaign.Params{
		Seed:        1,
		Theater:     th,
		Player:      &faction.Faction{Name: "Blue", Country: "USA"},
		Enemy:       &faction.Faction{Name: "Red", Country: "Russia"},
		StartDate:   time.Date(2004, time.January, 7, 0, 0, 0, 0, time.UTC),
		Settings:    campaign.DefaultSettings(),
		Budget:      1000,
		EnemyBudget: 1000,
	}, deps(1))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	sess := session.New(g, nil, "", deps)
	s := &api.Server{Session: sess, AdminKey: "key", TurnLimiter: api.NewRateLimiter(100, time.Minute)}
	t.Cleanup(s.TurnLimiter.Close)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, sess
}

func TestTriage(t *testing.T) {
	snap := &Snapshot{
		Status: Status{Turn: 4, State: "continue", PlayerBases: 1, EnemyBases: 1},
		ControlPoints: []ControlPoint{
			{Side: "blue", Strength: 1.0, FrontLine: true},
			{Side: "red", Strength: 0.5, FrontLine: true},
			{Side: "red", Strength: 0.0, FrontLine: false},
		},
		FrontLines: []FrontLine{{Player: "Alpha", Enemy: "Bravo"}},
	}
	a := Triage(snap)
	if a.Outlook != "WINNING" || a.EnemyStrength != 0.5 || a.FrontLines != 1 {
		t.Fatalf("unexpected assessment %+v", a)
	}

	snap.ControlPoints[0].Strength = 0.1
	if a := Triage(snap); a.Outlook != "LOSING" {
		t.Fatalf("expected LOSING got %s", a.Outlook)
	}
	snap.Status.State = "win"
	if a := Triage(snap); a.Outlook != "OVER" {
		t.Fatalf("expected OVER got %s", a.Outlook)
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		a       Assessment
		p       Policy
		advance bool
	}{
		{"contested", Assessment{Turn: 2, Outlook: "CONTESTED"}, Policy{}, true},
		{"over", Assessment{Turn: 2, State: "loss", Outlook: "OVER"}, Policy{}, false},
		{"limit", Assessment{Turn: 5, Outlook: "WINNING"}, Policy{MaxTurns: 5}, false},
		{"under limit", Assessment{Turn: 4, Outlook: "WINNING"}, Policy{MaxTurns: 5}, true},
	}
	for _, tt := range tests {
		if d := Decide(&tt.a, tt.p); d.Advance != tt.advance {
			t.Errorf("%s: expected advance=%v got %+v", tt.name, tt.advance, d)
		}
	}
	if d := Decide(&Assessment{Outlook: "CONTESTED"}, Policy{ForceNoRecovery: true}); !d.ForceNoRecovery {
		t.Fatalf("expected force flag carried into the decision")
	}
}

func TestRunUntilTurnLimit(t *testing.T) {
	srv, sess := campaignServer(t, true)
	st := New(srv.URL, "key", Policy{MaxTurns: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.WaitForAPI(ctx, time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if err := st.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}

	var turn int
	sess.View(func(g *campaign.Game) { turn = g.Turn })
	if turn != 3 {
		t.Fatalf("expected steward to stop at turn 3 got %d", turn)
	}
}

func TestRunStopsWhenCampaignEnds(t *testing.T) {
	srv, sess := campaignServer(t, false)
	st := New(srv.URL, "key", Policy{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := st.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("run: %v", err)
	}

	var state campaign.TurnState
	sess.View(func(g *campaign.Game) { state = g.State })
	if state != campaign.Win {
		t.Fatalf("expected campaign won got %s", state)
	}
}

func TestAdvanceTurnRejected(t *testing.T) {
	srv, _ := campaignServer(t, true)
	if _, err := NewActor(srv.URL, "wrong").AdvanceTurn(false); err == nil {
		t.Fatalf("expected error with wrong admin key")
	}
}

func TestWaitForAPITimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "starting", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	st := New(srv.URL, "key", Policy{})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := st.WaitForAPI(ctx, time.Minute); err == nil {
		t.Fatalf("expected error when the API never becomes ready")
	}
}
