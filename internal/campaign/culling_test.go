package campaign

import (
	"testing"

	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
)

func TestCullingWithoutFrontUsesNearestBases(t *testing.T) {
	s := newStub()
	a := theater.NewControlPoint(1, "Alpha", theater.TypeAirbase, geo.Pt(0, 0), theater.ImportanceLow)
	a.Captured = theater.Player
	near := theater.NewControlPoint(2, "Near", theater.TypeAirbase, geo.Pt(0, 60000), theater.ImportanceLow)
	far := theater.NewControlPoint(3, "Far", theater.TypeAirbase, geo.Pt(0, 300000), theater.ImportanceLow)
	g := newTestGame(t, s, a, near, far)

	points := g.CullingPoints()
	if len(points) != 3 {
		t.Fatalf("expected two bases and their midpoint got %v", points)
	}
	if points[2] != geo.Pt(0, 30000) {
		t.Fatalf("expected midpoint (0, 30000) got %v", points[2])
	}
}

func TestCullingIncludesCarriers(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	carrier := theater.NewControlPoint(3, "Carrier", theater.TypeCarrierGroup, geo.Pt(-500000, 0), theater.ImportanceLow)
	carrier.Captured = theater.Player

	p := testParams(a, b, carrier)
	g, err := New(p, s.deps())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if !containsPoint(g.CullingPoints(), carrier.Position) {
		t.Fatalf("expected carrier position among culling points")
	}

	g.Settings.PerfDoNotCullCarrier = false
	g.ComputeCullingPoints()
	if containsPoint(g.CullingPoints(), carrier.Position) {
		t.Fatalf("expected carrier culled when the setting is off")
	}
}

func TestCullingSkipsBARCAPTargets(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	// The stub plans BARCAPs at (1e6, 1e6).
	if containsPoint(g.CullingPoints(), geo.Pt(1e6, 1e6)) {
		t.Fatalf("expected BARCAP targets to be skipped")
	}
}

func TestCullingDefaultsToOrigin(t *testing.T) {
	s := newStub()
	a := theater.NewControlPoint(1, "Alpha", theater.TypeAirbase, geo.Pt(5, 5), theater.ImportanceLow)
	a.Captured = theater.Player
	p := testParams(a)
	p.Settings.PerfDoNotCullCarrier = false
	g, err := New(p, s.deps())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	points := g.CullingPoints()
	if len(points) != 1 || points[0] != (geo.Point{}) {
		t.Fatalf("expected only the origin got %v", points)
	}
}

func TestPositionCulled(t *testing.T) {
	s := newStub()
	a, b := frontPair()
	g := newTestGame(t, s, a, b)

	far := geo.Pt(-1e6, -1e6)
	if g.PositionCulled(far) {
		t.Fatalf("expected nothing culled with culling disabled")
	}

	g.Settings.PerfCulling = true
	g.Settings.PerfCullingDistance = 50
	if !g.PositionCulled(far) {
		t.Fatalf("expected far position culled")
	}
	if g.PositionCulled(geo.Pt(0, 40000)) {
		t.Fatalf("expected position near a base kept")
	}
}

func containsPoint(points []geo.Point, p geo.Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
