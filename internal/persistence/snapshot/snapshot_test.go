package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
)

func testRecord(turn int) *campaign.Record {
	th := &theater.Theater{Name: "Coast", TerrainConfig: theater.GenConfig{Seed: 9}}
	cp := theater.NewControlPoint(1, "Alpha", theater.TypeAirbase, geo.Pt(100, 200), theater.ImportanceHigh)
	cp.Base.Commission(theater.ClassArmor, "T-72", 4)
	th.ControlPoints = []*theater.ControlPoint{cp}
	return &campaign.Record{
		ID:            uuid.New(),
		Seed:          1,
		Settings:      campaign.DefaultSettings(),
		Theater:       th,
		PlayerFaction: &faction.Faction{Name: "Blue"},
		EnemyFaction:  &faction.Faction{Name: "Red"},
		Turn:          turn,
		StartDate:     time.Date(2004, time.January, 7, 0, 0, 0, 0, time.UTC),
		Budget:        800,
		State:         campaign.Win,
	}
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	rec := testRecord(3)
	path, err := Write(dir, rec)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "turn-000003.json.zst" {
		t.Fatalf("expected turn-numbered file got %s", path)
	}

	hdr, got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hdr.Version != Version || hdr.Turn != 3 || hdr.CampaignID != rec.ID.String() || hdr.State != "win" {
		t.Fatalf("unexpected header %+v", hdr)
	}
	if got.ID != rec.ID || got.Budget != 800 || got.State != campaign.Win {
		t.Fatalf("expected record restored got %+v", got)
	}
	cp := got.Theater.ControlPoints[0]
	if cp.Name != "Alpha" || cp.Position != geo.Pt(100, 200) || cp.Base.Armor["T-72"] != 4 {
		t.Fatalf("expected control point restored got %+v", cp)
	}
	if got.Theater.TerrainConfig.Seed != 9 {
		t.Fatalf("expected terrain config restored")
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	if _, err := Latest(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	for _, turn := range []int{2, 10, 9} {
		if _, err := Write(dir, testRecord(turn)); err != nil {
			t.Fatalf("write %d: %v", turn, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	path, err := Latest(dir)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	hdr, _, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hdr.Turn != 10 {
		t.Fatalf("expected turn 10 got %d", hdr.Turn)
	}
}

func TestLatestMissingDir(t *testing.T) {
	if _, err := Latest(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), Filename(1))
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := Read(path); err == nil {
		t.Fatalf("expected error for corrupt snapshot")
	}
}
