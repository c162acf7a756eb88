package faction

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	for _, name := range []string{"USA 2005", "Russia 1990", "Insurgents"} {
		f, err := r.Get(name)
		if err != nil {
			t.Fatalf("get %q: %v", name, err)
		}
		if f.Name != name {
			t.Fatalf("expected %q got %q", name, f.Name)
		}
	}

	usa, _ := r.Get("USA 2005")
	if !usa.HasNavy() || usa.HasMissiles() {
		t.Fatalf("unexpected USA capabilities: navy=%v missiles=%v", usa.HasNavy(), usa.HasMissiles())
	}
	if len(usa.CarrierNames) == 0 || len(usa.HelicopterCarrierNames) == 0 {
		t.Fatalf("expected USA to name its carriers")
	}
}

func TestGetSuggestsClosestName(t *testing.T) {
	_, err := Default().Get("Rusia 1990")
	if !errors.Is(err, ErrUnknownFaction) {
		t.Fatalf("expected ErrUnknownFaction got %v", err)
	}
	if !strings.Contains(err.Error(), `"Russia 1990"`) {
		t.Fatalf("expected suggestion in %q", err.Error())
	}

	_, err = Default().Get("zzzzzzzzzzzzzzzzzzzzzzzz")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected no suggestion for unrelated name, got %v", err)
	}
}

func TestParseRejectsInvalidFile(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing factions", "other: 1\n"},
		{"negative count", "factions:\n  - name: A\n    country: X\n    navy_group_count: -1\n"},
		{"unknown field", "factions:\n  - name: A\n    country: X\n    lasers: [pew]\n"},
		{"bad task", "factions:\n  - name: A\n    country: X\n    aircraft:\n      bombing: [B-52]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestParseRejectsDuplicates(t *testing.T) {
	raw := "factions:\n  - name: A\n    country: X\n  - name: A\n    country: Y\n"
	if _, err := Parse([]byte(raw)); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestChooseUnits(t *testing.T) {
	f := &Faction{Aircraft: map[Task][]string{
		TaskCAP: {"a", "b", "c", "d", "e"},
	}}

	if got := f.ChooseUnits(TaskCAP, 0, 2); strings.Join(got, ",") != "a,b" {
		t.Fatalf("low importance: got %v", got)
	}
	if got := f.ChooseUnits(TaskCAP, 1, 2); strings.Join(got, ",") != "d,e" {
		t.Fatalf("high importance: got %v", got)
	}
	if got := f.ChooseUnits(TaskCAP, 0.5, 10); len(got) != 5 {
		t.Fatalf("expected all units when variety exceeds list, got %v", got)
	}
	if got := f.ChooseUnits(TaskCAS, 0.5, 2); got != nil {
		t.Fatalf("expected nil for empty task, got %v", got)
	}
}
