package weather

import (
	"math/rand"
	"testing"
	"time"
)

func TestForTurnCycles(t *testing.T) {
	tests := []struct {
		turn int
		want TimeOfDay
		day  int
	}{
		{0, Dawn, 0},
		{1, Day, 0},
		{2, Dusk, 0},
		{3, Night, 0},
		{4, Dawn, 1},
		{9, Day, 2},
	}
	for _, tt := range tests {
		if got := ForTurn(tt.turn); got != tt.want {
			t.Errorf("turn %d: expected %s got %s", tt.turn, tt.want, got)
		}
		if got := DayOffset(tt.turn); got != tt.day {
			t.Errorf("turn %d: expected day %d got %d", tt.turn, tt.day, got)
		}
	}
}

func TestGenerateStartTimeMatchesPhase(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	day := time.Date(2004, time.January, 10, 0, 0, 0, 0, time.UTC)
	for tod := Dawn; tod <= Night; tod++ {
		for i := 0; i < 50; i++ {
			c := Generate(rng, day, tod)
			hours := startHours[tod]
			if h := c.StartTime.Hour(); h < hours[0] || h >= hours[1] {
				t.Fatalf("%s: expected hour in [%d, %d) got %d", tod, hours[0], hours[1], h)
			}
			if c.StartTime.Day() != 10 {
				t.Fatalf("expected start on the given day got %v", c.StartTime)
			}
		}
	}
}

func TestNoSummerSnow(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	day := time.Date(2004, time.July, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		if c := Generate(rng, day, Day); c.Weather.Kind == Snow {
			t.Fatalf("expected no snow in summer got %+v", c.Weather)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	day := time.Date(2004, time.October, 3, 0, 0, 0, 0, time.UTC)
	a := Generate(rand.New(rand.NewSource(3)), day, Dusk)
	b := Generate(rand.New(rand.NewSource(3)), day, Dusk)
	if a != b {
		t.Fatalf("expected identical conditions got %+v and %+v", a, b)
	}
}
