// Package namegen produces procedural objective names.
package namegen

import (
	"fmt"
	"math/rand"
	"strings"
)

var prefixes = []string{
	"Iron", "Granite", "Ash", "Stone", "Black", "Silver", "Red", "White",
	"Dark", "Bright", "High", "Cold", "Far", "Deep", "Broad", "Gold",
	"Frost", "Storm", "Thorn", "Copper", "Steel", "Amber", "Hollow", "Lone",
}

var suffixes = []string{
	"Anvil", "Hammer", "Ridge", "Gate", "Keep", "Watch", "Crest", "Vale",
	"Reach", "Point", "Hollow", "Spur", "Ford", "Mill", "Forge", "Cairn",
	"Bluff", "Knoll", "Fang", "Spire", "Bastion", "Lance", "Tower", "Crown",
}

// Generator hands out unique objective names from a seeded source.
type Generator struct {
	rng  *rand.Rand
	used map[string]bool
}

// New creates a name generator.
func New(seed int64) *Generator {
	g := &Generator{}
	g.Reset(seed)
	return g
}

// Reset forgets issued names and reseeds.
func (g *Generator) Reset(seed int64) {
	g.rng = rand.New(rand.NewSource(seed + 500))
	g.used = make(map[string]bool)
}

// ObjectiveName returns a name not issued since the last reset.
func (g *Generator) ObjectiveName() string {
	// Random draws first; once the space gets crowded fall back to numbering.
	for attempt := 0; attempt < 32; attempt++ {
		name := compose(prefixes[g.rng.Intn(len(prefixes))], suffixes[g.rng.Intn(len(suffixes))])
		if !g.used[name] {
			g.used[name] = true
			return name
		}
	}
	base := compose(prefixes[g.rng.Intn(len(prefixes))], suffixes[g.rng.Intn(len(suffixes))])
	for n := 2; ; n++ {
		name := fmt.Sprintf("%s %d", base, n)
		if !g.used[name] {
			g.used[name] = true
			return name
		}
	}
}

func compose(prefix, suffix string) string {
	return strings.ToUpper(prefix + " " + suffix)
}
