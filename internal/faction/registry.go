// Faction registry: schema-validated loading and lookup by name.
package faction

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed factions.yaml
var defaultFactionsYAML []byte

//go:embed factions.schema.json
var factionsSchema string

// ErrUnknownFaction is returned by Get for names not in the registry.
var ErrUnknownFaction = errors.New("unknown faction")

// Registry indexes factions by name.
type Registry struct {
	byName map[string]*Faction
}

type factionFile struct {
	Factions []*Faction `yaml:"factions"`
}

// Load reads and validates a faction file.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Default returns the built-in factions.
func Default() *Registry {
	r, err := Parse(defaultFactionsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded factions: %v", err))
	}
	return r
}

// Parse validates raw YAML against the faction schema and builds a registry.
func Parse(raw []byte) (*Registry, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}

	var file factionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("factions: %w", err)
	}

	r := &Registry{byName: make(map[string]*Faction, len(file.Factions))}
	for _, f := range file.Factions {
		if _, dup := r.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate faction %q", f.Name)
		}
		r.byName[f.Name] = f
	}
	return r, nil
}

func validate(raw []byte) error {
	schema, err := jsonschema.CompileString("factions.schema.json", factionsSchema)
	if err != nil {
		return fmt.Errorf("compile faction schema: %w", err)
	}

	// The validator wants JSON-shaped values; YAML integers are not.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("factions: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("factions: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("factions: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("factions: %w", err)
	}
	return nil
}

// Get returns the named faction. Unknown names suggest the closest match.
func (r *Registry) Get(name string) (*Faction, error) {
	if f, ok := r.byName[name]; ok {
		return f, nil
	}
	if best := r.closest(name); best != "" {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownFaction, name, best)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownFaction, name)
}

// Names returns the faction names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) closest(name string) string {
	best := ""
	bestDist := -1
	query := strings.ToLower(name)
	for _, candidate := range r.Names() {
		dist := levenshtein.ComputeDistance(query, strings.ToLower(candidate))
		if bestDist < 0 || dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	// Beyond half the query length the suggestion is noise.
	if bestDist < 0 || bestDist > len(name)/2+1 {
		return ""
	}
	return best
}
