package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/frontline/internal/campaign"
)

// Campaign describes a new campaign: who fights, when, and with what.
type Campaign struct {
	Player      string            `yaml:"player"`
	Enemy       string            `yaml:"enemy"`
	StartDate   string            `yaml:"start_date"` // YYYY-MM-DD
	Budget      float64           `yaml:"budget"`
	EnemyBudget float64           `yaml:"enemy_budget"`
	Multiplier  float64           `yaml:"multiplier"`
	Midgame     bool              `yaml:"midgame"`
	Inverted    bool              `yaml:"inverted"`
	Settings    campaign.Settings `yaml:"settings"`
}

const dateLayout = "2006-01-02"

// DefaultCampaign returns the campaign started when no file is given.
func DefaultCampaign() Campaign {
	return Campaign{
		Player:      "USA 2005",
		Enemy:       "Russia 1990",
		StartDate:   "2004-01-07",
		Budget:      2000,
		EnemyBudget: 2000,
		Multiplier:  1,
		Settings:    campaign.DefaultSettings(),
	}
}

// LoadCampaign reads a campaign file. Fields missing from the file keep
// their defaults.
func LoadCampaign(path string) (Campaign, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Campaign{}, fmt.Errorf("read campaign %s: %w", path, err)
	}
	c, err := ParseCampaign(raw)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign %s: %w", path, err)
	}
	return c, nil
}

// ParseCampaign decodes a campaign from YAML over the defaults.
func ParseCampaign(raw []byte) (Campaign, error) {
	c := DefaultCampaign()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Campaign{}, fmt.Errorf("parse campaign: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

// Validate checks the campaign is startable.
func (c Campaign) Validate() error {
	if c.Player == "" || c.Enemy == "" {
		return fmt.Errorf("campaign needs both a player and an enemy faction")
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	if c.Budget < 0 || c.EnemyBudget < 0 {
		return fmt.Errorf("starting budgets must not be negative")
	}
	if c.Multiplier <= 0 {
		return fmt.Errorf("multiplier must be positive, is %g", c.Multiplier)
	}
	if c.Settings.PerfCulling && c.Settings.PerfCullingDistance <= 0 {
		return fmt.Errorf("perf_culling_distance must be positive when culling is on")
	}
	return nil
}

// Start parses the start date.
func (c Campaign) Start() (time.Time, error) {
	t, err := time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}
