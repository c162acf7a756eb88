// Package steward implements the turn steward: it observes the campaign via
// the API, triages it, and advances turns via the admin endpoint.
package steward

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Snapshot holds all data collected during an observation cycle.
type Snapshot struct {
	Status        Status         `json:"status"`
	ControlPoints []ControlPoint `json:"control_points"`
	FrontLines    []FrontLine    `json:"front_lines"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	ID          string  `json:"id"`
	Turn        int     `json:"turn"`
	State       string  `json:"state"`
	Date        string  `json:"date"`
	TimeOfDay   string  `json:"time_of_day"`
	Player      string  `json:"player"`
	Enemy       string  `json:"enemy"`
	Budget      float64 `json:"budget"`
	EnemyBudget float64 `json:"enemy_budget"`
	PlayerBases int     `json:"player_bases"`
	EnemyBases  int     `json:"enemy_bases"`
	Weather     struct {
		Description string `json:"description"`
		Storm       bool   `json:"storm"`
	} `json:"weather"`
}

// ControlPoint mirrors items from GET /api/v1/controlpoints.
type ControlPoint struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Side      string  `json:"side"`
	Strength  float64 `json:"strength"`
	FrontLine bool    `json:"front_line"`
}

// FrontLine mirrors items from GET /api/v1/frontlines.
type FrontLine struct {
	Player string `json:"player"`
	Enemy  string `json:"enemy"`
}

// Observer fetches campaign state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the status, control points and front lines.
func (o *Observer) Observe() (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/controlpoints", &snap.ControlPoints); err != nil {
		return nil, fmt.Errorf("fetch control points: %w", err)
	}
	if err := o.fetchJSON("/api/v1/frontlines", &snap.FrontLines); err != nil {
		return nil, fmt.Errorf("fetch front lines: %w", err)
	}

	return snap, nil
}

// Ready reports whether the status endpoint answers 200.
func (o *Observer) Ready() bool {
	resp, err := o.HTTPClient.Get(o.BaseURL + "/api/v1/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
