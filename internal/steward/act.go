package steward

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrCampaignOver is returned when the server refuses a turn because the
// campaign has ended.
var ErrCampaignOver = errors.New("campaign is over")

// TurnResult is the response from POST /api/v1/turn.
type TurnResult struct {
	Turn        int     `json:"turn"`
	State       string  `json:"state"`
	Budget      float64 `json:"budget"`
	EnemyBudget float64 `json:"enemy_budget"`
	Messages    []struct {
		Title string `json:"title"`
	} `json:"messages"`
	Events []json.RawMessage `json:"events"`
}

// Actor advances turns via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// AdvanceTurn sends POST /api/v1/turn.
func (a *Actor) AdvanceTurn(forceNoRecovery bool) (*TurnResult, error) {
	body, err := json.Marshal(map[string]bool{"force_no_recovery": forceNoRecovery})
	if err != nil {
		return nil, fmt.Errorf("marshal turn request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+"/api/v1/turn", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST turn: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusConflict:
		return nil, ErrCampaignOver
	default:
		return nil, fmt.Errorf("turn failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result TurnResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
