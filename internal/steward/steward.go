package steward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Steward runs observe → triage → act cycles against one campaign server.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	Policy   Policy
}

// New creates a steward for the API at baseURL.
func New(baseURL, adminKey string, policy Policy) *Steward {
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		Policy:   policy,
	}
}

// WaitForAPI polls the status endpoint with exponential backoff until it
// responds or timeout passes.
func (s *Steward) WaitForAPI(ctx context.Context, timeout time.Duration) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(timeout)

	for {
		if s.Observer.Ready() {
			slog.Info("campaign API is ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("campaign API did not become ready within %s", timeout)
		}
		slog.Info("campaign API not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Cycle executes one observe → decide → act cycle. done reports that the
// steward has nothing left to do.
func (s *Steward) Cycle() (done bool, err error) {
	snap, err := s.Observer.Observe()
	if err != nil {
		return false, fmt.Errorf("observation failed: %w", err)
	}
	assessment := Triage(snap)
	slog.Info("observation complete",
		"turn", assessment.Turn,
		"date", snap.Status.Date,
		"time_of_day", snap.Status.TimeOfDay,
		"storm", snap.Status.Weather.Storm,
		"player_bases", assessment.PlayerBases,
		"enemy_bases", assessment.EnemyBases,
		"front_lines", assessment.FrontLines,
		"outlook", assessment.Outlook,
	)

	decision := Decide(assessment, s.Policy)
	if !decision.Advance {
		slog.Info("steward stopping", "reason", decision.Reason)
		return true, nil
	}

	result, err := s.Actor.AdvanceTurn(decision.ForceNoRecovery)
	if errors.Is(err, ErrCampaignOver) {
		slog.Info("steward stopping", "reason", "server reports the campaign is over")
		return true, nil
	}
	if err != nil {
		return false, err
	}

	slog.Info("turn advanced",
		"turn", result.Turn,
		"state", result.State,
		"budget", humanize.Commaf(result.Budget),
		"enemy_budget", humanize.Commaf(result.EnemyBudget),
		"events", len(result.Events),
		"messages", len(result.Messages),
	)
	return result.State != "continue", nil
}

// Run cycles immediately and then on every interval until the campaign
// ends, the policy stops it or ctx is cancelled. Failed cycles are logged
// and retried on the next tick.
func (s *Steward) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := s.Cycle()
		if err != nil {
			slog.Error("steward cycle failed", "error", err)
		}
		if done {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
