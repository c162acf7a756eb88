// Package session owns the live campaign: one writer advances turns,
// readers observe under a shared lock, and every committed turn is
// persisted before it becomes visible to subscribers.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/persistence/snapshot"
)

// Store persists campaign records.
type Store interface {
	SaveCampaign(rec *campaign.Record) error
}

// DepsFunc builds fresh collaborators for a restored game.
type DepsFunc func(seed int64) campaign.Deps

// Update is broadcast to subscribers after each committed turn.
type Update struct {
	Turn        int                `json:"turn"`
	State       campaign.TurnState `json:"state"`
	Budget      float64            `json:"budget"`
	EnemyBudget float64            `json:"enemy_budget"`
	Messages    []campaign.Message `json:"messages"`
	Events      []campaign.Event   `json:"events"`
	Snapshot    string             `json:"snapshot,omitempty"`
}

const subscriberBuffer = 16

// Session serializes access to a campaign.
type Session struct {
	advancing   sync.Mutex // held for a whole Advance; never waited on
	mu          sync.RWMutex
	game        *campaign.Game
	store       Store
	snapshotDir string
	deps        DepsFunc

	subMu   sync.Mutex
	subs    map[int]chan Update
	nextSub int
}

// New wraps a running game. store may be nil for an in-memory session;
// snapshotDir may be empty to disable archives. deps supplies collaborators
// for a game restored after a failed turn and must not be nil.
func New(game *campaign.Game, store Store, snapshotDir string, deps DepsFunc) *Session {
	return &Session{
		game:        game,
		store:       store,
		snapshotDir: snapshotDir,
		deps:        deps,
		subs:        make(map[int]chan Update),
	}
}

// View runs fn with shared access to the game. fn must not mutate it.
func (s *Session) View(fn func(g *campaign.Game)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.game)
}

// Generate replaces the live campaign with one built by build and commits
// it. The current campaign is kept when build or the commit fails.
func (s *Session) Generate(build func() (*campaign.Game, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := build()
	if err != nil {
		return fmt.Errorf("generate campaign: %w", err)
	}
	prev := s.game
	s.game = g
	if _, err := s.commit(); err != nil {
		s.game = prev
		return err
	}
	slog.Info("new campaign started", "id", g.ID, "player", g.PlayerFaction.Name, "enemy", g.EnemyFaction.Name)
	return nil
}

// Commit persists the current state without advancing.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.commit()
	return err
}

// Advance ends the current turn, commits the result and notifies
// subscribers. A failed turn is rolled back to the state it started from.
// It returns campaign.ErrReentrantAdvance while another advance is running.
func (s *Session) Advance(forceNoRecovery bool) (Update, error) {
	if !s.advancing.TryLock() {
		return Update{}, campaign.ErrReentrantAdvance
	}
	defer s.advancing.Unlock()

	s.mu.Lock()

	if s.game.State != campaign.Continue {
		turn, state := s.game.Turn, s.game.State
		s.mu.Unlock()
		return Update{Turn: turn, State: state}, campaign.ErrCampaignOver
	}
	cp, err := checkpoint(s.game)
	if err != nil {
		s.mu.Unlock()
		return Update{}, err
	}

	first := len(s.game.Messages)
	state, err := s.game.Advance(forceNoRecovery)
	if err != nil {
		s.rollback(cp, err)
		s.mu.Unlock()
		return Update{}, fmt.Errorf("advance turn: %w", err)
	}

	path, err := s.commit()
	if err != nil {
		s.rollback(cp, err)
		s.mu.Unlock()
		return Update{}, err
	}

	g := s.game
	update := Update{
		Turn:        g.Turn,
		State:       state,
		Budget:      g.Budget,
		EnemyBudget: g.EnemyBudget,
		Messages:    append([]campaign.Message(nil), g.Messages[first:]...),
		Events:      append([]campaign.Event(nil), g.Events...),
		Snapshot:    path,
	}
	s.mu.Unlock()

	slog.Info("turn committed", "turn", update.Turn, "state", update.State, "events", len(update.Events))
	s.broadcast(update)
	return update, nil
}

// commit saves the game. The database write is authoritative; a failed
// snapshot is logged and skipped.
func (s *Session) commit() (string, error) {
	rec := s.game.Record()
	if s.store != nil {
		if err := s.store.SaveCampaign(rec); err != nil {
			return "", fmt.Errorf("save campaign: %w", err)
		}
	}
	if s.snapshotDir == "" {
		return "", nil
	}
	path, err := snapshot.Write(s.snapshotDir, rec)
	if err != nil {
		slog.Warn("snapshot failed", "turn", rec.Turn, "error", err)
		return "", nil
	}
	return path, nil
}

// checkpoint captures the game's persisted surface as an independent copy.
func checkpoint(g *campaign.Game) ([]byte, error) {
	b, err := json.Marshal(g.Record())
	if err != nil {
		return nil, fmt.Errorf("checkpoint turn %d: %w", g.Turn, err)
	}
	return b, nil
}

// rollback replaces the game with the checkpoint taken before the failed
// turn. The terrain is immutable and carried over from the live game.
func (s *Session) rollback(cp []byte, cause error) {
	failed := s.game
	slog.Error("turn failed, restoring previous state", "turn", failed.Turn, "error", cause)

	var rec campaign.Record
	if err := json.Unmarshal(cp, &rec); err != nil {
		slog.Error("checkpoint unreadable", "error", err)
		return
	}
	if rec.Theater != nil {
		rec.Theater.Terrain = failed.Theater.Terrain
	}
	g, err := campaign.Restore(&rec, s.deps(rec.Seed+int64(rec.Turn)))
	if err != nil {
		slog.Error("restore failed", "error", err)
		return
	}
	s.game = g
}

// Subscribe registers for turn updates. Slow subscribers miss updates
// rather than stall the writer.
func (s *Session) Subscribe() (int, <-chan Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	ch := make(chan Update, subscriberBuffer)
	s.subs[s.nextSub] = ch
	return s.nextSub, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *Session) Unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) broadcast(u Update) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- u:
		default:
			slog.Warn("subscriber lagging, update dropped", "sub_id", id, "turn", u.Turn)
		}
	}
}
