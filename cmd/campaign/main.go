// Command campaign runs the turn-based campaign server.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/frontline/internal/api"
	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/config"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/persistence"
	"github.com/talgya/frontline/internal/planning"
	"github.com/talgya/frontline/internal/scenario"
	"github.com/talgya/frontline/internal/session"
	"github.com/talgya/frontline/internal/theater"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("frontline campaign server", "seed", cfg.Seed)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		fatal("failed to create data directory", err)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Definitions ───────────────────────────────────────────────────
	registry := faction.Default()
	if cfg.FactionsPath != "" {
		if registry, err = faction.Load(cfg.FactionsPath); err != nil {
			fatal("failed to load factions", err)
		}
	}
	definition := theater.DefaultDefinition()
	if cfg.TheaterPath != "" {
		if definition, err = theater.LoadDefinition(cfg.TheaterPath); err != nil {
			fatal("failed to load theater", err)
		}
	}
	setup := config.DefaultCampaign()
	if cfg.CampaignPath != "" {
		if setup, err = config.LoadCampaign(cfg.CampaignPath); err != nil {
			fatal("failed to load campaign", err)
		}
	}

	depsFor := func(seed int64) campaign.Deps {
		return planning.Defaults(rand.New(rand.NewSource(seed)))
	}

	// Each generated campaign gets the next seed so restarts differ.
	var generation atomic.Int64
	build := func() (*campaign.Game, error) {
		seed := cfg.Seed + generation.Add(1) - 1
		return generate(seed, setup, registry, definition, depsFor)
	}

	// ── Load or Generate Campaign ─────────────────────────────────────
	var game *campaign.Game
	fresh := false
	rec, err := db.LoadCampaign()
	switch {
	case errors.Is(err, persistence.ErrNoCampaign):
		slog.Info("no saved campaign found, generating new campaign...")
		if game, err = build(); err != nil {
			fatal("failed to generate campaign", err)
		}
		fresh = true
	case err != nil:
		fatal("failed to load campaign", err)
	default:
		if game, err = campaign.Restore(rec, depsFor(rec.Seed+int64(rec.Turn))); err != nil {
			fatal("failed to restore campaign", err)
		}
		slog.Info("campaign restored", "id", game.ID, "turn", game.Turn, "state", game.State)
	}

	sess := session.New(game, db, cfg.SnapshotDir, depsFor)
	// Save on fresh generation only (loaded campaigns are already saved).
	if fresh {
		if err := sess.Commit(); err != nil {
			fatal("initial save failed", err)
		}
	}

	slog.Info("campaign ready",
		"id", game.ID,
		"player", game.PlayerFaction.Name,
		"enemy", game.EnemyFaction.Name,
		"turn", game.Turn,
		"date", game.CurrentDay().Format("2006-01-02"),
		"time_of_day", game.CurrentTimeOfDay(),
		"budget", humanize.Commaf(game.Budget),
		"control_points", len(game.Theater.ControlPoints),
	)

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("FRONTLINE_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	apiServer := &api.Server{
		Session:     sess,
		Messages:    db,
		Port:        cfg.APIPort,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
		TurnLimiter: api.NewRateLimiter(cfg.TurnRateLimit, cfg.TurnRateWindow),
		NewCampaign: build,
	}
	apiServer.Start()

	fmt.Printf("\nCampaign %s: %s vs %s, turn %d.\n", game.ID, game.PlayerFaction.Name, game.EnemyFaction.Name, game.Turn)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	fmt.Println("Serving... (Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	if err := apiServer.Shutdown(5 * time.Second); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	fmt.Println("Server stopped. Every committed turn is saved.")
}

// generate builds a new campaign from the setup and definitions.
func generate(seed int64, setup config.Campaign, registry *faction.Registry, def theater.Definition,
	depsFor func(int64) campaign.Deps) (*campaign.Game, error) {
	player, err := registry.Get(setup.Player)
	if err != nil {
		return nil, err
	}
	enemy, err := registry.Get(setup.Enemy)
	if err != nil {
		return nil, err
	}
	start, err := setup.Start()
	if err != nil {
		return nil, err
	}
	th, err := def.Build(seed)
	if err != nil {
		return nil, fmt.Errorf("build theater: %w", err)
	}

	gen := scenario.New(th, scenario.Options{
		Seed:        seed,
		Player:      player,
		Enemy:       enemy,
		StartDate:   start,
		Settings:    setup.Settings,
		Budget:      setup.Budget,
		EnemyBudget: setup.EnemyBudget,
		Multiplier:  setup.Multiplier,
		Midgame:     setup.Midgame,
		Inverted:    setup.Inverted,
	})
	return gen.Generate(depsFor(seed))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
