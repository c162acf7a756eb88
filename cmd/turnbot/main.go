// Command turnbot runs the campaign turn steward.
// It observes the campaign via the API and advances turns on an interval
// until the campaign ends.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/frontline/internal/config"
	"github.com/talgya/frontline/internal/steward"
)

func main() {
	cfg, err := config.LoadTurnbot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("turn steward starting",
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
		"max_turns", cfg.MaxTurns,
		"force_no_recovery", cfg.ForceNoRecovery,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := steward.New(cfg.APIURL, cfg.AdminKey, steward.Policy{
		ForceNoRecovery: cfg.ForceNoRecovery,
		MaxTurns:        cfg.MaxTurns,
	})

	// Wait for the campaign API to be ready before the first cycle.
	slog.Info("waiting for campaign API...")
	if err := st.WaitForAPI(ctx, 5*time.Minute); err != nil {
		slog.Error("campaign API unavailable", "error", err)
		os.Exit(1)
	}

	err = st.Run(ctx, cfg.Interval)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Info("received signal, shutting down")
	case err != nil:
		slog.Error("steward failed", "error", err)
		os.Exit(1)
	}
	fmt.Println("Turn steward stopped.")
}
