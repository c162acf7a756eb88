// Package api provides the HTTP API for observing and driving a campaign.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/session"
	"github.com/talgya/frontline/internal/theater"
)

const (
	maxStreamConns  = 8
	defaultMessages = 50
	maxMessages     = 500
)

// MessageSource serves the message log from storage.
type MessageSource interface {
	RecentMessages(limit int) ([]campaign.Message, error)
}

// Server serves the campaign over HTTP.
type Server struct {
	Session     *session.Session
	Messages    MessageSource // Optional; the in-memory log is used when nil
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string
	TurnLimiter *RateLimiter

	// NewCampaign builds a replacement campaign. Nil disables POST /campaign.
	NewCampaign func() (*campaign.Game, error)

	streamConns int32
	upgrader    websocket.Upgrader
	httpServer  *http.Server
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	limiter := s.TurnLimiter
	if limiter == nil {
		limiter = NewRateLimiter(6, time.Minute)
		s.TurnLimiter = limiter
	}

	r := chi.NewRouter()
	r.Use(s.corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (GET, read-only).
		r.Get("/status", s.handleStatus)
		r.Get("/controlpoints", s.handleControlPoints)
		r.Get("/controlpoints/{id}", s.handleControlPointDetail)
		r.Get("/messages", s.handleMessages)
		r.Get("/culling", s.handleCulling)
		r.Get("/frontlines", s.handleFrontLines)
		r.Get("/stream", s.handleStream)

		// Admin endpoints (POST, require bearer token, share one limiter).
		r.Post("/turn", s.adminOnly(RateLimitMiddleware(limiter, s.handleTurn)))
		r.Post("/campaign", s.adminOnly(RateLimitMiddleware(limiter, s.handleNewCampaign)))
	})
	return r
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server, waiting up to timeout for requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.TurnLimiter != nil {
		s.TurnLimiter.Close()
	}
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.CORSOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no FRONTLINE_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type weatherView struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Temp        float64 `json:"temp"`
	WindSpeed   float64 `json:"wind_speed"`
	WindFrom    float64 `json:"wind_from"`
	CloudBase   float64 `json:"cloud_base"`
	Storm       bool    `json:"storm"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Session.View(func(g *campaign.Game) {
		c := g.Conditions
		status = map[string]any{
			"id":            g.ID,
			"turn":          g.Turn,
			"state":         g.State,
			"date":          g.CurrentDay().Format("2006-01-02"),
			"time_of_day":   c.TimeOfDay,
			"start_time":    c.StartTime,
			"player":        g.PlayerFaction.Name,
			"enemy":         g.EnemyFaction.Name,
			"budget":        g.BudgetFor(theater.Player),
			"enemy_budget":  g.BudgetFor(theater.Enemy),
			"player_bases":  len(g.Theater.PlayerPoints()),
			"enemy_bases":   len(g.Theater.EnemyPoints()),
			"front_lines":   len(g.Theater.Conflicts()),
			"events":        len(g.Events),
			"blue_packages": len(g.ATOFor(theater.Player).Packages),
			"red_packages":  len(g.ATOFor(theater.Enemy).Packages),
			"weather": weatherView{
				Kind:        string(c.Weather.Kind),
				Description: c.Weather.Description,
				Temp:        c.Weather.Temp,
				WindSpeed:   c.Weather.WindSpeed,
				WindFrom:    c.Weather.WindFrom,
				CloudBase:   c.Weather.CloudBase,
				Storm:       c.Weather.IsStorm(),
			},
		}
	})
	writeJSON(w, status)
}

type controlPointSummary struct {
	ID            theater.ControlPointID `json:"id"`
	Name          string                 `json:"name"`
	Type          string                 `json:"type"`
	Side          string                 `json:"side"`
	Position      geo.Point              `json:"position"`
	Strength      float64                `json:"strength"`
	Importance    float64                `json:"importance"`
	Installations int                    `json:"installations"`
	Aircraft      int                    `json:"aircraft"`
	Armor         int                    `json:"armor"`
	FrontLine     bool                   `json:"front_line"`
	RunwayDamaged bool                   `json:"runway_damaged,omitempty"`
}

func summarize(th *theater.Theater, cp *theater.ControlPoint) controlPointSummary {
	return controlPointSummary{
		ID:            cp.ID,
		Name:          cp.Name,
		Type:          cp.Type.String(),
		Side:          cp.Captured.String(),
		Position:      cp.Position,
		Strength:      cp.Strength,
		Importance:    cp.Importance,
		Installations: len(cp.Installations),
		Aircraft:      cp.Base.TotalAircraft(),
		Armor:         cp.Base.TotalArmor(),
		FrontLine:     th.HasFrontLine(cp),
		RunwayDamaged: cp.RunwayDamaged,
	}
}

func (s *Server) handleControlPoints(w http.ResponseWriter, r *http.Request) {
	side := r.URL.Query().Get("side")
	var out []controlPointSummary
	s.Session.View(func(g *campaign.Game) {
		out = make([]controlPointSummary, 0, len(g.Theater.ControlPoints))
		for _, cp := range g.Theater.ControlPoints {
			if side != "" && !strings.EqualFold(cp.Captured.String(), side) {
				continue
			}
			out = append(out, summarize(g.Theater, cp))
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleControlPointDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid control point id", http.StatusBadRequest)
		return
	}

	// The control point is encoded under the read lock; it is live state.
	var body []byte
	var encErr error
	s.Session.View(func(g *campaign.Game) {
		cp := g.Theater.ControlPoint(theater.ControlPointID(id))
		if cp == nil {
			return
		}
		neighbors := make([]controlPointSummary, 0, len(cp.Links))
		for _, n := range g.Theater.Neighbors(cp) {
			neighbors = append(neighbors, summarize(g.Theater, n))
		}
		detail := map[string]any{
			"control_point": cp,
			"summary":       summarize(g.Theater, cp),
			"neighbors":     neighbors,
		}
		if plan, ok := g.GroundPlans[cp.ID]; ok {
			enemy := ""
			if e := g.Theater.ControlPoint(plan.Enemy); e != nil {
				enemy = e.Name
			}
			detail["ground_plan"] = groundPlanView{
				Enemy:  enemy,
				Stance: string(plan.Stance),
				Armor:  plan.Armor,
			}
		}
		body, encErr = json.MarshalIndent(detail, "", "  ")
	})
	switch {
	case encErr != nil:
		slog.Error("encode control point failed", "id", id, "error", encErr)
		http.Error(w, "encode failed", http.StatusInternalServerError)
	case body == nil:
		http.Error(w, "control point not found", http.StatusNotFound)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

type groundPlanView struct {
	Enemy  string `json:"enemy"`
	Stance string `json:"stance"`
	Armor  int    `json:"armor"`
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultMessages
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxMessages)
	}

	if s.Messages != nil {
		msgs, err := s.Messages.RecentMessages(limit)
		if err != nil {
			slog.Error("messages query failed", "error", err)
			http.Error(w, "messages unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, msgs)
		return
	}

	var out []campaign.Message
	s.Session.View(func(g *campaign.Game) {
		out = make([]campaign.Message, 0, limit)
		for i := len(g.Messages) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, g.Messages[i])
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleCulling(w http.ResponseWriter, r *http.Request) {
	var resp map[string]any
	s.Session.View(func(g *campaign.Game) {
		resp = map[string]any{
			"enabled":     g.Settings.PerfCulling,
			"distance_km": g.Settings.PerfCullingDistance,
			"points":      g.CullingPoints(),
		}
	})
	writeJSON(w, resp)
}

type frontLineView struct {
	Player   string    `json:"player"`
	PlayerID int       `json:"player_id"`
	Enemy    string    `json:"enemy"`
	EnemyID  int       `json:"enemy_id"`
	Position geo.Point `json:"position"`
}

func (s *Server) handleFrontLines(w http.ResponseWriter, r *http.Request) {
	var out []frontLineView
	s.Session.View(func(g *campaign.Game) {
		conflicts := g.Theater.Conflicts()
		out = make([]frontLineView, 0, len(conflicts))
		for _, f := range conflicts {
			out = append(out, frontLineView{
				Player:   f.A.Name,
				PlayerID: int(f.A.ID),
				Enemy:    f.B.Name,
				EnemyID:  int(f.B.ID),
				Position: f.Position(),
			})
		}
	})
	writeJSON(w, out)
}

type turnRequest struct {
	ForceNoRecovery bool `json:"force_no_recovery"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	update, err := s.Session.Advance(req.ForceNoRecovery)
	switch {
	case errors.Is(err, campaign.ErrCampaignOver):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(update)
		return
	case errors.Is(err, campaign.ErrReentrantAdvance):
		http.Error(w, "turn already in progress", http.StatusServiceUnavailable)
		return
	case err != nil:
		slog.Error("turn failed", "error", err)
		http.Error(w, "turn failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, update)
}

func (s *Server) handleNewCampaign(w http.ResponseWriter, r *http.Request) {
	if s.NewCampaign == nil {
		http.Error(w, "campaign generation not configured", http.StatusNotImplemented)
		return
	}
	if err := s.Session.Generate(s.NewCampaign); err != nil {
		slog.Error("new campaign failed", "error", err)
		http.Error(w, "campaign generation failed", http.StatusInternalServerError)
		return
	}
	s.handleStatus(w, r)
}

// handleStream upgrades to a websocket and sends one JSON update per
// committed turn. Connections are capped.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.streamConns, 1)
	if current > maxStreamConns {
		atomic.AddInt32(&s.streamConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.streamConns, -1)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID, ch := s.Session.Subscribe()
	defer s.Session.Unsubscribe(subID)
	slog.Info("stream client connected", "sub_id", subID)

	// Catch-up: the current turn.
	var hello session.Update
	s.Session.View(func(g *campaign.Game) {
		hello = session.Update{
			Turn:        g.Turn,
			State:       g.State,
			Budget:      g.Budget,
			EnemyBudget: g.EnemyBudget,
			Events:      append([]campaign.Event(nil), g.Events...),
		}
		if n := len(g.Messages); n > 0 {
			hello.Messages = append(hello.Messages, g.Messages[n-1])
		}
	})
	if err := writeWS(conn, hello); err != nil {
		return
	}

	// Reader: detect client close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return
			}
			if err := writeWS(conn, u); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeWS(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
