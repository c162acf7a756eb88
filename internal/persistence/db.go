// Package persistence provides SQLite-based campaign storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/frontline/internal/campaign"
	"github.com/talgya/frontline/internal/faction"
	"github.com/talgya/frontline/internal/geo"
	"github.com/talgya/frontline/internal/theater"
)

// ErrNoCampaign is returned when the database holds no saved campaign.
var ErrNoCampaign = errors.New("no saved campaign")

// DB wraps a SQLite connection for campaign persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS control_points (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		type INTEGER NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		captured INTEGER NOT NULL,
		captured_invert INTEGER NOT NULL,
		strength REAL NOT NULL,
		importance REAL NOT NULL,
		runway_damaged INTEGER NOT NULL,
		runway_repair_turns INTEGER NOT NULL,
		links_json TEXT NOT NULL,
		installations_json TEXT NOT NULL,
		base_json TEXT NOT NULL,
		pending_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		title TEXT NOT NULL,
		text TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS campaign_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_turn ON messages(turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type controlPointRow struct {
	ID                int     `db:"id"`
	Name              string  `db:"name"`
	Type              int     `db:"type"`
	PosX              float64 `db:"pos_x"`
	PosY              float64 `db:"pos_y"`
	Captured          bool    `db:"captured"`
	CapturedInvert    bool    `db:"captured_invert"`
	Strength          float64 `db:"strength"`
	Importance        float64 `db:"importance"`
	RunwayDamaged     bool    `db:"runway_damaged"`
	RunwayRepairTurns int     `db:"runway_repair_turns"`
	LinksJSON         string  `db:"links_json"`
	InstallationsJSON string  `db:"installations_json"`
	BaseJSON          string  `db:"base_json"`
	PendingJSON       string  `db:"pending_json"`
}

type messageRow struct {
	Turn  int    `db:"turn"`
	Title string `db:"title"`
	Text  string `db:"text"`
}

// Meta keys.
const (
	metaID            = "id"
	metaSeed          = "seed"
	metaTurn          = "turn"
	metaState         = "state"
	metaStartDate     = "start_date"
	metaBudget        = "budget"
	metaEnemyBudget   = "enemy_budget"
	metaTheaterName   = "theater_name"
	metaTerrain       = "terrain_json"
	metaLastGroupID   = "last_group_id"
	metaLastUnitID    = "last_unit_id"
	metaSettings      = "settings_json"
	metaPlayerFaction = "player_faction_json"
	metaEnemyFaction  = "enemy_faction_json"
	metaPlayerCountry = "player_country"
	metaEnemyCountry  = "enemy_country"
	metaConditions    = "conditions_json"
	metaSavedAt       = "saved_at"
)

// SaveCampaign performs a full save of a campaign record in one
// transaction (full replace).
func (db *DB) SaveCampaign(rec *campaign.Record) error {
	meta, err := recordMeta(rec)
	if err != nil {
		return err
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveControlPoints(tx, rec.Theater.ControlPoints); err != nil {
		return fmt.Errorf("save control points: %w", err)
	}
	if err := saveMessages(tx, rec.Messages); err != nil {
		return fmt.Errorf("save messages: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM campaign_meta"); err != nil {
		return err
	}
	for key, value := range meta {
		if _, err := tx.Exec("INSERT INTO campaign_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("campaign saved", "id", rec.ID, "turn", rec.Turn, "control_points", len(rec.Theater.ControlPoints))
	return nil
}

func saveControlPoints(tx *sqlx.Tx, points []*theater.ControlPoint) error {
	if _, err := tx.Exec("DELETE FROM control_points"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO control_points
		(id, name, type, pos_x, pos_y, captured, captured_invert, strength, importance,
		 runway_damaged, runway_repair_turns, links_json, installations_json, base_json, pending_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, cp := range points {
		linksJSON, _ := json.Marshal(cp.Links)
		instJSON, err := json.Marshal(cp.Installations)
		if err != nil {
			return fmt.Errorf("encode installations of %d: %w", cp.ID, err)
		}
		baseJSON, _ := json.Marshal(cp.Base)
		pendingJSON, _ := json.Marshal(cp.Pending)

		_, err = stmt.Exec(
			cp.ID, cp.Name, int(cp.Type), cp.Position.X, cp.Position.Y,
			boolInt(bool(cp.Captured)), boolInt(bool(cp.CapturedInvert)), cp.Strength, cp.Importance,
			boolInt(cp.RunwayDamaged), cp.RunwayRepairTurns,
			string(linksJSON), string(instJSON), string(baseJSON), string(pendingJSON),
		)
		if err != nil {
			return fmt.Errorf("insert control point %d: %w", cp.ID, err)
		}
	}
	return nil
}

func saveMessages(tx *sqlx.Tx, messages []campaign.Message) error {
	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return err
	}
	for _, m := range messages {
		if _, err := tx.Exec("INSERT INTO messages (turn, title, text) VALUES (?, ?, ?)", m.Turn, m.Title, m.Text); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func recordMeta(rec *campaign.Record) (map[string]string, error) {
	if rec.Theater == nil {
		return nil, errors.New("record has no theater")
	}
	state, _ := rec.State.MarshalText()
	meta := map[string]string{
		metaID:            rec.ID.String(),
		metaSeed:          strconv.FormatInt(rec.Seed, 10),
		metaTurn:          strconv.Itoa(rec.Turn),
		metaState:         string(state),
		metaStartDate:     rec.StartDate.Format(time.RFC3339),
		metaBudget:        strconv.FormatFloat(rec.Budget, 'g', -1, 64),
		metaEnemyBudget:   strconv.FormatFloat(rec.EnemyBudget, 'g', -1, 64),
		metaTheaterName:   rec.Theater.Name,
		metaLastGroupID:   strconv.Itoa(rec.Theater.LastGroupID),
		metaLastUnitID:    strconv.Itoa(rec.Theater.LastUnitID),
		metaPlayerCountry: rec.PlayerCountry,
		metaEnemyCountry:  rec.EnemyCountry,
		metaSavedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	for key, v := range map[string]any{
		metaTerrain:       rec.Theater.TerrainConfig,
		metaSettings:      rec.Settings,
		metaPlayerFaction: rec.PlayerFaction,
		metaEnemyFaction:  rec.EnemyFaction,
		metaConditions:    rec.Conditions,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		meta[key] = string(b)
	}
	return meta, nil
}

// HasCampaign reports whether a campaign has been saved.
func (db *DB) HasCampaign() bool {
	_, err := db.GetMeta(metaID)
	return err == nil
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM campaign_meta WHERE key = ?", key)
	return value, err
}

// LoadCampaign reads the saved campaign record. The theater comes back
// without terrain; campaign.Restore regenerates it.
func (db *DB) LoadCampaign() (*campaign.Record, error) {
	var pairs []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&pairs, "SELECT key, value FROM campaign_meta"); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	meta := make(map[string]string, len(pairs))
	for _, p := range pairs {
		meta[p.Key] = p.Value
	}
	if _, ok := meta[metaID]; !ok {
		return nil, ErrNoCampaign
	}

	rec, err := decodeMeta(meta)
	if err != nil {
		return nil, err
	}

	points, err := db.loadControlPoints()
	if err != nil {
		return nil, err
	}
	rec.Theater.ControlPoints = points

	var rows []messageRow
	if err := db.conn.Select(&rows, "SELECT turn, title, text FROM messages ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	for _, r := range rows {
		rec.Messages = append(rec.Messages, campaign.Message{Title: r.Title, Text: r.Text, Turn: r.Turn})
	}

	slog.Info("campaign loaded", "id", rec.ID, "turn", rec.Turn, "control_points", len(points))
	return rec, nil
}

// decodeMeta rebuilds everything but control points and messages.
func decodeMeta(meta map[string]string) (*campaign.Record, error) {
	d := metaDecoder{meta: meta}
	rec := &campaign.Record{
		Seed:          d.int64(metaSeed),
		Turn:          int(d.int64(metaTurn)),
		Budget:        d.float(metaBudget),
		EnemyBudget:   d.float(metaEnemyBudget),
		PlayerCountry: meta[metaPlayerCountry],
		EnemyCountry:  meta[metaEnemyCountry],
		Theater: &theater.Theater{
			Name:        meta[metaTheaterName],
			LastGroupID: int(d.int64(metaLastGroupID)),
			LastUnitID:  int(d.int64(metaLastUnitID)),
		},
		PlayerFaction: &faction.Faction{},
		EnemyFaction:  &faction.Faction{},
	}
	rec.ID, d.err = uuid.Parse(meta[metaID])
	if d.err == nil {
		rec.StartDate, d.err = time.Parse(time.RFC3339, meta[metaStartDate])
	}
	if d.err == nil {
		d.err = rec.State.UnmarshalText([]byte(meta[metaState]))
	}
	d.json(metaTerrain, &rec.Theater.TerrainConfig)
	d.json(metaSettings, &rec.Settings)
	d.json(metaPlayerFaction, rec.PlayerFaction)
	d.json(metaEnemyFaction, rec.EnemyFaction)
	d.json(metaConditions, &rec.Conditions)
	if d.err != nil {
		return nil, fmt.Errorf("decode campaign meta: %w", d.err)
	}
	return rec, nil
}

// metaDecoder parses meta values, keeping the first error.
type metaDecoder struct {
	meta map[string]string
	err  error
}

func (d *metaDecoder) int64(key string) int64 {
	if d.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(d.meta[key], 10, 64)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", key, err)
	}
	return v
}

func (d *metaDecoder) float(key string) float64 {
	if d.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(d.meta[key], 64)
	if err != nil {
		d.err = fmt.Errorf("%s: %w", key, err)
	}
	return v
}

func (d *metaDecoder) json(key string, target any) {
	if d.err != nil {
		return
	}
	if err := json.Unmarshal([]byte(d.meta[key]), target); err != nil {
		d.err = fmt.Errorf("%s: %w", key, err)
	}
}

func (db *DB) loadControlPoints() ([]*theater.ControlPoint, error) {
	var rows []controlPointRow
	if err := db.conn.Select(&rows, "SELECT * FROM control_points ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("load control points: %w", err)
	}

	points := make([]*theater.ControlPoint, 0, len(rows))
	for _, r := range rows {
		cp := &theater.ControlPoint{
			ID:                theater.ControlPointID(r.ID),
			Name:              r.Name,
			Type:              theater.ControlPointType(r.Type),
			Position:          geo.Pt(r.PosX, r.PosY),
			Captured:          theater.Side(r.Captured),
			CapturedInvert:    theater.Side(r.CapturedInvert),
			Strength:          r.Strength,
			Importance:        r.Importance,
			RunwayDamaged:     r.RunwayDamaged,
			RunwayRepairTurns: r.RunwayRepairTurns,
		}
		fields := []struct {
			raw    string
			target any
		}{
			{r.LinksJSON, &cp.Links},
			{r.InstallationsJSON, &cp.Installations},
			{r.BaseJSON, &cp.Base},
			{r.PendingJSON, &cp.Pending},
		}
		for _, f := range fields {
			if err := json.Unmarshal([]byte(f.raw), f.target); err != nil {
				return nil, fmt.Errorf("decode control point %d: %w", r.ID, err)
			}
		}
		points = append(points, cp)
	}
	return points, nil
}

// RecentMessages returns the most recent messages, newest first.
func (db *DB) RecentMessages(limit int) ([]campaign.Message, error) {
	var rows []messageRow
	err := db.conn.Select(&rows,
		"SELECT turn, title, text FROM messages ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	out := make([]campaign.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, campaign.Message{Title: r.Title, Text: r.Text, Turn: r.Turn})
	}
	return out, nil
}
