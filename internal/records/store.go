// Package records persists administered screenings and simulation runs
// so a clinician can review a client's history.
//
// It uses SQLite in WAL mode. Scoring and simulation never depend on it;
// the outer surfaces save results here after computing them.
package records

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("record not found")

// DefaultListLimit caps list queries when no limit is given.
const DefaultListLimit = 20

// ─── Types ───────────────────────────────────────────────────────────────────

// Screening is one administered questionnaire with its interpretation.
type Screening struct {
	ID             string                   `json:"id"`
	ClientID       string                   `json:"client_id"`
	Responses      screening.ResponseSet    `json:"responses"`
	Interpretation screening.Interpretation `json:"interpretation"`
	CreatedAt      string                   `json:"created_at"`
}

// Outcome is the final state of one policy within a saved run.
type Outcome struct {
	Policy trajectory.Policy  `json:"policy"`
	Final  trajectory.Summary `json:"final"`
}

// Simulation is a saved simulate or compare invocation. Only final
// states are kept; the seed reproduces the full trajectories.
type Simulation struct {
	ID         string             `json:"id"`
	ClientID   string             `json:"client_id"`
	Profile    trajectory.Profile `json:"profile"`
	Months     int                `json:"months"`
	StartMonth int                `json:"start_month"`
	Seed       int64              `json:"seed"`
	Outcomes   []Outcome          `json:"outcomes"`
	CreatedAt  string             `json:"created_at"`
}

// OutcomesFrom extracts the final states of a comparison in policy order.
func OutcomesFrom(c trajectory.Comparison) []Outcome {
	out := make([]Outcome, 0, len(c.Runs))
	for _, r := range c.Runs {
		out = append(out, Outcome{Policy: r.Policy, Final: r.Trajectory.Final})
	}
	return out
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir string
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed record store.
type Store struct {
	db *sql.DB
}

// New creates the data directory if needed, opens SQLite with WAL mode
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("records: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "records.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("records: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("records: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("records: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS screenings (
			id                  TEXT PRIMARY KEY,
			client_id           TEXT NOT NULL,
			total_score         REAL NOT NULL,
			risk_level          TEXT NOT NULL,
			intervention_window TEXT NOT NULL,
			responses           TEXT NOT NULL,
			interpretation      TEXT NOT NULL,
			created_at          TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_screen_client ON screenings(client_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS simulations (
			id          TEXT PRIMARY KEY,
			client_id   TEXT    NOT NULL,
			profile     TEXT    NOT NULL,
			months      INTEGER NOT NULL,
			start_month INTEGER NOT NULL,
			seed        INTEGER NOT NULL,
			outcomes    TEXT    NOT NULL,
			created_at  TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sim_client ON simulations(client_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Screenings ──────────────────────────────────────────────────────────────

// SaveScreening stores an administered screening and returns it with its
// generated ID and timestamp.
func (s *Store) SaveScreening(clientID string, responses screening.ResponseSet, in screening.Interpretation) (*Screening, error) {
	respJSON, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("records: encode responses: %w", err)
	}
	interpJSON, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("records: encode interpretation: %w", err)
	}

	rec := &Screening{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		Responses:      responses,
		Interpretation: in,
		CreatedAt:      Now(),
	}
	_, err = s.db.Exec(
		`INSERT INTO screenings (id, client_id, total_score, risk_level, intervention_window, responses, interpretation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ClientID, in.TotalScore, string(in.RiskLevel), string(in.Window),
		string(respJSON), string(interpJSON), rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("records: insert screening: %w", err)
	}
	return rec, nil
}

// GetScreening retrieves a screening by ID.
func (s *Store) GetScreening(id string) (*Screening, error) {
	row := s.db.QueryRow(
		`SELECT id, client_id, responses, interpretation, created_at FROM screenings WHERE id = ?`, id,
	)
	rec, err := scanScreening(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: screening %s", ErrNotFound, id)
	}
	return rec, err
}

// ListScreenings returns a client's screenings, newest first. An empty
// clientID lists every client.
func (s *Store) ListScreenings(clientID string, limit int) ([]Screening, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `SELECT id, client_id, responses, interpretation, created_at FROM screenings`
	args := []any{}
	if clientID != "" {
		query += " WHERE client_id = ?"
		args = append(args, clientID)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: list screenings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Screening{}
	for rows.Next() {
		rec, err := scanScreening(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *rec)
	}
	return results, rows.Err()
}

// ─── Simulations ─────────────────────────────────────────────────────────────

// SaveSimulation stores a simulation run. ID and CreatedAt are assigned.
func (s *Store) SaveSimulation(sim Simulation) (*Simulation, error) {
	profJSON, err := json.Marshal(sim.Profile)
	if err != nil {
		return nil, fmt.Errorf("records: encode profile: %w", err)
	}
	outJSON, err := json.Marshal(sim.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("records: encode outcomes: %w", err)
	}

	sim.ID = uuid.NewString()
	sim.CreatedAt = Now()
	_, err = s.db.Exec(
		`INSERT INTO simulations (id, client_id, profile, months, start_month, seed, outcomes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sim.ID, sim.ClientID, string(profJSON), sim.Months, sim.StartMonth, sim.Seed, string(outJSON), sim.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("records: insert simulation: %w", err)
	}
	return &sim, nil
}

// ListSimulations returns a client's simulation runs, newest first. An
// empty clientID lists every client.
func (s *Store) ListSimulations(clientID string, limit int) ([]Simulation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `SELECT id, client_id, profile, months, start_month, seed, outcomes, created_at FROM simulations`
	args := []any{}
	if clientID != "" {
		query += " WHERE client_id = ?"
		args = append(args, clientID)
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("records: list simulations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Simulation{}
	for rows.Next() {
		var (
			sim           Simulation
			prof, outcome string
		)
		if err := rows.Scan(&sim.ID, &sim.ClientID, &prof, &sim.Months, &sim.StartMonth, &sim.Seed, &outcome, &sim.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(prof), &sim.Profile); err != nil {
			return nil, fmt.Errorf("records: decode profile %s: %w", sim.ID, err)
		}
		if err := json.Unmarshal([]byte(outcome), &sim.Outcomes); err != nil {
			return nil, fmt.Errorf("records: decode outcomes %s: %w", sim.ID, err)
		}
		results = append(results, sim)
	}
	return results, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanScreening(row scanner) (*Screening, error) {
	var (
		rec          Screening
		resp, interp string
	)
	if err := row.Scan(&rec.ID, &rec.ClientID, &resp, &interp, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resp), &rec.Responses); err != nil {
		return nil, fmt.Errorf("records: decode responses %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(interp), &rec.Interpretation); err != nil {
		return nil, fmt.Errorf("records: decode interpretation %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// Now returns the current time formatted for storage.
func Now() string {
	return timeNow().UTC().Format(time.RFC3339)
}
