package records

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedClock pins timeNow and advances it a minute per call.
func fixedClock(t *testing.T) {
	t.Helper()
	orig := timeNow
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	timeNow = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	t.Cleanup(func() { timeNow = orig })
}

func sampleInterpretation(t *testing.T) (screening.ResponseSet, screening.Interpretation) {
	t.Helper()
	responses := screening.SampleResponses()
	res, err := screening.Score(screening.Default(), responses)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	return responses, screening.InterpretResult(res)
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "records.db")); err != nil {
		t.Errorf("records.db not created: %v", err)
	}
}

func TestNew_WALMode(t *testing.T) {
	s := newTestStore(t)
	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestNew_OpenError(t *testing.T) {
	orig := openDB
	openDB = func(string, string) (*sql.DB, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { openDB = orig })

	if _, err := New(Config{DataDir: t.TempDir()}); err == nil {
		t.Fatal("expected open error")
	}
}

func TestNew_Reopen(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	responses, in := sampleInterpretation(t)
	rec, err := s.SaveScreening("C-1", responses, in)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()
	if _, err := s2.GetScreening(rec.ID); err != nil {
		t.Errorf("screening lost across reopen: %v", err)
	}
}

// ─── Screenings ─────────────────────────────────────────────────────────────

func TestSaveScreening_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	responses, in := sampleInterpretation(t)

	rec, err := s.SaveScreening("DEMO-001", responses, in)
	if err != nil {
		t.Fatalf("SaveScreening error: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt == "" {
		t.Fatalf("ID/CreatedAt not assigned: %+v", rec)
	}

	got, err := s.GetScreening(rec.ID)
	if err != nil {
		t.Fatalf("GetScreening error: %v", err)
	}
	if got.ClientID != "DEMO-001" {
		t.Errorf("ClientID = %s, want DEMO-001", got.ClientID)
	}
	if got.Interpretation.TotalScore != 37 || got.Interpretation.RiskLevel != screening.RiskHigh {
		t.Errorf("interpretation = %v/%s, want 37/HIGH", got.Interpretation.TotalScore, got.Interpretation.RiskLevel)
	}
	if got.Interpretation.Window != screening.WindowUrgent {
		t.Errorf("Window = %s, want urgent", got.Interpretation.Window)
	}
	if got.Interpretation.Subscales[screening.DomainExposure] != 12 {
		t.Errorf("exposure subscale = %v, want 12", got.Interpretation.Subscales[screening.DomainExposure])
	}
	if len(got.Responses) != 20 || got.Responses[17] != 3 {
		t.Errorf("Responses = %v", got.Responses)
	}
}

func TestGetScreening_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetScreening("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListScreenings_NewestFirstPerClient(t *testing.T) {
	fixedClock(t)
	s := newTestStore(t)
	responses, in := sampleInterpretation(t)

	var ids []string
	for _, client := range []string{"A", "B", "A", "A"} {
		rec, err := s.SaveScreening(client, responses, in)
		if err != nil {
			t.Fatal(err)
		}
		if client == "A" {
			ids = append(ids, rec.ID)
		}
	}

	got, err := s.ListScreenings("A", 0)
	if err != nil {
		t.Fatalf("ListScreenings error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, rec := range got {
		if want := ids[len(ids)-1-i]; rec.ID != want {
			t.Errorf("got[%d].ID = %s, want %s", i, rec.ID, want)
		}
	}

	limited, err := s.ListScreenings("", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d", len(limited))
	}
}

func TestListScreenings_EmptyIsNonNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ListScreenings("nobody", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

// ─── Simulations ────────────────────────────────────────────────────────────

func TestSaveSimulation_RoundTrip(t *testing.T) {
	fixedClock(t)
	s := newTestStore(t)

	profile := trajectory.Cases()["moderate_risk"]
	c, err := trajectory.NewModel(trajectory.DefaultParameters()).
		Compare(t.Context(), profile, trajectory.CompareOptions{Months: 6, Seed: 3})
	if err != nil {
		t.Fatal(err)
	}

	saved, err := s.SaveSimulation(Simulation{
		ClientID:   "DEMO-001",
		Profile:    profile,
		Months:     c.Months,
		StartMonth: c.StartMonth,
		Seed:       c.Seed,
		Outcomes:   OutcomesFrom(c),
	})
	if err != nil {
		t.Fatalf("SaveSimulation error: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt != "2026-03-01T09:01:00Z" {
		t.Errorf("ID/CreatedAt = %q/%q", saved.ID, saved.CreatedAt)
	}

	list, err := s.ListSimulations("DEMO-001", 10)
	if err != nil {
		t.Fatalf("ListSimulations error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	got := list[0]
	if got.Seed != 3 || got.Months != 6 || got.StartMonth != trajectory.DefaultStartMonth {
		t.Errorf("run settings = %d/%d/%d", got.Seed, got.Months, got.StartMonth)
	}
	if got.Profile.BaselineMentalHealth != 65 || len(got.Profile.VulnerabilityFactors) != 2 {
		t.Errorf("Profile = %+v", got.Profile)
	}
	if len(got.Outcomes) != len(trajectory.Policies()) {
		t.Fatalf("len(Outcomes) = %d", len(got.Outcomes))
	}
	for i, o := range got.Outcomes {
		if o.Policy != c.Runs[i].Policy || o.Final != c.Runs[i].Trajectory.Final {
			t.Errorf("outcome %d = %+v, want %+v", i, o, c.Runs[i].Trajectory.Final)
		}
	}
}

func TestListSimulations_FiltersByClient(t *testing.T) {
	s := newTestStore(t)
	for _, client := range []string{"A", "B"} {
		if _, err := s.SaveSimulation(Simulation{ClientID: client, Months: 1, StartMonth: 1}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.ListSimulations("B", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ClientID != "B" {
		t.Errorf("got %+v, want one run for B", got)
	}
	all, err := s.ListSimulations("", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
}
