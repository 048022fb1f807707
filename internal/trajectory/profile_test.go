package trajectory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCases_Reference(t *testing.T) {
	tests := []struct {
		name          string
		mh, score     float64
		vuln, protect int
	}{
		{"moderate_risk", 65, 45, 2, 1},
		{"high_risk", 50, 30, 3, 0},
		{"severe_risk", 35, 20, 4, 1},
	}
	cases := Cases()
	if len(cases) != len(tests) {
		t.Fatalf("len(Cases()) = %d, want %d", len(cases), len(tests))
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := cases[tt.name]
			if !ok {
				t.Fatalf("case %s missing", tt.name)
			}
			if p.BaselineMentalHealth != tt.mh || p.BaselineAlgorithmicScore != tt.score {
				t.Errorf("baselines = %v/%v, want %v/%v", p.BaselineMentalHealth, p.BaselineAlgorithmicScore, tt.mh, tt.score)
			}
			if len(p.VulnerabilityFactors) != tt.vuln || len(p.ProtectiveFactors) != tt.protect {
				t.Errorf("factors = %d/%d, want %d/%d", len(p.VulnerabilityFactors), len(p.ProtectiveFactors), tt.vuln, tt.protect)
			}
			if !p.CurrentTreatment {
				t.Error("reference cases are all in treatment")
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestProfile_ValidateBounds(t *testing.T) {
	for _, v := range []float64{0, 100} {
		p := Profile{BaselineMentalHealth: v, BaselineAlgorithmicScore: v}
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%v) = %v, want nil at the edge", v, err)
		}
	}
	for _, v := range []float64{-0.01, 100.01} {
		p := Profile{BaselineMentalHealth: 50, BaselineAlgorithmicScore: v}
		if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("Validate(score=%v) = %v, want ErrInvalidProfile", v, err)
		}
	}
}

func TestLoadProfile(t *testing.T) {
	in := `
baseline_mental_health: 55
baseline_algorithmic_score: 40
vulnerability_factors: [medical_debt]
protective_factors: []
months_since_adverse_event: 2
current_treatment: false
`
	p, err := LoadProfile(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}
	if p.BaselineMentalHealth != 55 || p.BaselineAlgorithmicScore != 40 {
		t.Errorf("baselines = %v/%v", p.BaselineMentalHealth, p.BaselineAlgorithmicScore)
	}
	if len(p.VulnerabilityFactors) != 1 || p.CurrentTreatment {
		t.Errorf("profile = %+v", p)
	}
}

func TestLoadProfile_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"out of range", "baseline_mental_health: 120\nbaseline_algorithmic_score: 40\n"},
		{"unknown field", "baseline_mental_health: 50\nmood: low\n"},
		{"malformed", "baseline_mental_health: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadProfile(strings.NewReader(tt.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	if err := os.WriteFile(path, []byte("baseline_mental_health: 70\nbaseline_algorithmic_score: 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProfileFile(path)
	if err != nil {
		t.Fatalf("LoadProfileFile error: %v", err)
	}
	if p.BaselineMentalHealth != 70 {
		t.Errorf("BaselineMentalHealth = %v, want 70", p.BaselineMentalHealth)
	}

	if _, err := LoadProfileFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestEffectsOf(t *testing.T) {
	for _, it := range InterventionTypes() {
		if _, err := EffectsOf(it); err != nil {
			t.Errorf("EffectsOf(%s) error: %v", it, err)
		}
	}
	e, _ := EffectsOf(Combined)
	if e.ShameReduction != 0.25 || e.HelplessnessReduction != 0.20 || e.ScoreBoost != 10 {
		t.Errorf("Combined effects = %+v", e)
	}
	if _, err := EffectsOf("yoga"); !errors.Is(err, ErrInvalidInterventionType) {
		t.Errorf("EffectsOf(yoga) = %v, want ErrInvalidInterventionType", err)
	}
}
