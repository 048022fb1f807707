// Package trajectory simulates how a client's mental health and
// algorithmic standing evolve month by month under different
// intervention policies.
//
// The model is a small coupled recurrence with one Bernoulli rejection
// draw per month:
//
//	rejection -> shame -> avoidance -> mental health
//	                         |
//	                         +-> fewer applications, lower algorithmic score
//
// The random source is injected so runs are reproducible.
package trajectory

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProfile is returned for baselines outside [0,100] or a
// negative duration.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is the clinical baseline of a simulated client.
// Only the counts of vulnerability and protective factors matter to the model.
type Profile struct {
	BaselineMentalHealth     float64  `json:"baseline_mental_health" yaml:"baseline_mental_health"`         // 0-100, higher = healthier
	BaselineAlgorithmicScore float64  `json:"baseline_algorithmic_score" yaml:"baseline_algorithmic_score"` // 0-100, higher = better standing
	VulnerabilityFactors     []string `json:"vulnerability_factors" yaml:"vulnerability_factors"`
	ProtectiveFactors        []string `json:"protective_factors" yaml:"protective_factors"`
	MonthsSinceAdverseEvent  float64  `json:"months_since_adverse_event" yaml:"months_since_adverse_event"`
	CurrentTreatment         bool     `json:"current_treatment" yaml:"current_treatment"`
}

// Validate checks the baselines are real numbers within [0,100].
func (p Profile) Validate() error {
	if err := checkUnit("baseline_mental_health", p.BaselineMentalHealth); err != nil {
		return err
	}
	if err := checkUnit("baseline_algorithmic_score", p.BaselineAlgorithmicScore); err != nil {
		return err
	}
	return nil
}

func checkUnit(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%w: %s must be within [0, 100], got %v", ErrInvalidProfile, field, v)
	}
	return nil
}

// Cases returns the reference clinical cases keyed by name.
func Cases() map[string]Profile {
	return map[string]Profile{
		"moderate_risk": {
			BaselineMentalHealth:     65,
			BaselineAlgorithmicScore: 45,
			VulnerabilityFactors:     []string{"employment_gap", "medical_debt"},
			ProtectiveFactors:        []string{"treatment_engaged"},
			MonthsSinceAdverseEvent:  4,
			CurrentTreatment:         true,
		},
		"high_risk": {
			BaselineMentalHealth:     50,
			BaselineAlgorithmicScore: 30,
			VulnerabilityFactors:     []string{"SUD_history", "justice_involved", "housing_instability"},
			ProtectiveFactors:        []string{},
			MonthsSinceAdverseEvent:  8,
			CurrentTreatment:         true,
		},
		"severe_risk": {
			BaselineMentalHealth:     35,
			BaselineAlgorithmicScore: 20,
			VulnerabilityFactors:     []string{"SUD_history", "HIV_positive", "justice_involved", "homeless"},
			ProtectiveFactors:        []string{"treatment_engaged"},
			MonthsSinceAdverseEvent:  18,
			CurrentTreatment:         true,
		},
	}
}

// LoadProfile reads a profile from YAML and validates it.
func LoadProfile(r io.Reader) (Profile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// LoadProfileFile reads a profile from a YAML file.
func LoadProfileFile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()
	return LoadProfile(f)
}
