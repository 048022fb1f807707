package trajectory

import (
	"errors"
	"fmt"
)

// ErrInvalidInterventionType is returned for a type outside the four
// recognized interventions.
var ErrInvalidInterventionType = errors.New("invalid intervention type")

// ErrInvalidIntervention is returned for an intervention whose start
// month is before month 1.
var ErrInvalidIntervention = errors.New("invalid intervention")

// --- Intervention type enum ---

// InterventionType names a clinical intervention policy.
type InterventionType string

const (
	Psychoeducation  InterventionType = "psychoeducation"
	CognitiveReframe InterventionType = "cognitive_reframe"
	Advocacy         InterventionType = "advocacy"
	Combined         InterventionType = "combined"
)

// InterventionTypes returns the recognized interventions in comparison order.
func InterventionTypes() []InterventionType {
	return []InterventionType{Psychoeducation, CognitiveReframe, Advocacy, Combined}
}

// Effects are the coefficient deltas an intervention applies once active.
// They are resolved once at activation and stay fixed for the rest of the run.
type Effects struct {
	ShameReduction        float64 `json:"shame_reduction"`
	HelplessnessReduction float64 `json:"helplessness_reduction"`
	ScoreBoost            float64 `json:"score_boost"`
}

var effectsByType = map[InterventionType]Effects{
	Psychoeducation:  {ShameReduction: 0.30},
	CognitiveReframe: {HelplessnessReduction: 0.25},
	Advocacy:         {ScoreBoost: 15},
	Combined:         {ShameReduction: 0.25, HelplessnessReduction: 0.20, ScoreBoost: 10},
}

// EffectsOf returns the effects of an intervention type.
func EffectsOf(t InterventionType) (Effects, error) {
	e, ok := effectsByType[t]
	if !ok {
		return Effects{}, fmt.Errorf("%w %q: must be one of: psychoeducation, cognitive_reframe, advocacy, combined",
			ErrInvalidInterventionType, t)
	}
	return e, nil
}

// Intervention is a policy applied from StartMonth onwards.
type Intervention struct {
	Type       InterventionType `json:"type" yaml:"type"`
	StartMonth int              `json:"start_month" yaml:"start_month"`
}

// Validate checks the type is recognized and the start month is at least 1.
func (i Intervention) Validate() error {
	if _, err := EffectsOf(i.Type); err != nil {
		return err
	}
	if i.StartMonth < 1 {
		return fmt.Errorf("%w: start month must be >= 1, got %d", ErrInvalidIntervention, i.StartMonth)
	}
	return nil
}
