package trajectory

import (
	"fmt"
	"math"
)

// Parameters are the model coefficients.
type Parameters struct {
	RejectionShame       float64 `json:"rejection_shame"`        // shame added per rejection
	ShameAvoidance       float64 `json:"shame_avoidance"`        // how shame drives avoidance
	AvoidanceScore       float64 `json:"avoidance_score"`        // how avoidance erodes the algorithmic score
	DepressionThreshold  float64 `json:"depression_threshold"`   // mental health below this meets criteria
	TreatmentEfficacy    float64 `json:"treatment_efficacy"`     // flat monthly benefit while in treatment
	BaseRejectionRate    float64 `json:"base_rejection_rate"`    // rejection probability at a score of 0
	ApplyingAvoidanceMax float64 `json:"applying_avoidance_max"` // clients stop applying at this avoidance
	VulnerabilityWeight  float64 `json:"vulnerability_weight"`   // per vulnerability factor
	ProtectiveWeight     float64 `json:"protective_weight"`      // per protective factor
}

// DefaultParameters returns the reference coefficients.
func DefaultParameters() Parameters {
	return Parameters{
		RejectionShame:       0.15,
		ShameAvoidance:       0.20,
		AvoidanceScore:       0.10,
		DepressionThreshold:  40,
		TreatmentEfficacy:    0.30,
		BaseRejectionRate:    0.7,
		ApplyingAvoidanceMax: 50,
		VulnerabilityWeight:  0.15,
		ProtectiveWeight:     0.10,
	}
}

// Model runs trajectories with a fixed parameter set.
type Model struct {
	params Parameters
}

// NewModel creates a model with the given parameters.
func NewModel(p Parameters) *Model {
	return &Model{params: p}
}

// Parameters returns the model coefficients.
func (m *Model) Parameters() Parameters {
	return m.params
}

// State is the client's condition at the end of a month.
type State struct {
	MentalHealth     float64 `json:"mental_health"`
	AlgorithmicScore float64 `json:"algorithmic_score"`
	Shame            float64 `json:"shame"`
	Avoidance        float64 `json:"avoidance"`
	Rejections       int     `json:"cumulative_rejections"`
}

// Summary is the final state of a run.
type Summary struct {
	State
	MeetsDepressionCriteria bool `json:"meets_depression_criteria"`
}

// Trajectory is the month-indexed history of one run. Every series has
// months+1 entries; index 0 is the baseline.
type Trajectory struct {
	Months           []int         `json:"months"`
	MentalHealth     []float64     `json:"mental_health"`
	AlgorithmicScore []float64     `json:"algorithmic_score"`
	Shame            []float64     `json:"shame"`
	Avoidance        []float64     `json:"avoidance"`
	Rejections       []int         `json:"rejections"`
	Rejected         []bool        `json:"rejected"`
	Intervention     *Intervention `json:"intervention,omitempty"`
	Final            Summary       `json:"final"`
}

// At returns the state recorded for month m.
func (t Trajectory) At(m int) State {
	return State{
		MentalHealth:     t.MentalHealth[m],
		AlgorithmicScore: t.AlgorithmicScore[m],
		Shame:            t.Shame[m],
		Avoidance:        t.Avoidance[m],
		Rejections:       t.Rejections[m],
	}
}

// multipliers are fixed for a whole run.
type multipliers struct {
	vulnerability float64
	protective    float64
}

func (m *Model) multipliersFor(p Profile) multipliers {
	return multipliers{
		vulnerability: 1 + m.params.VulnerabilityWeight*float64(len(p.VulnerabilityFactors)),
		// Floored at zero: ten or more protective factors would otherwise
		// flip the sign of every mental health change.
		protective: math.Max(0, 1-m.params.ProtectiveWeight*float64(len(p.ProtectiveFactors))),
	}
}

// activation is the one-shot intervention switch.
type activation struct {
	active  bool
	effects Effects
}

// Initial returns the month-0 state for a profile. Shame starts as the
// inverse of baseline mental health.
func Initial(p Profile) State {
	return State{
		MentalHealth:     p.BaselineMentalHealth,
		AlgorithmicScore: p.BaselineAlgorithmicScore,
		Shame:            100 - p.BaselineMentalHealth,
		Avoidance:        0,
		Rejections:       0,
	}
}

// Simulate runs the recurrence for the given number of months.
//
// The intervention is optional; when set it activates in the first month
// m >= StartMonth and its effects stay frozen from then on. The source
// is only consulted in months where the client is still applying.
//
// All preconditions are checked before month 1: the profile must be
// valid, months must be >= 0 and the intervention recognized.
func (m *Model) Simulate(p Profile, months int, iv *Intervention, src Source) (Trajectory, error) {
	if err := p.Validate(); err != nil {
		return Trajectory{}, err
	}
	if months < 0 {
		return Trajectory{}, fmt.Errorf("%w: duration must be >= 0 months, got %d", ErrInvalidProfile, months)
	}
	var pending Effects
	if iv != nil {
		if err := iv.Validate(); err != nil {
			return Trajectory{}, err
		}
		pending, _ = EffectsOf(iv.Type)
	}
	if src == nil {
		return Trajectory{}, fmt.Errorf("simulate: nil random source")
	}

	tr := newTrajectory(months, iv)
	mult := m.multipliersFor(p)
	state := Initial(p)
	tr.record(0, state, false)

	var act activation
	for month := 1; month <= months; month++ {
		if iv != nil && !act.active && month >= iv.StartMonth {
			act = activation{active: true, effects: pending}
		}

		var rejected bool
		state, rejected = m.step(state, p, mult, act, src)
		tr.record(month, state, rejected)
	}

	tr.Final = Summary{
		State:                   state,
		MeetsDepressionCriteria: state.MentalHealth < m.params.DepressionThreshold,
	}
	return tr, nil
}

// step advances one month.
func (m *Model) step(prev State, p Profile, mult multipliers, act activation, src Source) (State, bool) {
	pr := m.params
	next := prev

	// The boost is transient: it shifts this month's rejection odds but is
	// never written back, so it cannot compound.
	effective := prev.AlgorithmicScore + act.effects.ScoreBoost
	prob := clamp((100-effective)/100*pr.BaseRejectionRate, 0, 1)

	applying := prev.Avoidance < pr.ApplyingAvoidanceMax
	rejected := applying && src.Float64() < prob

	hit := 0.0
	if rejected {
		hit = 1
		next.Rejections++
	}

	shame := prev.Shame + pr.RejectionShame*hit*mult.vulnerability
	if act.active {
		shame -= act.effects.ShameReduction * 0.1
	}
	next.Shame = clamp(shame, 0, 100)

	// Uses this month's shame, not last month's.
	avoidance := prev.Avoidance + pr.ShameAvoidance*next.Shame*0.1
	if act.active {
		avoidance -= act.effects.HelplessnessReduction * 5
	}
	next.Avoidance = clamp(avoidance, 0, 100)

	mh := -0.5*next.Shame/100 - 0.3*next.Avoidance/100
	if p.CurrentTreatment {
		mh += pr.TreatmentEfficacy
	}
	next.MentalHealth = clamp(prev.MentalHealth+mh*mult.protective, 0, 100)

	score := 0.1
	if rejected {
		score = -0.5
	}
	score -= pr.AvoidanceScore * next.Avoidance / 100
	next.AlgorithmicScore = clamp(prev.AlgorithmicScore+score, 0, 100)

	return next, rejected
}

func newTrajectory(months int, iv *Intervention) Trajectory {
	n := months + 1
	tr := Trajectory{
		Months:           make([]int, n),
		MentalHealth:     make([]float64, n),
		AlgorithmicScore: make([]float64, n),
		Shame:            make([]float64, n),
		Avoidance:        make([]float64, n),
		Rejections:       make([]int, n),
		Rejected:         make([]bool, n),
	}
	if iv != nil {
		cp := *iv
		tr.Intervention = &cp
	}
	return tr
}

func (t *Trajectory) record(month int, s State, rejected bool) {
	t.Months[month] = month
	t.MentalHealth[month] = s.MentalHealth
	t.AlgorithmicScore[month] = s.AlgorithmicScore
	t.Shame[month] = s.Shame
	t.Avoidance[month] = s.Avoidance
	t.Rejections[month] = s.Rejections
	t.Rejected[month] = rejected
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
