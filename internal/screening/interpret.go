package screening

import "math"

// --- Risk level enum ---

// RiskLevel is the ordinal risk category derived from the total score.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "minimal"
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskSevere   RiskLevel = "severe"
)

// riskBand maps totals up to and including Max to a level.
type riskBand struct {
	Max             float64
	Level           RiskLevel
	Summary         string
	Recommendations []string
}

// riskBands are ordered ascending; the first band whose Max is >= total wins.
var riskBands = []riskBand{
	{
		Max:     10,
		Level:   RiskMinimal,
		Summary: "Minimal algorithmic harm exposure/impact detected.",
		Recommendations: []string{
			"Continue monitoring",
			"Provide general psychoeducation if interested",
		},
	},
	{
		Max:     20,
		Level:   RiskLow,
		Summary: "Low-level algorithmic harm exposure. May benefit from awareness.",
		Recommendations: []string{
			"Psychoeducation about algorithmic systems",
			"Monitor for escalation",
			"Discuss proactive data protection",
		},
	},
	{
		Max:     35,
		Level:   RiskModerate,
		Summary: "Moderate algorithmic harm. Active feedback loops may be present.",
		Recommendations: []string{
			"Full assessment of algorithmic exposure",
			"Psychoeducation about feedback loops",
			"Cognitive reframing of rejection experiences",
			"Consider records review/correction",
			"Screen for depression and anxiety",
		},
	},
	{
		Max:     50,
		Level:   RiskHigh,
		Summary: "High algorithmic harm. Significant impact on functioning likely.",
		Recommendations: []string{
			"Comprehensive assessment required",
			"Urgent intervention if within 6-month window",
			"Advocacy documentation preparation",
			"Referral to legal aid for records correction",
			"Intensive support for depression/anxiety",
			"Consider harm reduction approach",
		},
	},
	{
		Max:     math.Inf(1),
		Level:   RiskSevere,
		Summary: "Severe algorithmic harm. Multiple active feedback loops likely.",
		Recommendations: []string{
			"Crisis-level intervention needed",
			"Immediate records assessment",
			"Legal referral for systemic advocacy",
			"Intensive mental health support",
			"Case management for housing/employment",
			"Document for disability/accommodation if appropriate",
			"Consider harm reduction given chronic exposure",
		},
	},
}

// ClassifyRisk returns the risk level for a total score.
func ClassifyRisk(total float64) RiskLevel {
	return bandFor(total).Level
}

func bandFor(total float64) riskBand {
	for _, b := range riskBands {
		if total <= b.Max {
			return b
		}
	}
	// NaN compares false everywhere; treat it as the top band.
	return riskBands[len(riskBands)-1]
}

// --- Intervention window enum ---

// InterventionWindow is the urgency category derived from the temporal subscale.
type InterventionWindow string

const (
	WindowOptimal InterventionWindow = "optimal" // 0-3 months, >85% efficacy
	WindowUrgent  InterventionWindow = "urgent"  // 3-6 months, 60-85% efficacy
	WindowLimited InterventionWindow = "limited" // 6-12 months, 30-60% efficacy
	WindowChronic InterventionWindow = "chronic" // 12+ months, <30% efficacy

	// WindowUndetermined means temporal factors were not assessed.
	WindowUndetermined InterventionWindow = ""
)

// NoteNotAssessed is the window note when no temporal subscale is available.
const NoteNotAssessed = "Temporal factors not assessed."

// windowBand maps temporal subscales of at least Min to a window.
type windowBand struct {
	Min    float64
	Window InterventionWindow
	Note   string
}

// windowBands are ordered descending; the first band whose Min is <= temporal wins.
var windowBands = []windowBand{
	{Min: 6, Window: WindowOptimal, Note: "OPTIMAL WINDOW: Intervention efficacy >85%. Act now."},
	{Min: 4, Window: WindowUrgent, Note: "URGENT: 60-85% efficacy. Time-sensitive intervention needed."},
	{Min: 2, Window: WindowLimited, Note: "LIMITED WINDOW: 30-60% efficacy. Focus on highest-yield interventions."},
	{Min: math.Inf(-1), Window: WindowChronic, Note: "CHRONIC: <30% efficacy. Focus on harm reduction and adaptation."},
}

// ClassifyWindow returns the intervention window and its note for a
// temporal subscale score.
func ClassifyWindow(temporal float64) (InterventionWindow, string) {
	for _, b := range windowBands {
		if temporal >= b.Min {
			return b.Window, b.Note
		}
	}
	last := windowBands[len(windowBands)-1]
	return last.Window, last.Note
}

// --- Interpretation ---

// Interpretation is the clinical reading of a score.
type Interpretation struct {
	TotalScore      float64            `json:"total_score"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	Summary         string             `json:"interpretation"`
	Recommendations []string           `json:"recommendations"`
	Window          InterventionWindow `json:"intervention_window,omitempty"`
	WindowNote      string             `json:"window_note"`
	Subscales       map[Domain]float64 `json:"subscales,omitempty"`
}

// WindowDetermined reports whether temporal factors were available.
func (i Interpretation) WindowDetermined() bool {
	return i.Window != WindowUndetermined
}

// Interpret maps a total score, and optionally the subscales, to a risk
// level, recommendations and an intervention window.
//
// The window depends only on the temporal subscale. A nil map, or one
// without a temporal entry, yields WindowUndetermined; that is a valid
// result, not an error.
func Interpret(total float64, subscales map[Domain]float64) Interpretation {
	band := bandFor(total)

	out := Interpretation{
		TotalScore:      total,
		RiskLevel:       band.Level,
		Summary:         band.Summary,
		Recommendations: append([]string(nil), band.Recommendations...),
		Window:          WindowUndetermined,
		WindowNote:      NoteNotAssessed,
	}

	if subscales != nil {
		out.Subscales = make(map[Domain]float64, len(subscales))
		for d, v := range subscales {
			out.Subscales[d] = v
		}
		if temporal, ok := subscales[DomainTemporal]; ok {
			out.Window, out.WindowNote = ClassifyWindow(temporal)
		}
	}

	return out
}

// InterpretResult is a convenience wrapper over Interpret for a scored
// result. The window stays undetermined unless a temporal item was
// answered, even though the additive temporal subscale is zero.
func InterpretResult(r Result) Interpretation {
	if r.Subscales == nil || r.Assessed(DomainTemporal) {
		return Interpret(r.Total, r.Subscales)
	}
	subscales := make(map[Domain]float64, len(r.Subscales))
	for d, v := range r.Subscales {
		if d != DomainTemporal {
			subscales[d] = v
		}
	}
	return Interpret(r.Total, subscales)
}
