package screening

// Default returns the standard 20-item AHSS catalog.
//
// Sections:
//   - A: Exposure to algorithmic systems (items 1-7)
//   - B: Adverse outcomes (items 8-13)
//   - C: Psychological impact (items 14-18)
//   - D: Temporal factors (items 19-20)
//
// A fresh copy is built on every call so callers can never mutate
// the instrument shared by other callers.
func Default() Catalog {
	return Catalog{Items: []Item{
		// --- Section A: Exposure ---
		{
			Number:       1,
			Domain:       DomainExposure,
			Question:     "In the past 2 years, how many times have you applied for jobs that use online applications or automated screening?",
			Options:      []string{"None", "1-5 times", "6-15 times", "16-30 times", "More than 30 times"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "Higher application volume increases exposure to screening algorithms",
		},
		{
			Number:       2,
			Domain:       DomainExposure,
			Question:     "Have you applied for rental housing that required a background check or credit check?",
			Options:      []string{"No", "Yes, 1-2 times", "Yes, 3-5 times", "Yes, more than 5 times"},
			Weights:      []float64{0, 1, 2, 3},
			ClinicalNote: "Tenant screening algorithms are prevalent in rental markets",
		},
		{
			Number:       3,
			Domain:       DomainExposure,
			Question:     "Have you applied for credit cards, loans, or financing in the past 2 years?",
			Options:      []string{"No", "Yes, 1-2 times", "Yes, 3-5 times", "Yes, more than 5 times"},
			Weights:      []float64{0, 1, 2, 3},
			ClinicalNote: "Credit applications generate inquiries that can affect scores",
		},
		{
			Number:       4,
			Domain:       DomainExposure,
			Question:     "Do you have any of the following in your history? (Check all that apply: Criminal record, Eviction, Bankruptcy, Medical debt, Employment termination)",
			Options:      []string{"None", "1 item", "2 items", "3 items", "4-5 items"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "These factors are commonly used in algorithmic screening",
		},
		{
			Number:       5,
			Domain:       DomainExposure,
			Question:     "Have you ever been denied healthcare services or had difficulty accessing medical care due to insurance or billing issues?",
			Options:      []string{"Never", "Once", "2-3 times", "4+ times or ongoing"},
			Weights:      []float64{0, 1, 2, 3},
			ClinicalNote: "Healthcare algorithms affect access and treatment options",
		},
		{
			Number:       6,
			Domain:       DomainExposure,
			Question:     "Do you have gaps in your employment history of 6 months or more?",
			Options:      []string{"No", "Yes, one gap", "Yes, multiple gaps"},
			Weights:      []float64{0, 2, 3},
			ClinicalNote: "Employment gaps are heavily weighted in hiring algorithms",
		},
		{
			Number:       7,
			Domain:       DomainExposure,
			Question:     "Have you ever been excluded from a research study, clinical trial, or medical program based on your history?",
			Options:      []string{"No", "Yes, once", "Yes, multiple times"},
			Weights:      []float64{0, 2, 4},
			ClinicalNote: "Clinical trial exclusion has compounding effects",
		},

		// --- Section B: Adverse outcomes ---
		{
			Number:       8,
			Domain:       DomainOutcomes,
			Question:     "How many job rejections have you received in the past year where you felt qualified for the position?",
			Options:      []string{"0-2", "3-5", "6-10", "11-20", "More than 20"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "Pattern of unexplained rejections suggests algorithmic filtering",
		},
		{
			Number:       9,
			Domain:       DomainOutcomes,
			Question:     "Have you been denied housing, had a rental application rejected, or been unable to secure housing?",
			Options:      []string{"No", "Yes, once", "Yes, 2-3 times", "Yes, 4+ times or currently homeless"},
			Weights:      []float64{0, 1, 3, 5},
			ClinicalNote: "Housing denials have severe downstream effects",
		},
		{
			Number:       10,
			Domain:       DomainOutcomes,
			Question:     "Have you been denied credit, loans, or financing when you expected to be approved?",
			Options:      []string{"No", "Yes, once", "Yes, 2-3 times", "Yes, 4+ times"},
			Weights:      []float64{0, 1, 2, 3},
			ClinicalNote: "Credit denials can trigger feedback loops",
		},
		{
			Number:       11,
			Domain:       DomainOutcomes,
			Question:     "Have you experienced increased insurance premiums or denial of coverage that seemed unfair?",
			Options:      []string{"No", "Yes, minor increase", "Yes, significant increase", "Yes, denied coverage"},
			Weights:      []float64{0, 1, 2, 4},
			ClinicalNote: "Insurance algorithms affect healthcare access and financial stability",
		},
		{
			Number:       12,
			Domain:       DomainOutcomes,
			Question:     "Have you attempted to correct errors in your credit report, background check, or other records?",
			Options:      []string{"Never needed to", "Attempted and succeeded", "Attempted with partial success", "Attempted and failed", "Gave up trying"},
			Weights:      []float64{0, 0, 2, 3, 4},
			ClinicalNote: "Failed correction attempts indicate system entrenchment",
		},
		{
			Number:       13,
			Domain:       DomainOutcomes,
			Question:     "Do you feel that your past follows you in ways that prevent you from moving forward?",
			Options:      []string{"Not at all", "Somewhat", "Moderately", "Very much", "Completely"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "Subjective experience of data permanence",
		},

		// --- Section C: Psychological impact ---
		{
			Number:       14,
			Domain:       DomainPsychological,
			Question:     "When you receive a rejection, how often do you think 'Why bother trying?'",
			Options:      []string{"Never", "Rarely", "Sometimes", "Often", "Always"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "Learned helplessness indicator",
		},
		{
			Number:       15,
			Domain:       DomainPsychological,
			Question:     "How much shame do you feel about your credit score, background, or employment history?",
			Options:      []string{"None", "A little", "Moderate", "Significant", "Overwhelming"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "Algorithmic shame assessment",
		},
		{
			Number:       16,
			Domain:       DomainPsychological,
			Question:     "Do you avoid applying for jobs, housing, or credit because you expect to be rejected?",
			Options:      []string{"Never", "Rarely", "Sometimes", "Often", "Always"},
			Weights:      []float64{0, 1, 2, 3, 4},
			ClinicalNote: "Behavioral avoidance due to anticipated rejection",
		},
		{
			Number:       17,
			Domain:       DomainPsychological,
			Question:     "Do you feel that 'the system is rigged' against people like you?",
			Options:      []string{"Not at all", "Somewhat", "Moderately", "Very much", "Completely"},
			Weights:      []float64{0, 0, 1, 1, 2},
			ClinicalNote: "Note: This may be accurate perception, not distortion",
		},
		{
			Number:       18,
			Domain:       DomainPsychological,
			Question:     "Has dealing with rejections and denials affected your mood, sleep, or daily functioning?",
			Options:      []string{"Not at all", "Mildly", "Moderately", "Severely", "Unable to function"},
			Weights:      []float64{0, 1, 2, 4, 5},
			ClinicalNote: "Functional impairment assessment",
		},

		// --- Section D: Temporal factors ---
		{
			Number:       19,
			Domain:       DomainTemporal,
			Question:     "When did the adverse event(s) that started your difficulties first occur?",
			Options:      []string{"Within past 3 months", "3-6 months ago", "6-12 months ago", "1-3 years ago", "More than 3 years ago"},
			Weights:      []float64{4, 3, 2, 1, 0}, // inverted: earlier events score higher
			ClinicalNote: "CRITICAL: Earlier = better intervention window. Score inverted.",
		},
		{
			Number:       20,
			Domain:       DomainTemporal,
			Question:     "Are you currently experiencing any of the following? (Check all: Active job search, Housing search, Credit applications, Legal proceedings related to records)",
			Options:      []string{"None", "1 item", "2 items", "3 items", "All 4 items"},
			Weights:      []float64{0, 2, 3, 4, 5},
			ClinicalNote: "Active exposure increases urgency of intervention",
		},
	}}
}

// SampleResponses is the moderate-risk demonstration client used by the
// `ahss demo` command and in tests.
func SampleResponses() ResponseSet {
	return ResponseSet{
		1: 3, 2: 2, 3: 2, 4: 2, 5: 1, 6: 1, 7: 0,
		8: 2, 9: 1, 10: 1, 11: 1, 12: 3, 13: 3,
		14: 2, 15: 2, 16: 2, 17: 3, 18: 2,
		19: 2, 20: 2,
	}
}
