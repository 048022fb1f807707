// Package report renders AHSS documents: the clinical screening report,
// the printable paper form and the intervention comparison table.
//
// Text output comes from embedded text/template files; pdf.go lays the
// same text out on A4 pages.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Template names.
const (
	ClinicalTemplate   = "clinical.txt.tmpl"
	FormTemplate       = "form.txt.tmpl"
	ComparisonTemplate = "comparison.txt.tmpl"
)

// Renderer renders a named template with data.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// EmbedRenderer renders the templates compiled into the binary.
type EmbedRenderer struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"num":   formatNum,
	"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
	"inc":   func(i int) int { return i + 1 },
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*EmbedRenderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &EmbedRenderer{tmpl: tmpl}, nil
}

// Render executes the named template.
func (r *EmbedRenderer) Render(name string, data any) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// formatNum prints a score without trailing zeros: 37, 8.5.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Clinical report ---

// SubscaleLine is one "score/max" row of the clinical report.
type SubscaleLine struct {
	Name  string
	Score float64
	Max   float64
}

// ClinicalData is the input of the clinical report.
type ClinicalData struct {
	ClientID       string
	Date           time.Time
	Interpretation screening.Interpretation
	MaxTotal       float64
	Subscales      []SubscaleLine
}

var domainLabels = map[screening.Domain]string{
	screening.DomainExposure:      "Exposure",
	screening.DomainOutcomes:      "Outcomes",
	screening.DomainPsychological: "Psychological",
	screening.DomainTemporal:      "Temporal",
}

// NewClinicalData assembles report data. Maxima come from the catalog;
// subscale lines are only produced when the interpretation carries them.
func NewClinicalData(clientID string, cat screening.Catalog, in screening.Interpretation, at time.Time) ClinicalData {
	if clientID == "" {
		clientID = "Anonymous"
	}
	d := ClinicalData{
		ClientID:       clientID,
		Date:           at,
		Interpretation: in,
		MaxTotal:       cat.MaxTotal(),
	}
	if len(in.Subscales) == 0 {
		return d
	}
	for _, dom := range screening.Domains() {
		d.Subscales = append(d.Subscales, SubscaleLine{
			Name:  domainLabels[dom],
			Score: in.Subscales[dom],
			Max:   cat.MaxSubscale(dom),
		})
	}
	return d
}

// Clinical renders the clinical screening report.
func Clinical(d ClinicalData) (string, error) {
	r, err := NewRenderer()
	if err != nil {
		return "", err
	}
	return r.Render(ClinicalTemplate, d)
}

// --- Printable form ---

// FormSection is one lettered section of the paper form.
type FormSection struct {
	Letter string
	Title  string
	Items  []screening.Item
}

// ScoringLine is one subscale row of the clinician scoring block.
type ScoringLine struct {
	Label string
	Max   float64
}

// FormData is the input of the printable form.
type FormData struct {
	Sections []FormSection
	Scoring  []ScoringLine
	MaxTotal float64
}

var sectionTitles = map[screening.Domain]string{
	screening.DomainExposure:      "EXPOSURE TO ALGORITHMIC SYSTEMS",
	screening.DomainOutcomes:      "ADVERSE OUTCOMES",
	screening.DomainPsychological: "PSYCHOLOGICAL IMPACT",
	screening.DomainTemporal:      "TEMPORAL FACTORS (CRITICAL FOR INTERVENTION TIMING)",
}

// NewFormData groups the catalog into sections A-D. Item ranges and
// maxima are derived from the catalog, so custom catalogs print correctly.
func NewFormData(cat screening.Catalog) FormData {
	d := FormData{MaxTotal: cat.MaxTotal()}
	for i, dom := range screening.Domains() {
		items := cat.ByDomain(dom)
		d.Sections = append(d.Sections, FormSection{
			Letter: string(rune('A' + i)),
			Title:  sectionTitles[dom],
			Items:  items,
		})
		label := domainLabels[dom] + " Subscale:"
		if len(items) > 0 {
			label = fmt.Sprintf("%s Subscale (Items %d-%d):", domainLabels[dom], items[0].Number, items[len(items)-1].Number)
		}
		d.Scoring = append(d.Scoring, ScoringLine{Label: label, Max: cat.MaxSubscale(dom)})
	}
	return d
}

// Form renders the printable paper form for a catalog.
func Form(cat screening.Catalog) (string, error) {
	r, err := NewRenderer()
	if err != nil {
		return "", err
	}
	return r.Render(FormTemplate, NewFormData(cat))
}

// --- Comparison table ---

// ComparisonRow is one policy's final state.
type ComparisonRow struct {
	Policy string
	trajectory.Summary
}

// ComparisonData is the input of the comparison table.
type ComparisonData struct {
	Months     int
	StartMonth int
	Seed       int64
	Rows       []ComparisonRow
}

// NewComparisonData flattens a comparison into table rows in policy order.
func NewComparisonData(c trajectory.Comparison) ComparisonData {
	d := ComparisonData{Months: c.Months, StartMonth: c.StartMonth, Seed: c.Seed}
	for _, run := range c.Runs {
		d.Rows = append(d.Rows, ComparisonRow{Policy: string(run.Policy), Summary: run.Trajectory.Final})
	}
	return d
}

// ComparisonTable renders the outcome table of a comparison.
func ComparisonTable(c trajectory.Comparison) (string, error) {
	r, err := NewRenderer()
	if err != nil {
		return "", err
	}
	return r.Render(ComparisonTemplate, NewComparisonData(c))
}
