package tools

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// --- Test helpers ---

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func mustNotError(t *testing.T, r *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
}

// mustBeToolError asserts the Handle call returns a tool error (not a Go error).
func mustBeToolError(t *testing.T, r *mcp.CallToolResult, err error, wantSubstr string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !r.IsError {
		t.Fatalf("expected tool error containing %q, got success: %s", wantSubstr, resultText(r))
	}
	if wantSubstr != "" && !strings.Contains(resultText(r), wantSubstr) {
		t.Errorf("error text %q does not contain %q", resultText(r), wantSubstr)
	}
}

func mustContain(t *testing.T, text string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(text, w) {
			t.Errorf("result missing %q", w)
		}
	}
}

// newTestStore creates a record store in a temp directory.
func newTestStore(t *testing.T) *records.Store {
	t.Helper()
	s, err := records.New(records.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleArgs returns the demonstration responses as a tool argument.
func sampleArgs() map[string]interface{} {
	out := map[string]interface{}{}
	for item, opt := range screening.SampleResponses() {
		out[strconv.Itoa(item)] = float64(opt)
	}
	return out
}

var testDefaults = SimDefaults{Months: 24, StartMonth: 3, Seed: 42}

func newModel() *trajectory.Model {
	return trajectory.NewModel(trajectory.DefaultParameters())
}

// --- ItemsTool ---

func TestItemsTool_Definition(t *testing.T) {
	def := NewItemsTool(screening.Default()).Definition()
	if def.Name != "ahss_items" {
		t.Errorf("Name = %s, want ahss_items", def.Name)
	}
}

func TestItemsTool_ListsAll(t *testing.T) {
	tool := NewItemsTool(screening.Default())
	r, err := tool.Handle(context.Background(), makeReq(nil))
	mustNotError(t, r, err)

	text := resultText(r)
	mustContain(t, text, "20 items", "**1.**", "**20.**", "  - 0: None")
	if strings.Contains(text, "weight") {
		t.Error("weights should be hidden by default")
	}
}

func TestItemsTool_DomainWithWeights(t *testing.T) {
	tool := NewItemsTool(screening.Default())
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"domain":          "temporal",
		"include_weights": true,
	}))
	mustNotError(t, r, err)

	text := resultText(r)
	mustContain(t, text, "2 items", "**19.**", "**20.**", "(weight ")
	if strings.Contains(text, "**1.**") {
		t.Error("domain filter should exclude exposure items")
	}
}

func TestItemsTool_BadDomain(t *testing.T) {
	r, err := NewItemsTool(screening.Default()).Handle(context.Background(), makeReq(map[string]interface{}{"domain": "finance"}))
	mustBeToolError(t, r, err, "invalid domain")
}

// --- ScoreTool ---

func TestScoreTool_SampleResponses(t *testing.T) {
	tool := NewScoreTool(screening.Default(), nil)
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"responses": sampleArgs(),
	}))
	mustNotError(t, r, err)

	mustContain(t, resultText(r),
		"**Items answered:** 20 of 20",
		"**Total score:** 37/76",
		"**Risk level:** HIGH",
		"- exposure: 12/24",
		"- temporal: 5/9",
		"**URGENT**",
		"1. Comprehensive assessment required",
	)
}

func TestScoreTool_ArrayForm(t *testing.T) {
	arr := make([]interface{}, 20)
	for item, opt := range screening.SampleResponses() {
		arr[item-1] = float64(opt)
	}
	r, err := NewScoreTool(screening.Default(), nil).Handle(context.Background(), makeReq(map[string]interface{}{
		"responses": arr,
	}))
	mustNotError(t, r, err)
	mustContain(t, resultText(r), "**Total score:** 37/76")
}

func TestScoreTool_PartialWithoutTemporal(t *testing.T) {
	r, err := NewScoreTool(screening.Default(), nil).Handle(context.Background(), makeReq(map[string]interface{}{
		"responses": map[string]interface{}{"1": 4, "8": "3"},
	}))
	mustNotError(t, r, err)
	text := resultText(r)
	mustContain(t, text, "**Items answered:** 2 of 20", "**Total score:** 7/76", screening.NoteNotAssessed)
}

func TestScoreTool_Errors(t *testing.T) {
	tool := NewScoreTool(screening.Default(), nil)
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing", map[string]interface{}{}, "'responses' is required"},
		{"empty", map[string]interface{}{"responses": map[string]interface{}{}}, "no responses"},
		{"unknown item", map[string]interface{}{"responses": map[string]interface{}{"21": 0}}, "unknown item"},
		{"out of range", map[string]interface{}{"responses": map[string]interface{}{"1": 9}}, "out of range"},
		{"fractional", map[string]interface{}{"responses": map[string]interface{}{"1": 1.5}}, "whole number"},
		{"bad key", map[string]interface{}{"responses": map[string]interface{}{"first": 1}}, "not an item number"},
		{"wrong type", map[string]interface{}{"responses": "all high"}, "must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tool.Handle(context.Background(), makeReq(tt.args))
			mustBeToolError(t, r, err, tt.want)
		})
	}
}

func TestScoreTool_SavesForClient(t *testing.T) {
	store := newTestStore(t)
	tool := NewScoreTool(screening.Default(), store)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"responses": sampleArgs(),
		"client_id": "DEMO-001",
	}))
	mustNotError(t, r, err)
	mustContain(t, resultText(r), "**Saved:** screening")

	list, err := store.ListScreenings("DEMO-001", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Interpretation.TotalScore != 37 {
		t.Errorf("saved = %+v", list)
	}
}

// --- InterpretTool ---

func TestInterpretTool(t *testing.T) {
	tool := NewInterpretTool(screening.Default())
	tests := []struct {
		name  string
		args  map[string]interface{}
		wants []string
	}{
		{"total only", map[string]interface{}{"total_score": 15.0}, []string{"**Risk level:** LOW", screening.NoteNotAssessed}},
		{"numeric string", map[string]interface{}{"total_score": "51"}, []string{"**Risk level:** SEVERE"}},
		{"with temporal", map[string]interface{}{"total_score": 28.0, "temporal": 7.0}, []string{"**Risk level:** MODERATE", "**OPTIMAL**"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tool.Handle(context.Background(), makeReq(tt.args))
			mustNotError(t, r, err)
			mustContain(t, resultText(r), tt.wants...)
			if strings.Contains(resultText(r), "### Subscales") {
				t.Error("interpret should not print a subscale block")
			}
		})
	}
}

func TestInterpretTool_Errors(t *testing.T) {
	tool := NewInterpretTool(screening.Default())
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "'total_score' is required")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"total_score": "high"}))
	mustBeToolError(t, r, err, "must be a number")
}

// --- SimulateTool ---

func TestSimulateTool_Case(t *testing.T) {
	tool := NewSimulateTool(newModel(), nil, testDefaults)
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"case":         "moderate_risk",
		"intervention": "combined",
	}))
	mustNotError(t, r, err)
	mustContain(t, resultText(r),
		"**Policy:** combined (from month 3)",
		"**Horizon:** 24 months  **Seed:** 42",
		"| 0 | 65.0 | 45.0 | 35.0 | 0.0 | 0 |",
		"| 24 |",
		"Meets depression criteria:",
	)
}

func TestSimulateTool_ExplicitProfile(t *testing.T) {
	tool := NewSimulateTool(newModel(), nil, testDefaults)
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"baseline_mental_health":     30.0,
		"baseline_algorithmic_score": 20.0,
		"vulnerability_factors":      []interface{}{"a", "b"},
		"months":                     6.0,
		"every":                      1.0,
	}))
	mustNotError(t, r, err)
	text := resultText(r)
	mustContain(t, text, "**Policy:** no_intervention", "| 6 |", "Meets depression criteria: yes")
}

func TestSimulateTool_Reproducible(t *testing.T) {
	tool := NewSimulateTool(newModel(), nil, SimDefaults{Months: 12, StartMonth: 3})
	args := map[string]interface{}{"case": "high_risk", "seed": 7.0}

	r1, err := tool.Handle(context.Background(), makeReq(args))
	mustNotError(t, r1, err)
	r2, err := tool.Handle(context.Background(), makeReq(args))
	mustNotError(t, r2, err)
	if resultText(r1) != resultText(r2) {
		t.Error("same seed should give the same output")
	}
}

func TestSimulateTool_ClockSeedReported(t *testing.T) {
	orig := timeNow
	timeNow = func() time.Time { return time.Unix(0, 987654321) }
	t.Cleanup(func() { timeNow = orig })

	tool := NewSimulateTool(newModel(), nil, SimDefaults{Months: 1, StartMonth: 1})
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"case": "high_risk"}))
	mustNotError(t, r, err)
	mustContain(t, resultText(r), "**Seed:** 987654321")
}

func TestSimulateTool_StringSeedReplaysExactly(t *testing.T) {
	tool := NewSimulateTool(newModel(), nil, SimDefaults{Months: 6, StartMonth: 3})
	args := map[string]interface{}{"case": "high_risk", "seed": "1734567890123456789"}

	r1, err := tool.Handle(context.Background(), makeReq(args))
	mustNotError(t, r1, err)
	mustContain(t, resultText(r1), "**Seed:** 1734567890123456789")

	r2, err := tool.Handle(context.Background(), makeReq(args))
	mustNotError(t, r2, err)
	if resultText(r1) != resultText(r2) {
		t.Error("same string seed should give the same output")
	}
}

func TestSeedArg(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want int64
	}{
		{"absent", nil, 42},
		{"number", 7.0, 7},
		{"negative", -3.0, -3},
		{"limit", float64(1 << 53), 1 << 53},
		{"string", "9223372036854775807", 9223372036854775807},
		{"negative string", "-1734567890123456789", -1734567890123456789},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{}
			if tt.raw != nil {
				args["seed"] = tt.raw
			}
			got, err := seedArg(makeReq(args), 42)
			if err != nil {
				t.Fatalf("seedArg() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("seedArg() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSimulateTool_Errors(t *testing.T) {
	tool := NewSimulateTool(newModel(), nil, testDefaults)
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no profile", map[string]interface{}{}, "either 'case'"},
		{"unknown case", map[string]interface{}{"case": "mild"}, "unknown case"},
		{"out of range", map[string]interface{}{"baseline_mental_health": 140.0, "baseline_algorithmic_score": 10.0}, "invalid profile"},
		{"bad intervention", map[string]interface{}{"case": "high_risk", "intervention": "meditation"}, "invalid intervention type"},
		{"start month zero", map[string]interface{}{"case": "high_risk", "intervention": "advocacy", "start_month": 0.0}, "start month"},
		{"negative months", map[string]interface{}{"case": "high_risk", "months": -2.0}, "duration"},
		{"bad factors", map[string]interface{}{"case": "high_risk", "protective_factors": map[string]interface{}{"x": 1}}, "list of strings"},
		{"fractional seed", map[string]interface{}{"case": "high_risk", "seed": 1.5}, "whole number"},
		{"inexact seed", map[string]interface{}{"case": "high_risk", "seed": 1.7e18}, "pass it as a string"},
		{"text seed", map[string]interface{}{"case": "high_risk", "seed": "soon"}, "must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tool.Handle(context.Background(), makeReq(tt.args))
			mustBeToolError(t, r, err, tt.want)
		})
	}
}

func TestSimulateTool_SavesForClient(t *testing.T) {
	store := newTestStore(t)
	tool := NewSimulateTool(newModel(), store, testDefaults)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"case":         "severe_risk",
		"intervention": "advocacy",
		"client_id":    "C-9",
	}))
	mustNotError(t, r, err)

	sims, err := store.ListSimulations("C-9", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sims) != 1 || sims[0].Seed != 42 || sims[0].StartMonth != 3 {
		t.Fatalf("saved = %+v", sims)
	}
	if len(sims[0].Outcomes) != 1 || sims[0].Outcomes[0].Policy != trajectory.Policy(trajectory.Advocacy) {
		t.Errorf("Outcomes = %+v", sims[0].Outcomes)
	}
}

// --- CompareTool ---

func TestCompareTool_AllPolicies(t *testing.T) {
	tool := NewCompareTool(newModel(), nil, testDefaults)
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"case": "moderate_risk"}))
	mustNotError(t, r, err)

	text := resultText(r)
	mustContain(t, text, "Horizon: 24 months", "Seed: 42", "**Highest final mental health:**")
	for _, p := range trajectory.Policies() {
		mustContain(t, text, string(p))
	}
}

func TestCompareTool_Errors(t *testing.T) {
	tool := NewCompareTool(newModel(), nil, testDefaults)
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"case": "moderate_risk", "start_month": -1.0}))
	mustBeToolError(t, r, err, "start month")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"baseline_mental_health": 50.0}))
	mustBeToolError(t, r, err, "either 'case'")

	// A zero horizon is a baseline-only run in ahss_simulate; comparing it is refused.
	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"case": "moderate_risk", "months": 0.0}))
	mustBeToolError(t, r, err, "'months' must be at least 1")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"case": "moderate_risk", "seed": 2.5}))
	mustBeToolError(t, r, err, "whole number")
}

func TestCompareTool_SavesForClient(t *testing.T) {
	store := newTestStore(t)
	tool := NewCompareTool(newModel(), store, testDefaults)
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"case":      "high_risk",
		"client_id": "C-2",
	}))
	mustNotError(t, r, err)

	sims, err := store.ListSimulations("C-2", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sims) != 1 || len(sims[0].Outcomes) != len(trajectory.Policies()) {
		t.Fatalf("saved = %+v", sims)
	}
}

// --- HistoryTool ---

func TestHistoryTool(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	score := NewScoreTool(screening.Default(), store)
	r, err := score.Handle(ctx, makeReq(map[string]interface{}{"responses": sampleArgs(), "client_id": "DEMO-001"}))
	mustNotError(t, r, err)

	cmp := NewCompareTool(newModel(), store, testDefaults)
	r, err = cmp.Handle(ctx, makeReq(map[string]interface{}{"case": "moderate_risk", "client_id": "DEMO-001"}))
	mustNotError(t, r, err)

	hist := NewHistoryTool(store)
	r, err = hist.Handle(ctx, makeReq(map[string]interface{}{"client_id": "DEMO-001"}))
	mustNotError(t, r, err)
	mustContain(t, resultText(r),
		"## AHSS History: DEMO-001",
		"total 37, risk HIGH, window urgent",
		"24 months, seed 42",
		"combined: mental health",
	)
}

func TestHistoryTool_Empty(t *testing.T) {
	r, err := NewHistoryTool(newTestStore(t)).Handle(context.Background(), makeReq(map[string]interface{}{"client_id": "nobody"}))
	mustNotError(t, r, err)
	mustContain(t, resultText(r), "No screenings saved.", "No simulation runs saved.")
}

func TestHistoryTool_Errors(t *testing.T) {
	r, err := NewHistoryTool(newTestStore(t)).Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "'client_id' is required")

	r, err = NewHistoryTool(nil).Handle(context.Background(), makeReq(map[string]interface{}{"client_id": "x"}))
	mustBeToolError(t, r, err, "disabled")
}
