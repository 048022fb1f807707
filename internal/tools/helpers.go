// Package tools implements the AHSS MCP tool handlers.
//
// Each tool is a struct that receives its dependencies via constructor
// and exposes:
//   - Definition() returning the mcp.Tool schema
//   - Handle() processing a CallToolRequest
//
// Bad input is reported as a tool error (mcp.NewToolResultError) so the
// assistant can correct itself; Go errors are reserved for failures the
// caller cannot fix.
package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"

	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// Recorder persists results. Tools accept a nil Recorder and simply
// skip saving.
type Recorder interface {
	SaveScreening(clientID string, responses screening.ResponseSet, in screening.Interpretation) (*records.Screening, error)
	SaveSimulation(sim records.Simulation) (*records.Simulation, error)
	ListScreenings(clientID string, limit int) ([]records.Screening, error)
	ListSimulations(clientID string, limit int) ([]records.Simulation, error)
}

// SimDefaults are the horizon and seed used when a request omits them.
type SimDefaults struct {
	Months     int
	StartMonth int
	Seed       int64
}

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// maxExactSeed is the largest seed a JSON number carries without rounding.
const maxExactSeed = 1 << 53

// seedArg extracts the seed. It accepts a JSON number up to 2^53 or a
// decimal string of any int64, so a clock seed reported by a previous
// run replays exactly when passed back as a string.
func seedArg(req mcp.CallToolRequest, defaultVal int64) (int64, error) {
	raw, present := req.GetArguments()["seed"]
	if !present || raw == nil {
		return defaultVal, nil
	}
	if f, ok := raw.(float64); ok {
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("'seed' must be a whole number, got %v", f)
		}
		if math.Abs(f) > maxExactSeed {
			return 0, fmt.Errorf("'seed' %v is too large for a JSON number; pass it as a string", f)
		}
		return int64(f), nil
	}
	v, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, fmt.Errorf("'seed' must be an integer: %v", err)
	}
	return v, nil
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// floatArg extracts a number that may arrive as a JSON number or a
// numeric string. ok is false when the key is absent.
func floatArg(req mcp.CallToolRequest, key string) (v float64, ok bool, err error) {
	raw, present := req.GetArguments()[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	v, err = cast.ToFloat64E(raw)
	if err != nil {
		return 0, true, fmt.Errorf("'%s' must be a number", key)
	}
	return v, true, nil
}

// stringsArg extracts a list of strings.
func stringsArg(req mcp.CallToolRequest, key string) ([]string, error) {
	raw, present := req.GetArguments()[key]
	if !present || raw == nil {
		return []string{}, nil
	}
	out, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("'%s' must be a list of strings", key)
	}
	return out, nil
}

// responsesArg decodes item responses. Both an object keyed by item
// number ({"1": 3, "2": 0}) and an array of option indices in item
// order ([3, 0, ...]) are accepted.
func responsesArg(req mcp.CallToolRequest, key string) (screening.ResponseSet, error) {
	raw, present := req.GetArguments()[key]
	if !present || raw == nil {
		return nil, fmt.Errorf("'%s' is required", key)
	}

	out := screening.ResponseSet{}
	switch v := raw.(type) {
	case map[string]any:
		for k, val := range v {
			item, err := cast.ToIntE(strings.TrimSpace(k))
			if err != nil {
				return nil, fmt.Errorf("'%s' key %q is not an item number", key, k)
			}
			opt, err := toIndex(val)
			if err != nil {
				return nil, fmt.Errorf("'%s' item %d: %v", key, item, err)
			}
			out[item] = opt
		}
	case []any:
		for i, val := range v {
			opt, err := toIndex(val)
			if err != nil {
				return nil, fmt.Errorf("'%s' position %d: %v", key, i, err)
			}
			out[i+1] = opt
		}
	default:
		return nil, fmt.Errorf("'%s' must be an object of item number to option index, or an array", key)
	}
	return out, nil
}

// toIndex accepts whole numbers only; 1.5 is not an option index.
func toIndex(v any) (int, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("option index must be a whole number, got %v", v)
	}
	return int(f), nil
}

// profileArg builds a profile from a named reference case or from
// explicit fields. Explicit fields override the case.
func profileArg(req mcp.CallToolRequest) (trajectory.Profile, error) {
	var p trajectory.Profile
	if name := req.GetString("case", ""); name != "" {
		c, ok := trajectory.Cases()[name]
		if !ok {
			return p, fmt.Errorf("unknown case %q: must be one of: %s", name, strings.Join(caseNames(), ", "))
		}
		p = c
	}

	fields := []struct {
		key string
		dst *float64
	}{
		{"baseline_mental_health", &p.BaselineMentalHealth},
		{"baseline_algorithmic_score", &p.BaselineAlgorithmicScore},
		{"months_since_adverse_event", &p.MonthsSinceAdverseEvent},
	}
	for _, f := range fields {
		v, ok, err := floatArg(req, f.key)
		if err != nil {
			return p, err
		}
		if ok {
			*f.dst = v
		}
	}

	if _, ok := req.GetArguments()["vulnerability_factors"]; ok {
		vf, err := stringsArg(req, "vulnerability_factors")
		if err != nil {
			return p, err
		}
		p.VulnerabilityFactors = vf
	}
	if _, ok := req.GetArguments()["protective_factors"]; ok {
		pf, err := stringsArg(req, "protective_factors")
		if err != nil {
			return p, err
		}
		p.ProtectiveFactors = pf
	}
	p.CurrentTreatment = boolArg(req, "current_treatment", p.CurrentTreatment)

	if req.GetString("case", "") == "" {
		args := req.GetArguments()
		if _, ok := args["baseline_mental_health"]; !ok {
			return p, fmt.Errorf("either 'case' or 'baseline_mental_health' and 'baseline_algorithmic_score' are required")
		}
		if _, ok := args["baseline_algorithmic_score"]; !ok {
			return p, fmt.Errorf("either 'case' or 'baseline_mental_health' and 'baseline_algorithmic_score' are required")
		}
	}
	return p, p.Validate()
}

func caseNames() []string {
	names := make([]string, 0, len(trajectory.Cases()))
	for name := range trajectory.Cases() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// profileOptions are the schema options shared by simulate and compare.
func profileOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("case",
			mcp.Description("Reference case to start from: moderate_risk, high_risk or severe_risk. Explicit fields override it."),
			mcp.Enum(caseNames()...),
		),
		mcp.WithNumber("baseline_mental_health",
			mcp.Description("Baseline mental health, 0-100 (higher = healthier)"),
		),
		mcp.WithNumber("baseline_algorithmic_score",
			mcp.Description("Baseline algorithmic standing, 0-100 (higher = better)"),
		),
		mcp.WithArray("vulnerability_factors",
			mcp.Description("Vulnerability factors; only the count matters"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("protective_factors",
			mcp.Description("Protective factors; only the count matters"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("months_since_adverse_event",
			mcp.Description("Months since the adverse event (informational)"),
		),
		mcp.WithBoolean("current_treatment",
			mcp.Description("Whether the client is currently in treatment"),
		),
		mcp.WithNumber("months",
			mcp.Description("Simulation horizon in months (default from server config, usually 24)"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Random seed for reproducible runs (0 or omitted = random; the seed used is reported). "+
				"Seeds above 2^53 must be passed as a string to replay exactly"),
		),
		mcp.WithString("client_id",
			mcp.Description("Client ID; when set the run is saved to the client's history"),
		),
	}
}

func num(v float64) string {
	return cast.ToString(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
