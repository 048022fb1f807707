package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// SimulateTool handles the ahss_simulate MCP tool.
// It runs one trajectory under a single policy.
type SimulateTool struct {
	model    *trajectory.Model
	rec      Recorder
	defaults SimDefaults
}

// NewSimulateTool creates a SimulateTool. rec may be nil.
func NewSimulateTool(model *trajectory.Model, rec Recorder, defaults SimDefaults) *SimulateTool {
	return &SimulateTool{model: model, rec: rec, defaults: defaults}
}

// Definition returns the MCP tool definition for ahss_simulate.
func (t *SimulateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Simulate a client's month-by-month trajectory (mental health, algorithmic score, shame, " +
				"avoidance, rejections) with or without an intervention. Start from a reference case " +
				"or give the baseline explicitly. Runs are reproducible with a seed.",
		),
		mcp.WithString("intervention",
			mcp.Description("Intervention to apply; omit for no intervention"),
			mcp.Enum("psychoeducation", "cognitive_reframe", "advocacy", "combined"),
		),
		mcp.WithNumber("start_month",
			mcp.Description("Month the intervention starts (>= 1, default from server config, usually 3)"),
		),
		mcp.WithNumber("every",
			mcp.Description("Print every Nth month in the trajectory table (default: 3)"),
		),
	}
	opts = append(opts, profileOptions()...)
	return mcp.NewTool("ahss_simulate", opts...)
}

// Handle processes the ahss_simulate tool call.
func (t *SimulateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := profileArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	months := intArg(req, "months", t.defaults.Months)
	start := intArg(req, "start_month", t.defaults.StartMonth)
	seed, err := seedArg(req, t.defaults.Seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if seed == 0 {
		seed = timeNow().UnixNano()
	}

	var iv *trajectory.Intervention
	if name := req.GetString("intervention", ""); name != "" {
		iv = &trajectory.Intervention{Type: trajectory.InterventionType(name), StartMonth: start}
	}

	tr, err := t.model.Simulate(p, months, iv, trajectory.NewSeededSource(seed))
	if err != nil {
		if isDomainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("simulating: %w", err)
	}

	policy := trajectory.NoIntervention
	if iv != nil {
		policy = trajectory.Policy(iv.Type)
	}

	var sb strings.Builder
	sb.WriteString("## AHSS Trajectory\n\n")
	sb.WriteString(fmt.Sprintf("**Policy:** %s", policy))
	if iv != nil {
		sb.WriteString(fmt.Sprintf(" (from month %d)", iv.StartMonth))
	}
	sb.WriteString(fmt.Sprintf("\n**Horizon:** %d months  **Seed:** %d\n\n", months, seed))

	every := intArg(req, "every", 3)
	if every < 1 {
		every = 1
	}
	sb.WriteString("| Month | Mental health | Algorithmic score | Shame | Avoidance | Rejections |\n")
	sb.WriteString("|---:|---:|---:|---:|---:|---:|\n")
	for m := range tr.Months {
		if m%every != 0 && m != months {
			continue
		}
		s := tr.At(m)
		sb.WriteString(fmt.Sprintf("| %d | %.1f | %.1f | %.1f | %.1f | %d |\n",
			m, s.MentalHealth, s.AlgorithmicScore, s.Shame, s.Avoidance, s.Rejections))
	}

	f := tr.Final
	sb.WriteString("\n### Final State\n\n")
	sb.WriteString(fmt.Sprintf("- Mental health: %.1f\n", f.MentalHealth))
	sb.WriteString(fmt.Sprintf("- Algorithmic score: %.1f\n", f.AlgorithmicScore))
	sb.WriteString(fmt.Sprintf("- Cumulative rejections: %d\n", f.Rejections))
	sb.WriteString(fmt.Sprintf("- Meets depression criteria: %s\n", yesNo(f.MeetsDepressionCriteria)))

	clientID := strings.TrimSpace(req.GetString("client_id", ""))
	if clientID != "" && t.rec != nil {
		startMonth := 0
		if iv != nil {
			startMonth = iv.StartMonth
		}
		saved, err := t.rec.SaveSimulation(records.Simulation{
			ClientID:   clientID,
			Profile:    p,
			Months:     months,
			StartMonth: startMonth,
			Seed:       seed,
			Outcomes:   []records.Outcome{{Policy: policy, Final: f}},
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("simulated, but failed to save: %v", err)), nil
		}
		sb.WriteString(fmt.Sprintf("\n**Saved:** run %s for client %s\n", saved.ID, clientID))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// isDomainError reports whether err is a precondition failure the
// caller can fix.
func isDomainError(err error) bool {
	return errors.Is(err, trajectory.ErrInvalidProfile) ||
		errors.Is(err, trajectory.ErrInvalidInterventionType) ||
		errors.Is(err, trajectory.ErrInvalidIntervention)
}
