package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/report"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// CompareTool handles the ahss_compare MCP tool.
// It runs the same client under every policy and tabulates the outcomes.
type CompareTool struct {
	model    *trajectory.Model
	rec      Recorder
	defaults SimDefaults
}

// NewCompareTool creates a CompareTool. rec may be nil.
func NewCompareTool(model *trajectory.Model, rec Recorder, defaults SimDefaults) *CompareTool {
	return &CompareTool{model: model, rec: rec, defaults: defaults}
}

// Definition returns the MCP tool definition for ahss_compare.
func (t *CompareTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Compare outcomes for one client under no intervention and each intervention " +
				"(psychoeducation, cognitive_reframe, advocacy, combined). Use it to choose " +
				"an intervention and to show how much timing matters. Unlike ahss_simulate, " +
				"'months' must be at least 1.",
		),
		mcp.WithNumber("start_month",
			mcp.Description("Month all interventions start (>= 1, default from server config, usually 3)"),
		),
	}
	opts = append(opts, profileOptions()...)
	return mcp.NewTool("ahss_compare", opts...)
}

// Handle processes the ahss_compare tool call.
func (t *CompareTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := profileArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	seed, err := seedArg(req, t.defaults.Seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	months := intArg(req, "months", t.defaults.Months)
	if months < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("'months' must be at least 1 to compare policies, got %d", months)), nil
	}
	opts := trajectory.CompareOptions{
		Months:     months,
		StartMonth: intArg(req, "start_month", t.defaults.StartMonth),
		Seed:       seed,
	}
	c, err := t.model.Compare(ctx, p, opts)
	if err != nil {
		if isDomainError(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("comparing: %w", err)
	}

	table, err := report.ComparisonTable(c)
	if err != nil {
		return nil, fmt.Errorf("rendering comparison: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("## AHSS Intervention Comparison\n\n")
	sb.WriteString("```\n")
	sb.WriteString(table)
	sb.WriteString("```\n")

	if best, ok := c.Best(); ok {
		sb.WriteString(fmt.Sprintf("\n**Highest final mental health:** %s (%.1f)\n", best.Policy, best.Trajectory.Final.MentalHealth))
	}

	clientID := strings.TrimSpace(req.GetString("client_id", ""))
	if clientID != "" && t.rec != nil {
		saved, err := t.rec.SaveSimulation(records.Simulation{
			ClientID:   clientID,
			Profile:    p,
			Months:     c.Months,
			StartMonth: c.StartMonth,
			Seed:       c.Seed,
			Outcomes:   records.OutcomesFrom(c),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("compared, but failed to save: %v", err)), nil
		}
		sb.WriteString(fmt.Sprintf("\n**Saved:** run %s for client %s\n", saved.ID, clientID))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
