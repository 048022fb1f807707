package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryTool handles the ahss_history MCP tool.
// It lists a client's saved screenings and simulation runs.
type HistoryTool struct {
	rec Recorder
}

// NewHistoryTool creates a HistoryTool over the record store.
func NewHistoryTool(rec Recorder) *HistoryTool {
	return &HistoryTool{rec: rec}
}

// Definition returns the MCP tool definition for ahss_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("ahss_history",
		mcp.WithDescription(
			"Show a client's saved AHSS screenings and simulation runs, newest first. "+
				"Use it to track change between administrations.",
		),
		mcp.WithString("client_id",
			mcp.Required(),
			mcp.Description("Client ID used when the screenings were saved"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries per list (default: 10)"),
		),
	)
}

// Handle processes the ahss_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID := strings.TrimSpace(req.GetString("client_id", ""))
	if clientID == "" {
		return mcp.NewToolResultError("'client_id' is required"), nil
	}
	if t.rec == nil {
		return mcp.NewToolResultError("history is unavailable: the record store is disabled"), nil
	}
	limit := intArg(req, "limit", 10)

	screenings, err := t.rec.ListScreenings(clientID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list screenings: %v", err)), nil
	}
	sims, err := t.rec.ListSimulations(clientID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list simulations: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## AHSS History: %s\n\n", clientID))

	sb.WriteString("### Screenings\n\n")
	if len(screenings) == 0 {
		sb.WriteString("No screenings saved.\n")
	}
	for _, s := range screenings {
		in := s.Interpretation
		window := "not assessed"
		if in.WindowDetermined() {
			window = string(in.Window)
		}
		sb.WriteString(fmt.Sprintf("- %s: total %s, risk %s, window %s (`%s`)\n",
			s.CreatedAt, num(in.TotalScore), strings.ToUpper(string(in.RiskLevel)), window, s.ID))
	}

	sb.WriteString("\n### Simulations\n\n")
	if len(sims) == 0 {
		sb.WriteString("No simulation runs saved.\n")
	}
	for _, sim := range sims {
		sb.WriteString(fmt.Sprintf("- %s: %d months, seed %d (`%s`)\n", sim.CreatedAt, sim.Months, sim.Seed, sim.ID))
		for _, o := range sim.Outcomes {
			sb.WriteString(fmt.Sprintf("  - %s: mental health %.1f, score %.1f, depressed %s\n",
				o.Policy, o.Final.MentalHealth, o.Final.AlgorithmicScore, yesNo(o.Final.MeetsDepressionCriteria)))
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
