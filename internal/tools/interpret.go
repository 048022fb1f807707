package tools

import (
	"context"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/screening"
)

// InterpretTool handles the ahss_interpret MCP tool.
// It interprets a total score computed elsewhere, e.g. from a paper form.
type InterpretTool struct {
	catalog screening.Catalog
}

// NewInterpretTool creates an InterpretTool. The catalog only supplies
// the maxima shown next to scores.
func NewInterpretTool(cat screening.Catalog) *InterpretTool {
	return &InterpretTool{catalog: cat}
}

// Definition returns the MCP tool definition for ahss_interpret.
func (t *InterpretTool) Definition() mcp.Tool {
	return mcp.NewTool("ahss_interpret",
		mcp.WithDescription(
			"Interpret an AHSS total score (e.g. hand-scored from the paper form). "+
				"Provide the temporal subscale to also get the intervention window.",
		),
		mcp.WithNumber("total_score",
			mcp.Required(),
			mcp.Description("AHSS total score"),
		),
		mcp.WithNumber("temporal",
			mcp.Description("Temporal subscale score (items 19-20); omit if not assessed"),
		),
	)
}

// Handle processes the ahss_interpret tool call.
func (t *InterpretTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, ok, err := floatArg(req, "total_score")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("'total_score' is required"), nil
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return mcp.NewToolResultError("'total_score' must be a finite number"), nil
	}

	var subscales map[screening.Domain]float64
	temporal, ok, err := floatArg(req, "temporal")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		subscales = map[screening.Domain]float64{screening.DomainTemporal: temporal}
	}

	in := screening.Interpret(total, subscales)
	// Only the temporal entry was supplied; don't print a partial subscale block.
	in.Subscales = nil

	var sb strings.Builder
	sb.WriteString("## AHSS Interpretation\n\n")
	writeInterpretation(&sb, in, t.catalog)
	return mcp.NewToolResultText(sb.String()), nil
}
