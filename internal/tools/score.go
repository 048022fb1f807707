package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/screening"
)

// ScoreTool handles the ahss_score MCP tool.
// It scores a set of responses, interprets the result and optionally
// saves it to the client's history.
type ScoreTool struct {
	catalog screening.Catalog
	rec     Recorder
}

// NewScoreTool creates a ScoreTool. rec may be nil.
func NewScoreTool(cat screening.Catalog, rec Recorder) *ScoreTool {
	return &ScoreTool{catalog: cat, rec: rec}
}

// Definition returns the MCP tool definition for ahss_score.
func (t *ScoreTool) Definition() mcp.Tool {
	return mcp.NewTool("ahss_score",
		mcp.WithDescription(
			"Score AHSS responses and interpret them: total score, domain subscales, risk level, "+
				"recommendations and intervention window. Partial administrations are allowed; "+
				"the window is only determined when temporal items were answered.",
		),
		mcp.WithObject("responses",
			mcp.Required(),
			mcp.Description(`Map of item number to chosen option index, e.g. {"1": 3, "2": 0}. An array of indices in item order is also accepted.`),
		),
		mcp.WithString("client_id",
			mcp.Description("Client ID; when set the screening is saved to the client's history"),
		),
	)
}

// Handle processes the ahss_score tool call.
func (t *ScoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responses, err := responsesArg(req, "responses")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := screening.Score(t.catalog, responses)
	if err != nil {
		if errors.Is(err, screening.ErrInvalidResponse) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, fmt.Errorf("scoring: %w", err)
	}
	in := screening.InterpretResult(res)

	var sb strings.Builder
	sb.WriteString("## AHSS Score\n\n")
	sb.WriteString(fmt.Sprintf("**Items answered:** %d of %d\n", len(responses), len(t.catalog.Items)))
	writeInterpretation(&sb, in, t.catalog)

	clientID := strings.TrimSpace(req.GetString("client_id", ""))
	if clientID != "" && t.rec != nil {
		saved, err := t.rec.SaveScreening(clientID, responses, in)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scored, but failed to save: %v", err)), nil
		}
		sb.WriteString(fmt.Sprintf("\n**Saved:** screening %s for client %s\n", saved.ID, clientID))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// writeInterpretation renders an interpretation as markdown. Subscale
// maxima come from the catalog.
func writeInterpretation(sb *strings.Builder, in screening.Interpretation, cat screening.Catalog) {
	sb.WriteString(fmt.Sprintf("**Total score:** %s/%s\n", num(in.TotalScore), num(cat.MaxTotal())))
	sb.WriteString(fmt.Sprintf("**Risk level:** %s\n", strings.ToUpper(string(in.RiskLevel))))

	if len(in.Subscales) > 0 {
		sb.WriteString("\n### Subscales\n\n")
		for _, d := range screening.Domains() {
			sb.WriteString(fmt.Sprintf("- %s: %s/%s\n", d, num(in.Subscales[d]), num(cat.MaxSubscale(d))))
		}
	}

	sb.WriteString("\n### Interpretation\n\n")
	sb.WriteString(in.Summary + "\n")

	sb.WriteString("\n### Intervention Window\n\n")
	if in.WindowDetermined() {
		sb.WriteString(fmt.Sprintf("**%s** - %s\n", strings.ToUpper(string(in.Window)), in.WindowNote))
	} else {
		sb.WriteString(in.WindowNote + "\n")
	}

	sb.WriteString("\n### Recommendations\n\n")
	for i, r := range in.Recommendations {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r))
	}
}
