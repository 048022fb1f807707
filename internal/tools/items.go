package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/screening"
)

// ItemsTool handles the ahss_items MCP tool.
// It lists the screening items so the assistant can administer them.
type ItemsTool struct {
	catalog screening.Catalog
}

// NewItemsTool creates an ItemsTool over the given catalog.
func NewItemsTool(cat screening.Catalog) *ItemsTool {
	return &ItemsTool{catalog: cat}
}

// Definition returns the MCP tool definition for ahss_items.
func (t *ItemsTool) Definition() mcp.Tool {
	return mcp.NewTool("ahss_items",
		mcp.WithDescription(
			"List the Algorithmic Harm Screening Scale items with their response options. "+
				"Read the questions to the client verbatim and record the option index (0-based) they choose. "+
				"Pass the collected answers to ahss_score.",
		),
		mcp.WithString("domain",
			mcp.Description("Only list one section: exposure, outcomes, psychological or temporal"),
			mcp.Enum("exposure", "outcomes", "psychological", "temporal"),
		),
		mcp.WithBoolean("include_weights",
			mcp.Description("Include per-option scoring weights and clinical notes (clinician view). Default: false"),
		),
	)
}

// Handle processes the ahss_items tool call.
func (t *ItemsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := t.catalog.Items
	if d := req.GetString("domain", ""); d != "" {
		if err := screening.ValidateDomain(screening.Domain(d)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		items = t.catalog.ByDomain(screening.Domain(d))
	}
	weights := boolArg(req, "include_weights", false)

	var sb strings.Builder
	sb.WriteString("## AHSS Items\n\n")
	sb.WriteString(fmt.Sprintf("%d items. Answer each for the past 2 years.\n", len(items)))
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("\n**%d.** [%s] %s\n", it.Number, it.Domain, it.Question))
		for i, opt := range it.Options {
			if weights {
				sb.WriteString(fmt.Sprintf("  - %d: %s (weight %s)\n", i, opt, num(it.Weights[i])))
			} else {
				sb.WriteString(fmt.Sprintf("  - %d: %s\n", i, opt))
			}
		}
		if weights && it.ClinicalNote != "" {
			sb.WriteString(fmt.Sprintf("  _Note: %s_\n", it.ClinicalNote))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
