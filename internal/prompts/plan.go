package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// PlanPrompt handles the ahss-plan MCP prompt.
// It instructs the AI to compare intervention policies for a client.
type PlanPrompt struct{}

// NewPlanPrompt creates a PlanPrompt.
func NewPlanPrompt() *PlanPrompt {
	return &PlanPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *PlanPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("ahss-plan",
		mcp.WithPromptDescription(
			"Compare intervention strategies for a client. "+
				"Reviews saved screenings, then simulates every policy against a reference case.",
		),
		mcp.WithArgument("client_id",
			mcp.ArgumentDescription("Client whose history should inform the plan"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("case",
			mcp.ArgumentDescription("Reference case: moderate_risk, high_risk or severe_risk. Default: high_risk"),
		),
	)
}

// Handle processes the ahss-plan prompt request.
func (p *PlanPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	clientID := argOr(req, "client_id", "")
	if clientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}
	caseName := argOr(req, "case", "high_risk")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Intervention plan: %s", clientID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Help me plan interventions for client '%s'.\n\n"+
						"Please:\n"+
						"1. Run `ahss_history` with client_id='%s' and summarise the screenings\n"+
						"2. Run `ahss_compare` with case='%s' and client_id='%s'\n"+
						"3. Show which policy ends with the best mental health and which lowers application avoidance most\n"+
						"4. If the latest screening's window is limited or chronic, say that efficacy is reduced\n\n"+
						"Trajectories are illustrative projections, not predictions for this client.",
					clientID, clientID, caseName, clientID,
				)),
			},
		},
	}, nil
}
