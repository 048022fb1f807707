// Package prompts implements MCP prompt handlers for AHSS workflows.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// AdministerPrompt handles the ahss-administer MCP prompt.
// It guides the AI through a full screening interview.
type AdministerPrompt struct{}

// NewAdministerPrompt creates an AdministerPrompt.
func NewAdministerPrompt() *AdministerPrompt {
	return &AdministerPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AdministerPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("ahss-administer",
		mcp.WithPromptDescription(
			"Administer the Algorithmic Harm Screening Scale. "+
				"Walks through all 20 items one at a time, then scores and interprets the answers.",
		),
		mcp.WithArgument("client_id",
			mcp.ArgumentDescription("Client ID to save the screening under. Leave empty for an anonymous screening."),
		),
	)
}

// Handle processes the ahss-administer prompt request.
func (p *AdministerPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	clientID := argOr(req, "client_id", "")

	save := "Do not pass a client_id; this screening is anonymous."
	desc := "Administer AHSS (anonymous)"
	if clientID != "" {
		save = fmt.Sprintf("Pass client_id='%s' so the screening is saved to the client's history.", clientID)
		desc = fmt.Sprintf("Administer AHSS: %s", clientID)
	}

	return &mcp.GetPromptResult{
		Description: desc,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I want to complete the Algorithmic Harm Screening Scale.\n\n" +
						"Please:\n" +
						"1. Run `ahss_items` to get the questions and their options\n" +
						"2. Ask me each question in order, one at a time, listing the options by number\n" +
						"3. Record the option index I choose; if I'm unsure, ask again rather than guessing\n" +
						"4. When all 20 are answered, run `ahss_score` with the responses. " + save + "\n" +
						"5. Explain the risk level, the intervention window and the recommendations in plain language\n\n" +
						"This is a screening aid, not a diagnosis. Say so when you present the result.",
				),
			},
		},
	}, nil
}

// argOr returns the named prompt argument, or def when absent or empty.
func argOr(req mcp.GetPromptRequest, key, def string) string {
	if args := req.Params.Arguments; args != nil {
		if v, ok := args[key]; ok && v != "" {
			return v
		}
	}
	return def
}
