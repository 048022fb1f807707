// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts and resources that depend on them.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nyxdynamics/ahss/internal/config"
	"github.com/nyxdynamics/ahss/internal/prompts"
	"github.com/nyxdynamics/ahss/internal/records"
	"github.com/nyxdynamics/ahss/internal/resources"
	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/tools"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// Version is set at build time via ldflags.
var Version = "dev"

// LoadCatalog returns the configured catalog file, or the built-in
// catalog when none is set.
func LoadCatalog(cfg config.Config) (screening.Catalog, error) {
	if cfg.CatalogFile == "" {
		return screening.Default(), nil
	}
	cat, err := screening.LoadCatalogFile(cfg.CatalogFile)
	if err != nil {
		return screening.Catalog{}, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

// OpenRecorder opens the records store. History is an optional
// subsystem: when the store cannot be opened a warning is logged and a
// nil Recorder is returned, which the tools treat as "do not save".
// The cleanup function is always non-nil.
func OpenRecorder(cfg config.Config, logger *slog.Logger) (tools.Recorder, func()) {
	store, err := records.New(records.Config{DataDir: cfg.DataDir})
	if err != nil {
		logger.Warn("records disabled", "data_dir", cfg.DataDir, "error", err)
		return nil, noop
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("records store close", "error", err)
		}
	}
}

// Defaults maps configuration onto the simulation defaults of the tools.
func Defaults(cfg config.Config) tools.SimDefaults {
	return tools.SimDefaults{
		Months:     cfg.DurationMonths,
		StartMonth: cfg.InterventionMonth,
		Seed:       cfg.Seed,
	}
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the records database and must be
// called on shutdown (typically via defer). It is always non-nil and
// safe to call even if records failed to open.
func New(cfg config.Config, logger *slog.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	// --- Create shared dependencies ---

	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, noop, err
	}
	model := trajectory.NewModel(trajectory.DefaultParameters())
	rec, cleanup := OpenRecorder(cfg, logger)
	defaults := Defaults(cfg)

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"ahss",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register screening tools ---

	itemsTool := tools.NewItemsTool(cat)
	s.AddTool(itemsTool.Definition(), itemsTool.Handle)

	scoreTool := tools.NewScoreTool(cat, rec)
	s.AddTool(scoreTool.Definition(), scoreTool.Handle)

	interpretTool := tools.NewInterpretTool(cat)
	s.AddTool(interpretTool.Definition(), interpretTool.Handle)

	// --- Register trajectory tools ---

	simulateTool := tools.NewSimulateTool(model, rec, defaults)
	s.AddTool(simulateTool.Definition(), simulateTool.Handle)

	compareTool := tools.NewCompareTool(model, rec, defaults)
	s.AddTool(compareTool.Definition(), compareTool.Handle)

	// History is registered unconditionally; it reports that records are
	// disabled when rec is nil.
	historyTool := tools.NewHistoryTool(rec)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	// --- Register prompts ---

	administerPrompt := prompts.NewAdministerPrompt()
	s.AddPrompt(administerPrompt.Definition(), administerPrompt.Handle)

	planPrompt := prompts.NewPlanPrompt()
	s.AddPrompt(planPrompt.Definition(), planPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(cat)
	s.AddResource(resourceHandler.CatalogResource(), resourceHandler.HandleCatalog)
	s.AddResource(resourceHandler.FormResource(), resourceHandler.HandleForm)
	s.AddResource(resourceHandler.CasesResource(), resourceHandler.HandleCases)

	logger.Debug("mcp server ready", "items", len(cat.Items), "records", rec != nil)
	return s, cleanup, nil
}

// noop is a no-op cleanup function used when records are disabled.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the AHSS tools.
func serverInstructions() string {
	return `You have access to the Algorithmic Harm Screening Scale (AHSS).

AHSS screens people for psychological harm caused by automated decision
systems: hiring filters, credit scoring, benefit eligibility, platform
moderation. It has 20 items in four domains:
- exposure (items 1-7): how much the person depends on algorithmic decisions
- outcomes (items 8-13): adverse decisions they have received
- psychological (items 14-18): shame, avoidance, hopelessness, distress
- temporal (items 19-20): time since the harm, which sets the intervention window

## Screening
1. Call ahss_items to get the questions. Ask them one at a time.
2. Call ahss_score with {"item number": option index}. Pass client_id to save.
3. Present the risk level, the recommendations and the intervention window.
Use ahss_interpret when only a total score (and optionally the temporal
subscale) is known, for example from a paper form.

Risk bands: up to 10 minimal, up to 20 low, up to 35 moderate, up to 50 high,
above 50 severe.
Window (temporal subscale): 6+ optimal, 4-5 urgent, 2-3 limited, 0-1 chronic.

## Trajectories
ahss_simulate projects monthly mental health, algorithmic standing, shame
and application avoidance for a profile, with an optional intervention.
ahss_compare runs every policy (no_intervention, psychoeducation,
cognitive_reframe, advocacy, combined) from one seed and
reports the final state of each. Results are illustrative, not clinical
predictions. Report the seed so runs can be reproduced.

## History
ahss_history lists a client's saved screenings and simulations, newest first.

## Important
- This is a screening aid, not a diagnostic instrument. Say so.
- Never guess an answer the person did not give; ask again.
- Option indices start at 0.`
}
