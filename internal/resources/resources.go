// Package resources implements MCP resource handlers for AHSS.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (ahss://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/report"
	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

// Resource URIs.
const (
	CatalogURI = "ahss://catalog"
	FormURI    = "ahss://form"
	CasesURI   = "ahss://cases"
)

// Handler serves the AHSS resources for one catalog.
type Handler struct {
	catalog screening.Catalog
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(cat screening.Catalog) *Handler {
	return &Handler{catalog: cat}
}

// CatalogResource returns the MCP resource definition for the item catalog.
func (h *Handler) CatalogResource() mcp.Resource {
	return mcp.NewResource(
		CatalogURI,
		"AHSS Item Catalog",
		mcp.WithResourceDescription("All screening items with options, weights and clinical notes"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCatalog returns the catalog as JSON.
func (h *Handler) HandleCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.catalog)
}

// FormResource returns the MCP resource definition for the paper form.
func (h *Handler) FormResource() mcp.Resource {
	return mcp.NewResource(
		FormURI,
		"AHSS Printable Form",
		mcp.WithResourceDescription("The screening form laid out for printing, with a clinician scoring block"),
		mcp.WithMIMEType("text/plain"),
	)
}

// HandleForm renders the printable form.
func (h *Handler) HandleForm(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text, err := report.Form(h.catalog)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}

// CasesResource returns the MCP resource definition for the reference cases.
func (h *Handler) CasesResource() mcp.Resource {
	return mcp.NewResource(
		CasesURI,
		"AHSS Reference Cases",
		mcp.WithResourceDescription("Reference client profiles accepted by the simulate and compare tools"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleCases returns the reference profiles as JSON keyed by name.
func (h *Handler) HandleCases(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, trajectory.Cases())
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
