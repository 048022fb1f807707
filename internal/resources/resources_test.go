package resources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nyxdynamics/ahss/internal/screening"
	"github.com/nyxdynamics/ahss/internal/trajectory"
)

func readReq(uri string) mcp.ReadResourceRequest {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func onlyText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T, want TextResourceContents", contents[0])
	}
	return tc
}

func TestHandleCatalog(t *testing.T) {
	h := NewHandler(screening.Default())
	if h.CatalogResource().URI != CatalogURI {
		t.Errorf("URI = %s", h.CatalogResource().URI)
	}

	contents, err := h.HandleCatalog(context.Background(), readReq(CatalogURI))
	if err != nil {
		t.Fatal(err)
	}
	tc := onlyText(t, contents)
	if tc.MIMEType != "application/json" {
		t.Errorf("MIMEType = %s", tc.MIMEType)
	}

	var got screening.Catalog
	if err := json.Unmarshal([]byte(tc.Text), &got); err != nil {
		t.Fatalf("catalog is not valid JSON: %v", err)
	}
	if len(got.Items) != 20 || got.MaxTotal() != 76 {
		t.Errorf("decoded %d items, max %v", len(got.Items), got.MaxTotal())
	}
}

func TestHandleForm(t *testing.T) {
	h := NewHandler(screening.Default())
	contents, err := h.HandleForm(context.Background(), readReq(FormURI))
	if err != nil {
		t.Fatal(err)
	}
	tc := onlyText(t, contents)
	if tc.MIMEType != "text/plain" {
		t.Errorf("MIMEType = %s", tc.MIMEType)
	}
	if !strings.Contains(tc.Text, "SECTION A") || !strings.Contains(tc.Text, "___ / 76") {
		t.Error("form text incomplete")
	}
}

func TestHandleCases(t *testing.T) {
	h := NewHandler(screening.Default())
	contents, err := h.HandleCases(context.Background(), readReq(CasesURI))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]trajectory.Profile
	if err := json.Unmarshal([]byte(onlyText(t, contents).Text), &got); err != nil {
		t.Fatal(err)
	}
	if got["severe_risk"].BaselineMentalHealth != trajectory.Cases()["severe_risk"].BaselineMentalHealth {
		t.Errorf("severe_risk = %+v", got["severe_risk"])
	}
}
