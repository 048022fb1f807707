package screening

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCatalog reads a catalog from YAML and validates it.
// Items are sorted by number so the canonical order holds regardless of
// the order in the file.
func LoadCatalog(r io.Reader) (Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		return Catalog{}, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	sortItems(cat.Items)

	if err := cat.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// LoadCatalogFile reads a catalog from a YAML file. An empty path
// returns the default catalog.
func LoadCatalogFile(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// Administration is one completed questionnaire as stored on disk.
type Administration struct {
	ClientID  string      `yaml:"client_id" json:"client_id"`
	Responses ResponseSet `yaml:"responses" json:"responses"`
}

// LoadResponses reads an administration from YAML:
//
//	client_id: DEMO-001
//	responses:
//	  1: 3
//	  2: 2
//
// Range checks are left to Score.
func LoadResponses(r io.Reader) (Administration, error) {
	var a Administration
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		return Administration{}, fmt.Errorf("failed to parse responses YAML: %w", err)
	}
	if a.Responses == nil {
		a.Responses = ResponseSet{}
	}
	return a, nil
}
