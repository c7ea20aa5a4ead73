// Package catalog serves the club's static surf packages and events.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Package struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Price    int      `yaml:"price" json:"price"`
	Duration string   `yaml:"duration" json:"duration"`
	Features []string `yaml:"features" json:"features"`
	Badge    string   `yaml:"badge" json:"badge"`
}

type Event struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Date  string `yaml:"date" json:"date"`
	Type  string `yaml:"type" json:"type"`
	Time  string `yaml:"time" json:"time"`
}

// Catalog is immutable once loaded. Accessors hand out copies.
type Catalog struct {
	packages []Package
	events   []Event
}

type document struct {
	Packages []Package `yaml:"packages"`
	Events   []Event   `yaml:"events"`
}

func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]bool)
	for _, p := range doc.Packages {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog package %q has no id", p.Title)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate catalog package id %q", p.ID)
		}
		seen[p.ID] = true
	}

	return &Catalog{packages: doc.Packages, events: doc.Events}, nil
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

func (c *Catalog) Packages() []Package {
	out := make([]Package, len(c.packages))
	for i, p := range c.packages {
		p.Features = slices.Clone(p.Features)
		out[i] = p
	}
	return out
}

func (c *Catalog) Events() []Event {
	return slices.Clone(c.events)
}
