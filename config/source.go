package config

import (
	"fmt"

	"github.com/kilianp07/chargeflow/core/sim"
)

// Source type names accepted in configuration.
const (
	SourceFile      = "file"
	SourceSynthetic = "synthetic"
)

// SourceConfig selects where session events come from.
type SourceConfig struct {
	// Type is "file" or "synthetic".
	Type string `json:"type"`
	// Path locates the recorded feed when Type is "file".
	Path string `json:"path"`
	// Synthetic parameterises the generator when Type is "synthetic".
	Synthetic sim.SyntheticConfig `json:"synthetic"`
}

// SetDefaults picks the synthetic generator.
func (c *SourceConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = SourceSynthetic
	}
}

// Validate checks the selected source.
func (c SourceConfig) Validate() error {
	switch c.Type {
	case SourceFile:
		if c.Path == "" {
			return fmt.Errorf("source: path is required for type %q", SourceFile)
		}
	case SourceSynthetic:
	default:
		return fmt.Errorf("source: unknown type %q", c.Type)
	}
	return nil
}

// Build returns the configured event source. The synthetic generator draws
// its station list from the site when none is configured.
func (c SourceConfig) Build(site SiteConfig) (sim.Source, error) {
	switch c.Type {
	case SourceFile:
		return sim.FileSource{Path: c.Path}, nil
	case SourceSynthetic:
		syn := c.Synthetic
		if len(syn.Stations) == 0 {
			syn.Stations = site.StationIDs()
		}
		return sim.SyntheticSource{Config: syn}, nil
	default:
		return nil, fmt.Errorf("source: unknown type %q", c.Type)
	}
}
