package config

import (
	"fmt"

	"github.com/kilianp07/chargeflow/core/network"
)

// StationConfig declares one charging station of the site.
type StationConfig struct {
	ID        string  `json:"id"`
	MaxPilotA float64 `json:"max_pilot_a"`
}

// SiteConfig declares the stations and shared current constraints of a
// charging site.
type SiteConfig struct {
	Stations    []StationConfig      `json:"stations"`
	Constraints []network.Constraint `json:"constraints"`
}

// Validate checks station declarations for duplicates and bounds.
func (c SiteConfig) Validate() error {
	if len(c.Stations) == 0 {
		return fmt.Errorf("site: at least one station is required")
	}
	seen := make(map[string]bool, len(c.Stations))
	for _, s := range c.Stations {
		if s.ID == "" {
			return fmt.Errorf("site: station with empty id")
		}
		if seen[s.ID] {
			return fmt.Errorf("site: duplicate station %s", s.ID)
		}
		seen[s.ID] = true
		if s.MaxPilotA < 0 {
			return fmt.Errorf("site: station %s has negative pilot", s.ID)
		}
	}
	return nil
}

// BuildOracle constructs the feasibility oracle for the site.
func (c SiteConfig) BuildOracle() (*network.ConstraintSet, error) {
	pilots := make(map[string]float64, len(c.Stations))
	for _, s := range c.Stations {
		pilots[s.ID] = s.MaxPilotA
	}
	return network.NewConstraintSet(pilots, c.Constraints)
}

// StationIDs returns the declared station identifiers in order.
func (c SiteConfig) StationIDs() []string {
	ids := make([]string, len(c.Stations))
	for i, s := range c.Stations {
		ids[i] = s.ID
	}
	return ids
}
