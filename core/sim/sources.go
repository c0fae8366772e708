package sim

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"github.com/kilianp07/chargeflow/core/model"
)

// FileSource replays a recorded session feed from a JSON file.
type FileSource struct {
	Path string
}

type fileSession struct {
	ID           string  `json:"id"`
	StationID    string  `json:"station_id"`
	Arrival      int     `json:"arrival"`
	Departure    int     `json:"departure"`
	MinRateA     float64 `json:"min_rate_a"`
	MaxRateA     float64 `json:"max_rate_a"`
	EnergyKWh    float64 `json:"energy_kwh"`
	UnplugPeriod *int    `json:"unplug_period,omitempty"`
}

type fileFeed struct {
	Sessions []fileSession `json:"sessions"`
}

// Events loads and orders the recorded feed. Sessions without an ID get a
// generated one. An optional unplug_period emits an early departure event.
func (f FileSource) Events() ([]Event, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("event feed: %w", err)
	}
	var feed fileFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("event feed %s: %w", f.Path, err)
	}

	var events []Event
	for _, fs := range feed.Sessions {
		id := fs.ID
		if id == "" {
			id = uuid.New().String()
		}
		s := model.Session{
			ID:              id,
			StationID:       fs.StationID,
			Arrival:         fs.Arrival,
			Departure:       fs.Departure,
			MinRate:         fs.MinRateA,
			MaxRate:         fs.MaxRateA,
			EnergyDemandKWh: fs.EnergyKWh,
		}
		events = append(events, Event{Period: fs.Arrival, Kind: EventArrival, Session: s})
		if fs.UnplugPeriod != nil {
			events = append(events, Event{Period: *fs.UnplugPeriod, Kind: EventDeparture, SessionID: id})
		}
	}
	sortEvents(events)
	if err := validateEvents(events); err != nil {
		return nil, err
	}
	return events, nil
}

// SyntheticConfig parameterises the synthetic session generator.
type SyntheticConfig struct {
	Stations []string `json:"stations"`
	// Horizon is the last period at which a session may arrive.
	Horizon int `json:"horizon"`
	// Seed makes the generated stream reproducible.
	Seed int64 `json:"seed"`
	// MaxGapPeriods bounds the idle time between sessions on one station.
	MaxGapPeriods int `json:"max_gap_periods"`
	// MaxStayPeriods bounds the stay length of one session.
	MaxStayPeriods int     `json:"max_stay_periods"`
	MaxRateA       float64 `json:"max_rate_a"`
	MaxEnergyKWh   float64 `json:"max_energy_kwh"`
}

// SetDefaults applies generator defaults.
func (c *SyntheticConfig) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = 96
	}
	if c.MaxGapPeriods == 0 {
		c.MaxGapPeriods = 8
	}
	if c.MaxStayPeriods == 0 {
		c.MaxStayPeriods = 16
	}
	if c.MaxRateA == 0 {
		c.MaxRateA = 32
	}
	if c.MaxEnergyKWh == 0 {
		c.MaxEnergyKWh = 20
	}
}

// SyntheticSource generates a reproducible stream of non-overlapping
// sessions per station.
type SyntheticSource struct {
	Config SyntheticConfig
}

// Events generates the stream. Two sources with the same configuration
// produce the same arrivals, departures and demands; only session IDs
// differ, and nothing downstream depends on them.
func (g SyntheticSource) Events() ([]Event, error) {
	cfg := g.Config
	cfg.SetDefaults()
	if len(cfg.Stations) == 0 {
		return nil, fmt.Errorf("synthetic source: no stations")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	var events []Event
	for _, station := range cfg.Stations {
		t := 0
		for {
			arrival := t + 1 + rng.Intn(cfg.MaxGapPeriods)
			if arrival >= cfg.Horizon {
				break
			}
			stay := 2 + rng.Intn(cfg.MaxStayPeriods)
			s := model.Session{
				ID:              uuid.New().String(),
				StationID:       station,
				Arrival:         arrival,
				Departure:       arrival + stay,
				MaxRate:         cfg.MaxRateA,
				EnergyDemandKWh: 1 + rng.Float64()*(cfg.MaxEnergyKWh-1),
			}
			events = append(events, Event{Period: arrival, Kind: EventArrival, Session: s})
			t = s.Departure
		}
	}
	sortEvents(events)
	return events, validateEvents(events)
}
