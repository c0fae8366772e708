package sim

import (
	"fmt"
	"sort"

	"github.com/kilianp07/chargeflow/core/model"
)

// EventKind discriminates session events on the simulation timeline.
type EventKind int

const (
	// EventArrival introduces a new session into the active set.
	EventArrival EventKind = iota
	// EventDeparture unplugs a session before its estimated departure.
	EventDeparture
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventArrival:
		return "arrival"
	case EventDeparture:
		return "departure"
	default:
		return "unknown"
	}
}

// Event is one entry of the simulation timeline, at period granularity.
// Arrival events carry the full session; departure events reference it by ID.
type Event struct {
	Period    int
	Kind      EventKind
	Session   model.Session
	SessionID string
}

// Source produces the ordered session event stream for a run. The feed is
// opaque to the loop; implementations may replay recorded data or generate
// synthetic arrivals.
type Source interface {
	Events() ([]Event, error)
}

// sortEvents orders events by period, departures before arrivals within the
// same period so a freed station can host a new session immediately. The
// sort is stable to keep identical streams producing identical runs.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Period != events[j].Period {
			return events[i].Period < events[j].Period
		}
		return events[i].Kind == EventDeparture && events[j].Kind == EventArrival
	})
}

// validateEvents rejects streams the loop cannot honour.
func validateEvents(events []Event) error {
	for _, ev := range events {
		switch ev.Kind {
		case EventArrival:
			s := ev.Session
			if s.StationID == "" {
				return fmt.Errorf("arrival at period %d: empty station id", ev.Period)
			}
			if s.Departure <= s.Arrival {
				return fmt.Errorf("session %s: departure %d not after arrival %d", s.ID, s.Departure, s.Arrival)
			}
			if s.MaxRate < 0 || s.MinRate < 0 || s.MinRate > s.MaxRate {
				return fmt.Errorf("session %s: invalid rate bounds [%.3f, %.3f]", s.ID, s.MinRate, s.MaxRate)
			}
		case EventDeparture:
			if ev.SessionID == "" {
				return fmt.Errorf("departure at period %d: empty session id", ev.Period)
			}
		default:
			return fmt.Errorf("unknown event kind %d at period %d", ev.Kind, ev.Period)
		}
	}
	return nil
}
