package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedSchedule indicates a schedule that violates the bounds or
// coverage contract and must not be applied.
var ErrMalformedSchedule = errors.New("malformed schedule")

// Schedule maps a station to its planned charging rates, one entry per
// future period with index 0 being the current period. A schedule is built
// by a single scheduling decision and is not shared outside its lifetime.
type Schedule struct {
	rates map[string][]float64
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{rates: make(map[string][]float64)}
}

// SetRate stores the rate for the station at the given period offset,
// growing the horizon with zeros as needed.
func (s *Schedule) SetRate(stationID string, offset int, rate float64) {
	if offset < 0 {
		return
	}
	seq := s.rates[stationID]
	for len(seq) <= offset {
		seq = append(seq, 0)
	}
	seq[offset] = rate
	s.rates[stationID] = seq
}

// RateAt returns the planned rate for the station at the given offset.
// Offsets past the horizon repeat the last planned value, so a decision
// with a single-period horizon stays valid until the next recompute.
// Stations without an entry draw the always-feasible zero rate.
func (s *Schedule) RateAt(stationID string, offset int) float64 {
	seq := s.rates[stationID]
	if len(seq) == 0 || offset < 0 {
		return 0
	}
	if offset >= len(seq) {
		return seq[len(seq)-1]
	}
	return seq[offset]
}

// Horizon returns the number of planned periods for the station.
func (s *Schedule) Horizon(stationID string) int {
	return len(s.rates[stationID])
}

// Stations returns the station identifiers with entries, sorted for
// deterministic iteration.
func (s *Schedule) Stations() []string {
	ids := make([]string, 0, len(s.rates))
	for id := range s.rates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	cp := NewSchedule()
	for id, seq := range s.rates {
		dup := make([]float64, len(seq))
		copy(dup, seq)
		cp.rates[id] = dup
	}
	return cp
}

// Validate checks the schedule against the active sessions: every active
// station must have an entry and every planned rate must lie within
// [0, MaxRate] for its session. A failure means the producing scheduler is
// broken and the schedule must not be applied.
func (s *Schedule) Validate(active []Session) error {
	for _, sess := range active {
		seq, ok := s.rates[sess.StationID]
		if !ok || len(seq) == 0 {
			return fmt.Errorf("%w: no rates for station %s", ErrMalformedSchedule, sess.StationID)
		}
		for i, r := range seq {
			if r < 0 || r > sess.MaxRate {
				return fmt.Errorf("%w: station %s offset %d rate %.3f outside [0, %.3f]",
					ErrMalformedSchedule, sess.StationID, i, r, sess.MaxRate)
			}
		}
	}
	return nil
}
