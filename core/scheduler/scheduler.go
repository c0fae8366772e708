package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/chargeflow/core/logger"
	"github.com/kilianp07/chargeflow/core/model"
	"github.com/kilianp07/chargeflow/core/network"
)

// ErrInfeasibleBaseline is returned when the oracle rejects the all-zero
// schedule. The zero baseline is an oracle invariant, so this signals a
// misconfigured constraint model and aborts the run rather than letting an
// infeasible schedule through.
var ErrInfeasibleBaseline = errors.New("constraint model rejects the all-zero schedule")

// Algorithm produces one scheduling decision for the currently active
// sessions. Implementations must not mutate the input slice and must cover
// every active station with at least one rate entry.
type Algorithm interface {
	Schedule(active []model.Session, oracle network.Oracle) (*model.Schedule, error)

	// MaxRecompute is the number of periods the simulation loop may reuse
	// one decision before calling Schedule again. Always positive.
	MaxRecompute() int
}

// SortedAlgorithm is the reference scheduler: sessions are stable-sorted by
// the configured order, then each receives the highest feasible rate the
// search strategy finds with earlier sessions' rates committed and later
// ones at zero. The stable sort keeps runs deterministic when two sessions
// share a departure period (arrival order breaks the tie).
type SortedAlgorithm struct {
	order     Order
	search    SearchStrategy
	recompute int
	log       logger.Logger
}

// NewSortedAlgorithm builds a sorted scheduler. maxRecompute must be at
// least 1.
func NewSortedAlgorithm(order Order, search SearchStrategy, maxRecompute int, log logger.Logger) (*SortedAlgorithm, error) {
	if order == nil {
		return nil, errors.New("sorted algorithm: nil order")
	}
	if search == nil {
		return nil, errors.New("sorted algorithm: nil search strategy")
	}
	if maxRecompute < 1 {
		return nil, fmt.Errorf("sorted algorithm: max_recompute %d must be positive", maxRecompute)
	}
	return &SortedAlgorithm{order: order, search: search, recompute: maxRecompute, log: log}, nil
}

// MaxRecompute returns the configured reuse interval in periods.
func (a *SortedAlgorithm) MaxRecompute() int { return a.recompute }

// Name identifies the algorithm in metrics.
func (a *SortedAlgorithm) Name() string { return "sorted" }

// Schedule runs one decision over the active sessions.
func (a *SortedAlgorithm) Schedule(active []model.Session, oracle network.Oracle) (*model.Schedule, error) {
	sched := model.NewSchedule()
	for _, s := range active {
		sched.SetRate(s.StationID, 0, 0)
	}
	if !oracle.IsFeasible(sched, 0) {
		return nil, ErrInfeasibleBaseline
	}

	sorted := make([]model.Session, len(active))
	copy(sorted, active)
	sort.SliceStable(sorted, func(i, j int) bool {
		return a.order(sorted[i], sorted[j])
	})

	for _, s := range sorted {
		upper := s.MaxRate
		if pilot := oracle.MaxPilotSignal(s.StationID); pilot < upper {
			upper = pilot
		}
		rate, err := a.search.Search(s.StationID, upper, sched, oracle)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", s.StationID, err)
		}
		sched.SetRate(s.StationID, 0, rate)
		if a.log != nil {
			a.log.Debugw("rate committed", map[string]any{
				"station": s.StationID,
				"session": s.ID,
				"rate_a":  rate,
				"upper_a": upper,
			})
		}
	}
	return sched, nil
}
