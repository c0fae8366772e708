package scheduler

import (
	"github.com/kilianp07/chargeflow/core/model"
	"github.com/kilianp07/chargeflow/core/network"
)

// UncontrolledAlgorithm gives every session its pilot ceiling without
// consulting shared constraints. It serves as the baseline when comparing
// feasibility-aware policies and models a site with no load management.
type UncontrolledAlgorithm struct{}

// Schedule assigns min(MaxRate, pilot) to every active session.
func (UncontrolledAlgorithm) Schedule(active []model.Session, oracle network.Oracle) (*model.Schedule, error) {
	sched := model.NewSchedule()
	for _, s := range active {
		rate := s.MaxRate
		if pilot := oracle.MaxPilotSignal(s.StationID); pilot < rate {
			rate = pilot
		}
		if rate < 0 {
			rate = 0
		}
		sched.SetRate(s.StationID, 0, rate)
	}
	return sched, nil
}

// MaxRecompute returns 1: uncontrolled rates are recomputed every period so
// new arrivals start charging immediately.
func (UncontrolledAlgorithm) MaxRecompute() int { return 1 }

// Name identifies the algorithm in metrics.
func (UncontrolledAlgorithm) Name() string { return "uncontrolled" }
