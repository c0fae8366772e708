package scheduler

import (
	"github.com/kilianp07/chargeflow/core/model"
	"github.com/kilianp07/chargeflow/core/network"
)

// Default granularities for the search strategies, in amps.
const (
	DefaultIncrementA = 1.0
	DefaultToleranceA = 0.01
)

// SearchStrategy finds the highest feasible rate in [0, upper] for the
// station, with the rates of previously processed stations already fixed in
// the schedule. On return the schedule holds the returned rate for the
// station and that rate has been verified against the oracle; a strategy
// never reports a rate it has not checked.
//
// Correctness of every strategy rests on the oracle's monotonicity
// invariant: if a rate is feasible, so is every smaller one.
type SearchStrategy interface {
	Search(stationID string, upper float64, sched *model.Schedule, oracle network.Oracle) (float64, error)
}

// LinearDecrement is the reference strategy: start at the upper bound and
// walk down in fixed steps until the oracle accepts, clamping at zero. It
// costs up to upper/Increment oracle evaluations.
type LinearDecrement struct {
	IncrementA float64
}

// Search implements SearchStrategy.
func (d LinearDecrement) Search(stationID string, upper float64, sched *model.Schedule, oracle network.Oracle) (float64, error) {
	inc := d.IncrementA
	if inc <= 0 {
		inc = DefaultIncrementA
	}
	rate := upper
	if rate < 0 {
		rate = 0
	}
	for {
		sched.SetRate(stationID, 0, rate)
		if oracle.IsFeasible(sched, 0) {
			return rate, nil
		}
		if rate == 0 {
			// Zero was feasible before this station was touched, so a
			// rejection here breaks the oracle's baseline invariant.
			return 0, ErrInfeasibleBaseline
		}
		rate -= inc
		if rate < 0 {
			rate = 0
		}
	}
}

// Bisection is a drop-in substitute exploiting the monotone feasibility
// predicate, costing O(log(upper/tolerance)) oracle evaluations instead of
// O(upper/increment).
type Bisection struct {
	ToleranceA float64
}

// Search implements SearchStrategy.
func (b Bisection) Search(stationID string, upper float64, sched *model.Schedule, oracle network.Oracle) (float64, error) {
	tol := b.ToleranceA
	if tol <= 0 {
		tol = DefaultToleranceA
	}
	if upper < 0 {
		upper = 0
	}

	sched.SetRate(stationID, 0, upper)
	if oracle.IsFeasible(sched, 0) {
		return upper, nil
	}
	sched.SetRate(stationID, 0, 0)
	if !oracle.IsFeasible(sched, 0) {
		return 0, ErrInfeasibleBaseline
	}

	// Invariant: lo feasible, hi infeasible.
	lo, hi := 0.0, upper
	for hi-lo > tol {
		mid := (lo + hi) / 2
		sched.SetRate(stationID, 0, mid)
		if oracle.IsFeasible(sched, 0) {
			lo = mid
		} else {
			hi = mid
		}
	}
	sched.SetRate(stationID, 0, lo)
	if !oracle.IsFeasible(sched, 0) {
		return 0, ErrInfeasibleBaseline
	}
	return lo, nil
}
