package network

import "github.com/kilianp07/chargeflow/core/model"

// Oracle answers whether a schedule satisfies the shared infrastructure
// limits of a charging site. Implementations must be pure predicates and
// uphold two invariants the schedulers rely on: the all-zero schedule is
// always feasible, and feasibility is monotone per station (if rate r is
// feasible with the rest of the schedule fixed, so is every rate in [0, r]).
type Oracle interface {
	// IsFeasible reports whether the rates at the given period offset
	// satisfy every constraint.
	IsFeasible(s *model.Schedule, offset int) bool

	// MaxPilotSignal returns the hardware ceiling of the station in amps,
	// independent of shared constraints.
	MaxPilotSignal(stationID string) float64
}
