package sim

// Sample is one committed per-period rate assignment, the unit of the
// history owned by the simulation loop.
type Sample struct {
	Period int
	Rates  map[string]float64 // applied rate per station, in amps
}

// Summary aggregates a finished run.
type Summary struct {
	Periods            int
	Decisions          int
	Evaluations        int // total feasibility oracle calls
	EnergyDeliveredKWh float64
	UnmetDemandKWh     float64
	PeakCurrentA       float64
}
