package model

// Session represents one EV plugged into a charging station. It is created
// when the vehicle connects and stays in the active set until it departs or
// its energy demand is met. A session is read-only for the duration of a
// scheduling decision; only the simulation loop mutates delivered energy.
type Session struct {
	ID        string
	StationID string
	Arrival   int // period the vehicle plugged in
	Departure int // estimated departure period (exclusive)
	MinRate   float64
	MaxRate   float64 // hardware ceiling of the session, in amps

	EnergyDemandKWh    float64
	EnergyDeliveredKWh float64
}

// RemainingKWh returns the energy still owed to the vehicle.
func (s Session) RemainingKWh() float64 {
	r := s.EnergyDemandKWh - s.EnergyDeliveredKWh
	if r < 0 {
		return 0
	}
	return r
}

// Finished reports whether the demand has been fully served.
func (s Session) Finished() bool {
	return s.EnergyDemandKWh > 0 && s.RemainingKWh() == 0
}

// ActiveAt reports whether the session is plugged in during the given period.
func (s Session) ActiveAt(period int) bool {
	return period >= s.Arrival && period < s.Departure
}
