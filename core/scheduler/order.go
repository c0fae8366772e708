package scheduler

import "github.com/kilianp07/chargeflow/core/model"

// Order reports whether session a should be scheduled before session b.
// Orders are used with a stable sort, so returning false for equal
// priorities preserves arrival order.
type Order func(a, b model.Session) bool

// EarliestDeadlineFirst prioritises sessions by estimated departure.
func EarliestDeadlineFirst(a, b model.Session) bool {
	return a.Departure < b.Departure
}

// NewLeastLaxityFirst prioritises sessions with the least slack between
// departure and the periods still needed to finish charging at full rate.
// The current period shifts every session's laxity equally, so comparing
// departure minus periods-needed gives the same ordering without the
// scheduler having to know simulated time. kwhPerAmpPeriod converts one amp
// over one period into delivered energy (voltage * period hours / 1000).
func NewLeastLaxityFirst(kwhPerAmpPeriod float64) Order {
	laxity := func(s model.Session) float64 {
		if s.MaxRate <= 0 || kwhPerAmpPeriod <= 0 {
			return float64(s.Departure)
		}
		needed := s.RemainingKWh() / (s.MaxRate * kwhPerAmpPeriod)
		return float64(s.Departure) - needed
	}
	return func(a, b model.Session) bool {
		return laxity(a) < laxity(b)
	}
}
