package metrics

import "time"

// DecisionEvent captures one scheduling decision for observability.
type DecisionEvent struct {
	Period         int
	Algorithm      string
	ActiveSessions int
	Evaluations    int // feasibility oracle calls spent on the decision
	Duration       time.Duration
	Time           time.Time
}

// PeriodEvent is a snapshot of the committed rates for one simulated period.
type PeriodEvent struct {
	Period         int
	ActiveSessions int
	TotalCurrentA  float64
	Rates          map[string]float64 // committed rate per station
	Time           time.Time
}

// Sink records simulation events for observability purposes.
type Sink interface {
	RecordDecision(ev DecisionEvent) error
	RecordPeriod(ev PeriodEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordDecision(DecisionEvent) error { return nil }
func (NopSink) RecordPeriod(PeriodEvent) error     { return nil }
