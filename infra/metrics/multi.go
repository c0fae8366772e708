package metrics

import coremetrics "github.com/kilianp07/chargeflow/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDecision forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordDecision(ev coremetrics.DecisionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDecision(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPeriod forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordPeriod(ev coremetrics.PeriodEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPeriod(ev); err != nil {
			return err
		}
	}
	return nil
}
