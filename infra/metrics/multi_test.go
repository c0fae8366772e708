package metrics

import (
	"errors"
	"testing"

	coremetrics "github.com/kilianp07/chargeflow/core/metrics"
)

type countSink struct {
	decisions int
	periods   int
	err       error
}

func (c *countSink) RecordDecision(coremetrics.DecisionEvent) error {
	c.decisions++
	return c.err
}

func (c *countSink) RecordPeriod(coremetrics.PeriodEvent) error {
	c.periods++
	return c.err
}

func TestMultiSinkForwards(t *testing.T) {
	a, b := &countSink{}, &countSink{}
	multi := NewMultiSink(a, b)

	if err := multi.RecordDecision(coremetrics.DecisionEvent{}); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if err := multi.RecordPeriod(coremetrics.PeriodEvent{}); err != nil {
		t.Fatalf("record period: %v", err)
	}
	if a.decisions != 1 || b.decisions != 1 {
		t.Errorf("decisions not forwarded: %d %d", a.decisions, b.decisions)
	}
	if a.periods != 1 || b.periods != 1 {
		t.Errorf("periods not forwarded: %d %d", a.periods, b.periods)
	}
}

func TestMultiSinkFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &countSink{err: boom}
	b := &countSink{}
	multi := NewMultiSink(a, b)

	if err := multi.RecordDecision(coremetrics.DecisionEvent{}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.decisions != 0 {
		t.Errorf("later sink called after error")
	}
}
