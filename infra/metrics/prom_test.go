package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/chargeflow/core/metrics"
)

func TestPromSink_RecordDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}

	ev := coremetrics.DecisionEvent{
		Period:         4,
		Algorithm:      "sorted_edf",
		ActiveSessions: 3,
		Evaluations:    27,
		Duration:       150 * time.Millisecond,
		Time:           time.Now(),
	}
	if err := sink.RecordDecision(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP scheduling_decisions_total Total number of scheduling decisions
# TYPE scheduling_decisions_total counter
scheduling_decisions_total 1
`
	if err := testutil.CollectAndCompare(sink.decisions, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.evaluations); c == 0 {
		t.Errorf("evaluations not recorded")
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}
}

func TestPromSink_RecordPeriod(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)

	if err := sink.RecordPeriod(coremetrics.PeriodEvent{
		Period:         1,
		ActiveSessions: 2,
		TotalCurrentA:  40,
		Rates:          map[string]float64{"A": 24, "B": 16},
	}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expectedCurrent := `
# HELP aggregate_current_amps Aggregate charging current committed for the current period
# TYPE aggregate_current_amps gauge
aggregate_current_amps 40
`
	if err := testutil.CollectAndCompare(sink.current, strings.NewReader(expectedCurrent)); err != nil {
		t.Errorf("unexpected current metric: %v", err)
	}
	expectedSessions := `
# HELP active_sessions Number of sessions in the active set
# TYPE active_sessions gauge
active_sessions 2
`
	if err := testutil.CollectAndCompare(sink.sessions, strings.NewReader(expectedSessions)); err != nil {
		t.Errorf("unexpected sessions metric: %v", err)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	// Registering the same metrics twice must be tolerated.
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
