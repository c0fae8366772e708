package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/chargeflow/core/metrics"
)

func TestInfluxSink_RecordDecision(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(coremetrics.Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	})
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.DecisionEvent{
		Period:         2,
		Algorithm:      "sorted_edf",
		ActiveSessions: 3,
		Evaluations:    14,
		Duration:       1500 * time.Microsecond,
		Time:           now,
	}
	if err := sink.RecordDecision(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("scheduling_decision").
		AddTag("period", "2").
		AddTag("algorithm", "sorted_edf").
		AddField("active_sessions", 3).
		AddField("evaluations", 14).
		AddField("duration_ms", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestInfluxSink_RecordPeriod(t *testing.T) {
	var lines []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		lines = append(lines, strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(coremetrics.Config{InfluxURL: srv.URL, InfluxOrg: "org", InfluxBucket: "bucket"})
	defer sink.Close()

	ev := coremetrics.PeriodEvent{
		Period:         0,
		ActiveSessions: 1,
		TotalCurrentA:  24.0004,
		Rates:          map[string]float64{"A": 24.0004},
		Time:           time.Now(),
	}
	if err := sink.RecordPeriod(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	// One committed_rate point plus the site_load point.
	if len(lines) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "committed_rate,") {
		t.Errorf("unexpected first point: %s", lines[0])
	}
	if !strings.Contains(lines[0], "rate_a=24") {
		t.Errorf("rate not rounded to 3 decimals: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "site_load,") {
		t.Errorf("unexpected second point: %s", lines[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(coremetrics.Config{
		InfluxURL:    srv.URL + "/api/v2/write",
		InfluxToken:  "tok",
		InfluxOrg:    "org",
		InfluxBucket: "bucket",
	})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
