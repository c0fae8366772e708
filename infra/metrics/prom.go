package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/chargeflow/core/metrics"
)

// PromSink records simulation events in Prometheus metrics.
type PromSink struct {
	decisions   prometheus.Counter
	evaluations prometheus.Histogram
	duration    prometheus.Histogram
	current     prometheus.Gauge
	sessions    prometheus.Gauge
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The exposition server is started separately with StartPromServer.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_decisions_total",
		Help: "Total number of scheduling decisions",
	})
	evaluations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feasibility_evaluations_per_decision",
		Help:    "Feasibility oracle calls spent on one scheduling decision",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduling_decision_seconds",
		Help:    "Wall time of one scheduling decision",
		Buckets: prometheus.DefBuckets,
	})
	current := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aggregate_current_amps",
		Help: "Aggregate charging current committed for the current period",
	})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Number of sessions in the active set",
	})

	for _, c := range []prometheus.Collector{decisions, evaluations, duration, current, sessions} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &PromSink{
		decisions:   decisions,
		evaluations: evaluations,
		duration:    duration,
		current:     current,
		sessions:    sessions,
	}, nil
}

// RecordDecision updates the decision counter and cost histograms.
func (s *PromSink) RecordDecision(ev coremetrics.DecisionEvent) error {
	s.decisions.Inc()
	s.evaluations.Observe(float64(ev.Evaluations))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordPeriod updates the per-period gauges.
func (s *PromSink) RecordPeriod(ev coremetrics.PeriodEvent) error {
	s.current.Set(ev.TotalCurrentA)
	s.sessions.Set(float64(ev.ActiveSessions))
	return nil
}

// StartPromServer exposes /metrics on the given port until the context is
// cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
