// Package app wires configuration into a runnable simulation service.
package app

import (
	"context"
	"fmt"

	"github.com/kilianp07/chargeflow/config"
	coremetrics "github.com/kilianp07/chargeflow/core/metrics"
	"github.com/kilianp07/chargeflow/core/reporting"
	"github.com/kilianp07/chargeflow/core/scheduler"
	"github.com/kilianp07/chargeflow/core/sim"
	"github.com/kilianp07/chargeflow/infra/logger"
	"github.com/kilianp07/chargeflow/infra/metrics"
	"github.com/kilianp07/chargeflow/infra/telemetry"
	"github.com/kilianp07/chargeflow/internal/eventbus"
)

// Service orchestrates one simulation run with its sinks and telemetry.
type Service struct {
	sim         *sim.Simulator
	cfg         *config.Config
	bus         *eventbus.Bus
	publisher   *telemetry.Publisher
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	oracle, err := cfg.Site.BuildOracle()
	if err != nil {
		return nil, fmt.Errorf("site oracle: %w", err)
	}
	alg, err := scheduler.New(cfg.Scheduler, cfg.Simulation.KWhPerAmpPeriod(), logger.New("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	src, err := cfg.Source.Build(cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("event source: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	var pub *telemetry.Publisher
	if cfg.Telemetry.Enabled {
		pub, err = telemetry.NewPublisher(cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
	}

	simulator, err := sim.New(cfg.Simulation, alg, oracle, src, sink, bus, logger.New("sim"))
	if err != nil {
		return nil, err
	}

	return &Service{
		sim:         simulator,
		cfg:         cfg,
		bus:         bus,
		publisher:   pub,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run executes the simulation and logs the run summary.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.publisher != nil {
		go s.publisher.Run(ctx, s.bus)
	}

	err := s.sim.Run(ctx)
	s.bus.Close()
	if err != nil {
		return err
	}

	sum := s.sim.Summary()
	s.log.Infof("run summary: %d periods, %d decisions, %d evaluations", sum.Periods, sum.Decisions, sum.Evaluations)
	s.log.Infof("energy delivered %.2f kWh, unmet %.2f kWh, peak %.1f A (%.1f A by projection)",
		sum.EnergyDeliveredKWh, sum.UnmetDemandKWh, sum.PeakCurrentA, reporting.PeakCurrent(s.sim.History()))
	return nil
}

// History exposes the committed rate history of the finished run.
func (s *Service) History() []sim.Sample { return s.sim.History() }

// Close releases the telemetry connection.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	return nil
}
