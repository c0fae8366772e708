package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/chargeflow/core/logger"
	"github.com/kilianp07/chargeflow/core/metrics"
	"github.com/kilianp07/chargeflow/core/model"
	"github.com/kilianp07/chargeflow/core/network"
	"github.com/kilianp07/chargeflow/core/scheduler"
	"github.com/kilianp07/chargeflow/internal/eventbus"
)

// Config holds the physical parameters of a simulated site.
type Config struct {
	// PeriodMinutes is the discrete time quantum of the simulation.
	PeriodMinutes int `json:"period_minutes"`
	// VoltageV converts charging rates (amps) into power.
	VoltageV float64 `json:"voltage_v"`
	// MaxPeriods caps a run as a safety net against endless feeds. Zero
	// means no cap.
	MaxPeriods int `json:"max_periods"`
}

// SetDefaults applies a 5-minute period at 208V, the usual commercial
// three-phase line voltage.
func (c *Config) SetDefaults() {
	if c.PeriodMinutes == 0 {
		c.PeriodMinutes = 5
	}
	if c.VoltageV == 0 {
		c.VoltageV = 208
	}
}

// Validate checks the physical parameters.
func (c Config) Validate() error {
	if c.PeriodMinutes <= 0 {
		return fmt.Errorf("period_minutes must be positive")
	}
	if c.VoltageV <= 0 {
		return fmt.Errorf("voltage_v must be positive")
	}
	if c.MaxPeriods < 0 {
		return fmt.Errorf("max_periods must not be negative")
	}
	return nil
}

// KWhPerAmpPeriod returns the energy delivered by one amp sustained over
// one period.
func (c Config) KWhPerAmpPeriod() float64 {
	return c.VoltageV * (float64(c.PeriodMinutes) / 60) / 1000
}

// ErrHorizonExceeded is returned when a run hits the configured period cap.
var ErrHorizonExceeded = errors.New("simulation exceeded max_periods")

// Simulator drives the discrete-event loop: each period it collects the
// active sessions, invokes the scheduling algorithm (or reuses the cached
// decision within its recompute window), applies the committed rates to
// vehicle state and advances time. Strictly single-threaded; a run either
// completes, stops cleanly between periods via the context, or halts on the
// first scheduler error.
type Simulator struct {
	cfg    Config
	alg    scheduler.Algorithm
	oracle *network.CountingOracle
	sink   metrics.Sink
	bus    *eventbus.Bus
	log    logger.Logger

	events []Event
	next   int

	period    int
	active    []*model.Session // arrival order
	cached    *model.Schedule
	cachedAge int
	decided   map[string]struct{} // session IDs covered by the cached decision

	decisions   int
	evaluations int
	delivered   float64
	unmet       float64
	peak        float64
	history     []Sample
}

// New builds a Simulator from its collaborators. The sink and bus may be
// nil; the event stream is drawn from the source once, up front.
func New(cfg Config, alg scheduler.Algorithm, oracle network.Oracle, src Source, sink metrics.Sink, bus *eventbus.Bus, log logger.Logger) (*Simulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}
	if alg == nil {
		return nil, errors.New("sim: nil algorithm")
	}
	if oracle == nil {
		return nil, errors.New("sim: nil oracle")
	}
	events, err := src.Events()
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Simulator{
		cfg:    cfg,
		alg:    alg,
		oracle: network.NewCountingOracle(oracle),
		sink:   sink,
		bus:    bus,
		log:    log,
		events: events,
	}, nil
}

// Run executes the loop until the event stream is drained and no session
// remains active. Cancellation is honoured between periods only: a decision
// always completes once started.
func (s *Simulator) Run(ctx context.Context) error {
	s.log.Infof("simulation started: %d events, period %dmin", len(s.events), s.cfg.PeriodMinutes)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.processEvents()
		if len(s.active) == 0 && s.next >= len(s.events) {
			break
		}
		if s.cfg.MaxPeriods > 0 && s.period >= s.cfg.MaxPeriods {
			return fmt.Errorf("%w at period %d", ErrHorizonExceeded, s.period)
		}
		if err := s.step(); err != nil {
			return err
		}
		s.advance()
	}
	s.log.Infof("simulation finished: %d periods, %d decisions, %.2f kWh delivered",
		s.period, s.decisions, s.delivered)
	return nil
}

// processEvents admits arrivals and applies explicit departures due at the
// current period.
func (s *Simulator) processEvents() {
	for s.next < len(s.events) && s.events[s.next].Period <= s.period {
		ev := s.events[s.next]
		s.next++
		switch ev.Kind {
		case EventArrival:
			sess := ev.Session
			if s.stationBusy(sess.StationID) {
				s.log.Warnf("station %s busy, dropping session %s", sess.StationID, sess.ID)
				continue
			}
			s.active = append(s.active, &sess)
			s.log.Debugf("session %s plugged in at %s (departure %d)", sess.ID, sess.StationID, sess.Departure)
		case EventDeparture:
			s.remove(func(sess *model.Session) bool { return sess.ID == ev.SessionID })
		}
	}
}

func (s *Simulator) stationBusy(stationID string) bool {
	for _, sess := range s.active {
		if sess.StationID == stationID {
			return true
		}
	}
	return false
}

// step runs Collect, Decide-or-Reuse and Apply for the current period.
func (s *Simulator) step() error {
	if len(s.active) == 0 {
		// Idle gap: nothing to decide, and a stale cache must not leak
		// into the next busy stretch.
		s.cached = nil
		s.decided = nil
		s.history = append(s.history, Sample{Period: s.period, Rates: map[string]float64{}})
		return nil
	}

	collect := make([]model.Session, len(s.active))
	for i, sess := range s.active {
		collect[i] = *sess
	}

	if s.cached == nil || s.cachedAge >= s.alg.MaxRecompute() {
		start := time.Now()
		s.oracle.Reset()
		sched, err := s.alg.Schedule(collect, s.oracle)
		if err != nil {
			return fmt.Errorf("decision at period %d: %w", s.period, err)
		}
		if err := sched.Validate(collect); err != nil {
			return fmt.Errorf("decision at period %d: %w", s.period, err)
		}
		s.cached = sched
		s.cachedAge = 0
		s.decided = make(map[string]struct{}, len(collect))
		for _, sess := range collect {
			s.decided[sess.ID] = struct{}{}
		}
		s.decisions++
		s.evaluations += s.oracle.Evaluations()
		decision := metrics.DecisionEvent{
			Period:         s.period,
			ActiveSessions: len(collect),
			Evaluations:    s.oracle.Evaluations(),
			Duration:       time.Since(start),
			Time:           time.Now(),
		}
		if named, ok := s.alg.(interface{ Name() string }); ok {
			decision.Algorithm = named.Name()
		}
		if err := s.sink.RecordDecision(decision); err != nil {
			s.log.Warnf("record decision: %v", err)
		}
	}

	s.apply()
	return nil
}

// apply reads each active station's rate for the current offset, throttles
// it to the energy still owed and charges the vehicle.
func (s *Simulator) apply() {
	perAmp := s.cfg.KWhPerAmpPeriod()
	rates := make(map[string]float64, len(s.active))
	totals := make([]float64, 0, len(s.active))
	for _, sess := range s.active {
		// A session that arrived after the decision is not covered by it.
		// Its station may still carry the previous occupant's rate, which
		// could exceed the newcomer's ceiling, so it waits at zero until
		// the next recompute.
		rate := 0.0
		if _, ok := s.decided[sess.ID]; ok {
			rate = s.cached.RateAt(sess.StationID, s.cachedAge)
		}
		energy := rate * perAmp
		if remaining := sess.RemainingKWh(); energy > remaining {
			energy = remaining
			if perAmp > 0 {
				rate = energy / perAmp
			}
		}
		sess.EnergyDeliveredKWh += energy
		s.delivered += energy
		rates[sess.StationID] = rate
		totals = append(totals, rate)
	}

	total := floats.Sum(totals)
	if total > s.peak {
		s.peak = total
	}
	s.history = append(s.history, Sample{Period: s.period, Rates: rates})

	ev := metrics.PeriodEvent{
		Period:         s.period,
		ActiveSessions: len(s.active),
		TotalCurrentA:  total,
		Rates:          rates,
		Time:           time.Now(),
	}
	if err := s.sink.RecordPeriod(ev); err != nil {
		s.log.Warnf("record period: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// advance moves to the next period and drops departed or finished sessions.
func (s *Simulator) advance() {
	s.period++
	s.cachedAge++
	s.remove(func(sess *model.Session) bool {
		if sess.Departure <= s.period {
			s.unmet += sess.RemainingKWh()
			s.log.Debugf("session %s departed with %.2f kWh unmet", sess.ID, sess.RemainingKWh())
			return true
		}
		if sess.Finished() {
			s.log.Debugf("session %s fully charged", sess.ID)
			return true
		}
		return false
	})
}

func (s *Simulator) remove(match func(*model.Session) bool) {
	kept := s.active[:0]
	for _, sess := range s.active {
		if !match(sess) {
			kept = append(kept, sess)
		}
	}
	s.active = kept
}

// History returns the committed (time, per-station rate) samples.
func (s *Simulator) History() []Sample { return s.history }

// Summary aggregates the finished run.
func (s *Simulator) Summary() Summary {
	return Summary{
		Periods:            s.period,
		Decisions:          s.decisions,
		Evaluations:        s.evaluations,
		EnergyDeliveredKWh: s.delivered,
		UnmetDemandKWh:     s.unmet,
		PeakCurrentA:       s.peak,
	}
}
