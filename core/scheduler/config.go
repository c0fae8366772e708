package scheduler

import (
	"fmt"

	"github.com/kilianp07/chargeflow/core/logger"
)

// Policy and search strategy names accepted in configuration.
const (
	PolicyEDF          = "edf"
	PolicyLLF          = "llf"
	PolicyUncontrolled = "uncontrolled"

	SearchLinear    = "linear"
	SearchBisection = "bisection"
)

// Config selects and tunes the scheduling algorithm. Values are immutable
// once the algorithm is constructed.
type Config struct {
	// Policy selects the session ordering: "edf", "llf" or "uncontrolled".
	Policy string `json:"policy"`
	// Search selects the rate search strategy: "linear" or "bisection".
	Search string `json:"search"`
	// IncrementA is the step of the linear search, in amps.
	IncrementA float64 `json:"increment_a"`
	// ToleranceA is the termination width of the bisection search, in amps.
	ToleranceA float64 `json:"tolerance_a"`
	// MaxRecompute is how many periods one decision may be reused.
	MaxRecompute int `json:"max_recompute"`
}

// SetDefaults applies the reference policy and granularities.
func (c *Config) SetDefaults() {
	if c.Policy == "" {
		c.Policy = PolicyEDF
	}
	if c.Search == "" {
		c.Search = SearchLinear
	}
	if c.IncrementA == 0 {
		c.IncrementA = DefaultIncrementA
	}
	if c.ToleranceA == 0 {
		c.ToleranceA = DefaultToleranceA
	}
	if c.MaxRecompute == 0 {
		c.MaxRecompute = 1
	}
}

// Validate checks the selected names and numeric ranges.
func (c Config) Validate() error {
	switch c.Policy {
	case PolicyEDF, PolicyLLF, PolicyUncontrolled:
	default:
		return fmt.Errorf("unknown policy %q", c.Policy)
	}
	switch c.Search {
	case SearchLinear, SearchBisection:
	default:
		return fmt.Errorf("unknown search strategy %q", c.Search)
	}
	if c.IncrementA < 0 {
		return fmt.Errorf("increment_a must be positive")
	}
	if c.ToleranceA < 0 {
		return fmt.Errorf("tolerance_a must be positive")
	}
	if c.MaxRecompute < 1 {
		return fmt.Errorf("max_recompute must be at least 1")
	}
	return nil
}

// New builds the configured algorithm. kwhPerAmpPeriod is the site's energy
// conversion factor used by the least-laxity order.
func New(c Config, kwhPerAmpPeriod float64, log logger.Logger) (Algorithm, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Policy == PolicyUncontrolled {
		return UncontrolledAlgorithm{}, nil
	}

	var order Order
	switch c.Policy {
	case PolicyEDF:
		order = EarliestDeadlineFirst
	case PolicyLLF:
		order = NewLeastLaxityFirst(kwhPerAmpPeriod)
	}

	var search SearchStrategy
	switch c.Search {
	case SearchLinear:
		search = LinearDecrement{IncrementA: c.IncrementA}
	case SearchBisection:
		search = Bisection{ToleranceA: c.ToleranceA}
	}
	return NewSortedAlgorithm(order, search, c.MaxRecompute, log)
}
