package network

import "github.com/kilianp07/chargeflow/core/model"

// CountingOracle wraps an Oracle and counts feasibility evaluations.
// Oracle calls dominate scheduling latency, so the count is the natural
// cost measure for comparing search strategies. Not safe for concurrent
// use; scheduling decisions are strictly sequential.
type CountingOracle struct {
	Oracle
	evals int
}

// NewCountingOracle wraps the given oracle.
func NewCountingOracle(o Oracle) *CountingOracle {
	return &CountingOracle{Oracle: o}
}

// IsFeasible delegates to the wrapped oracle and increments the counter.
func (c *CountingOracle) IsFeasible(s *model.Schedule, offset int) bool {
	c.evals++
	return c.Oracle.IsFeasible(s, offset)
}

// Evaluations returns the number of feasibility checks since the last reset.
func (c *CountingOracle) Evaluations() int { return c.evals }

// Reset clears the counter, typically between decisions.
func (c *CountingOracle) Reset() { c.evals = 0 }
