package network

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/chargeflow/core/model"
)

// feasibilityTol absorbs floating point noise when comparing aggregate
// currents against constraint limits.
const feasibilityTol = 1e-6

// Constraint is one shared current limit over a set of stations. The
// aggregate magnitude |sum coeff*rate| must stay below LimitA.
type Constraint struct {
	Name         string             `json:"name"`
	LimitA       float64            `json:"limit_a"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// ConstraintSet is an Oracle over linear current constraints. Limits are
// non-negative and constraints are linear, which guarantees the zero
// baseline and monotonicity invariants by construction.
type ConstraintSet struct {
	stations []string
	index    map[string]int
	pilots   map[string]float64
	names    []string
	matrix   *mat.Dense
	limits   []float64
}

// NewConstraintSet builds the oracle from per-station pilot ceilings and a
// list of constraints. Every station referenced by a constraint must have a
// pilot entry, pilots must be non-negative and limits must be non-negative.
func NewConstraintSet(pilots map[string]float64, constraints []Constraint) (*ConstraintSet, error) {
	if len(pilots) == 0 {
		return nil, fmt.Errorf("constraint set: no stations")
	}
	stations := make([]string, 0, len(pilots))
	for id, p := range pilots {
		if p < 0 {
			return nil, fmt.Errorf("constraint set: negative pilot for station %s", id)
		}
		stations = append(stations, id)
	}
	sort.Strings(stations)
	index := make(map[string]int, len(stations))
	for i, id := range stations {
		index[id] = i
	}

	names := make([]string, len(constraints))
	limits := make([]float64, len(constraints))
	matrix := mat.NewDense(maxInt(len(constraints), 1), len(stations), nil)
	for i, c := range constraints {
		if c.LimitA < 0 {
			return nil, fmt.Errorf("constraint %s: negative limit", c.Name)
		}
		for id, coeff := range c.Coefficients {
			j, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("constraint %s: unknown station %s", c.Name, id)
			}
			matrix.Set(i, j, coeff)
		}
		names[i] = c.Name
		limits[i] = c.LimitA
	}

	cp := make(map[string]float64, len(pilots))
	for id, p := range pilots {
		cp[id] = p
	}
	return &ConstraintSet{
		stations: stations,
		index:    index,
		pilots:   cp,
		names:    names,
		matrix:   matrix,
		limits:   limits,
	}, nil
}

// IsFeasible evaluates every constraint against the rates planned at the
// given offset.
func (c *ConstraintSet) IsFeasible(s *model.Schedule, offset int) bool {
	return len(c.violations(s, offset, true)) == 0
}

// Violations returns the names of the constraints violated at the given
// offset. Diagnostics only; schedulers rely solely on IsFeasible.
func (c *ConstraintSet) Violations(s *model.Schedule, offset int) []string {
	return c.violations(s, offset, false)
}

func (c *ConstraintSet) violations(s *model.Schedule, offset int, firstOnly bool) []string {
	if len(c.limits) == 0 {
		return nil
	}
	x := mat.NewVecDense(len(c.stations), nil)
	for i, id := range c.stations {
		x.SetVec(i, s.RateAt(id, offset))
	}
	var y mat.VecDense
	y.MulVec(c.matrix, x)

	var out []string
	for i, limit := range c.limits {
		if math.Abs(y.AtVec(i)) > limit+feasibilityTol {
			out = append(out, c.names[i])
			if firstOnly {
				return out
			}
		}
	}
	return out
}

// MaxPilotSignal returns the pilot ceiling for the station, or 0 for
// unknown stations.
func (c *ConstraintSet) MaxPilotSignal(stationID string) float64 {
	return c.pilots[stationID]
}

// Stations returns the station identifiers in column order.
func (c *ConstraintSet) Stations() []string {
	out := make([]string, len(c.stations))
	copy(out, c.stations)
	return out
}

// AggregateCurrent returns the magnitude seen by each named constraint at
// the given offset.
func (c *ConstraintSet) AggregateCurrent(s *model.Schedule, offset int) map[string]float64 {
	out := make(map[string]float64, len(c.names))
	if len(c.limits) == 0 {
		return out
	}
	x := mat.NewVecDense(len(c.stations), nil)
	for i, id := range c.stations {
		x.SetVec(i, s.RateAt(id, offset))
	}
	var y mat.VecDense
	y.MulVec(c.matrix, x)
	for i, name := range c.names {
		out[name] = math.Abs(y.AtVec(i))
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
