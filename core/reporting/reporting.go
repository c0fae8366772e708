// Package reporting derives aggregate series from committed schedule
// history. Everything here is a pure projection over sim.Sample slices.
package reporting

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/chargeflow/core/sim"
)

// TotalCurrent returns the aggregate charging current per period, in amps.
func TotalCurrent(history []sim.Sample) []float64 {
	out := make([]float64, len(history))
	for i, sample := range history {
		rates := make([]float64, 0, len(sample.Rates))
		for _, r := range sample.Rates {
			rates = append(rates, r)
		}
		out[i] = floats.Sum(rates)
	}
	return out
}

// PeakCurrent returns the maximum aggregate current over the run.
func PeakCurrent(history []sim.Sample) float64 {
	series := TotalCurrent(history)
	if len(series) == 0 {
		return 0
	}
	return floats.Max(series)
}

// EnergyByStation returns the energy delivered per station over the run.
// kwhPerAmpPeriod is the site's conversion factor (sim.Config.KWhPerAmpPeriod).
func EnergyByStation(history []sim.Sample, kwhPerAmpPeriod float64) map[string]float64 {
	out := make(map[string]float64)
	for _, sample := range history {
		for station, rate := range sample.Rates {
			out[station] += rate * kwhPerAmpPeriod
		}
	}
	return out
}

// UtilisationRatio returns, per period, the aggregate current as a fraction
// of the given capacity. A zero capacity yields a zero series.
func UtilisationRatio(history []sim.Sample, capacityA float64) []float64 {
	series := TotalCurrent(history)
	if capacityA <= 0 {
		return make([]float64, len(series))
	}
	floats.Scale(1/capacityA, series)
	return series
}
