package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/chargeflow/core/sim"
)

func history() []sim.Sample {
	return []sim.Sample{
		{Period: 0, Rates: map[string]float64{"A": 24, "B": 16}},
		{Period: 1, Rates: map[string]float64{"A": 32}},
		{Period: 2, Rates: map[string]float64{}},
	}
}

func TestTotalCurrent(t *testing.T) {
	series := TotalCurrent(history())
	assert.Equal(t, []float64{40, 32, 0}, series)
}

func TestPeakCurrent(t *testing.T) {
	assert.Equal(t, 40.0, PeakCurrent(history()))
	assert.Equal(t, 0.0, PeakCurrent(nil))
}

func TestEnergyByStation(t *testing.T) {
	// 0.1 kWh per amp-period.
	energy := EnergyByStation(history(), 0.1)
	assert.InDelta(t, 5.6, energy["A"], 1e-9)
	assert.InDelta(t, 1.6, energy["B"], 1e-9)
}

func TestUtilisationRatio(t *testing.T) {
	ratio := UtilisationRatio(history(), 80)
	assert.InDelta(t, 0.5, ratio[0], 1e-9)
	assert.InDelta(t, 0.4, ratio[1], 1e-9)
	assert.InDelta(t, 0, ratio[2], 1e-9)

	assert.Equal(t, []float64{0, 0, 0}, UtilisationRatio(history(), 0))
}
