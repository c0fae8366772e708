package model

import "testing"

func TestSessionRemaining(t *testing.T) {
	s := Session{EnergyDemandKWh: 10, EnergyDeliveredKWh: 4}
	if r := s.RemainingKWh(); r != 6 {
		t.Fatalf("remaining %.1f", r)
	}
	s.EnergyDeliveredKWh = 12
	if r := s.RemainingKWh(); r != 0 {
		t.Fatalf("over-delivery not clamped: %.1f", r)
	}
	if !s.Finished() {
		t.Fatalf("expected finished")
	}
}

func TestSessionActiveAt(t *testing.T) {
	s := Session{Arrival: 2, Departure: 5}
	cases := []struct {
		period int
		want   bool
	}{
		{1, false}, {2, true}, {4, true}, {5, false},
	}
	for _, c := range cases {
		if got := s.ActiveAt(c.period); got != c.want {
			t.Fatalf("period %d: got %v", c.period, got)
		}
	}
}
