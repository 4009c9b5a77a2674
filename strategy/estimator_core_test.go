package strategy

import "testing"

func greenLap(fuel, secs float64) Lap {
	return Lap{FuelUsed: fuel, Time: FromSecondsF64(secs), Condition: ConditionNone}
}

func yellowLap(fuel, secs float64) Lap {
	return Lap{FuelUsed: fuel, Time: FromSecondsF64(secs), Condition: ConditionYellow}
}

func TestGreenRateNoLapsNoDefault(t *testing.T) {
	e := NewLapRateEstimator(nil, nil)
	if _, ok := e.GreenRate(); ok {
		t.Fatal("expected no rate with no laps and no default")
	}
}

func TestGreenRateFallsBackBelowTwoLaps(t *testing.T) {
	def := rate(2.0, 90)
	e := NewLapRateEstimator(&def, nil)
	if r, ok := e.GreenRate(); !ok || r != def {
		t.Fatalf("expected default %v, got %v (%v)", def, r, ok)
	}
	e.Record(greenLap(1.8, 88))
	if r, ok := e.GreenRate(); !ok || r != def {
		t.Fatalf("with one live lap and a default present, expected default %v, got %v (%v)", def, r, ok)
	}
}

func TestGreenRateOneLapWinsWithoutDefault(t *testing.T) {
	e := NewLapRateEstimator(nil, nil)
	e.Record(greenLap(1.8, 88))
	r, ok := e.GreenRate()
	if !ok {
		t.Fatal("expected a rate from a single live lap with no default")
	}
	if r.Fuel != 1.8 {
		t.Errorf("fuel = %v, want 1.8", r.Fuel)
	}
}

func TestGreenRateAveragesLastFive(t *testing.T) {
	e := NewLapRateEstimator(nil, nil)
	for i := 0; i < 7; i++ {
		e.Record(greenLap(float64(i+1), 60))
	}
	r, ok := e.GreenRate()
	if !ok {
		t.Fatal("expected a rate")
	}
	// last five laps used 3,4,5,6,7 liters -> average 5.
	if r.Fuel != 5 {
		t.Errorf("fuel = %v, want 5", r.Fuel)
	}
}

func TestYellowRateDiscardsFirstLapOfEachRun(t *testing.T) {
	e := NewLapRateEstimator(nil, nil)
	e.Record(greenLap(2.0, 60))
	e.Record(yellowLap(1.5, 90)) // first yellow lap of the run, discarded
	e.Record(yellowLap(0.4, 70))
	e.Record(greenLap(2.0, 60))

	r, ok := e.YellowRate()
	if !ok {
		t.Fatal("expected a yellow rate")
	}
	if r.Fuel != 0.4 {
		t.Errorf("fuel = %v, want 0.4 (first yellow lap discarded)", r.Fuel)
	}
}

func TestYellowRateFallsBackWithNoFullYellowLap(t *testing.T) {
	def := rate(0.3, 95)
	e := NewLapRateEstimator(nil, &def)
	e.Record(yellowLap(1.0, 90)) // only a partial yellow lap observed
	r, ok := e.YellowRate()
	if !ok || r != def {
		t.Fatalf("expected default %v, got %v (%v)", def, r, ok)
	}
}

func TestYellowRateNoDefaultNoFullLap(t *testing.T) {
	e := NewLapRateEstimator(nil, nil)
	e.Record(yellowLap(1.0, 90))
	if _, ok := e.YellowRate(); ok {
		t.Fatal("expected no yellow rate")
	}
}

func TestTrailingYellowCount(t *testing.T) {
	e := NewLapRateEstimator(nil, nil)
	e.Record(greenLap(2.0, 60))
	e.Record(yellowLap(1.5, 90))
	e.Record(yellowLap(0.4, 70))
	if got := e.TrailingYellowCount(); got != 2 {
		t.Errorf("trailing yellow count = %d, want 2", got)
	}
	e.Record(greenLap(2.0, 60))
	if got := e.TrailingYellowCount(); got != 0 {
		t.Errorf("trailing yellow count = %d, want 0", got)
	}
}
