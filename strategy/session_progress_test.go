package strategy

import (
	"math"
	"testing"

	"github.com/psybedev/tracktic-strategy/telemetry"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestInterpolateCrossingTime(t *testing.T) {
	got := interpolateCrossingTime(0.98, 112.1, 0.02, 112.3)
	if !almostEqual(got, 112.2, 0.05) {
		t.Errorf("got %v, want ~112.2", got)
	}
	got = interpolateCrossingTime(0.98, 112.1, 0.02, 112.5)
	if !almostEqual(got, 112.3, 0.05) {
		t.Errorf("got %v, want ~112.3", got)
	}
}

func TestLapConditionYellow(t *testing.T) {
	start := telemetry.Frame{PitLocation: telemetry.PitLocationOnTrack}
	end := telemetry.Frame{PitLocation: telemetry.PitLocationOnTrack, Flags: telemetry.FlagYellow}
	c := lapCondition(start, end)
	if !c.Has(ConditionYellow) {
		t.Errorf("expected ConditionYellow, got %v", c)
	}
	if c.Has(ConditionPitted) {
		t.Errorf("did not expect ConditionPitted, got %v", c)
	}
}

func TestLapConditionPitted(t *testing.T) {
	start := telemetry.Frame{PitLocation: telemetry.PitLocationInPitStall}
	end := telemetry.Frame{PitLocation: telemetry.PitLocationOnTrack}
	c := lapCondition(start, end)
	if !c.Has(ConditionPitted) {
		t.Errorf("expected ConditionPitted, got %v", c)
	}
}

func TestLapConditionPlainGreen(t *testing.T) {
	start := telemetry.Frame{PitLocation: telemetry.PitLocationOnTrack}
	end := telemetry.Frame{PitLocation: telemetry.PitLocationOnTrack}
	c := lapCondition(start, end)
	if !c.IsEmpty() {
		t.Errorf("expected empty condition, got %v", c)
	}
}
