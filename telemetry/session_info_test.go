package telemetry

import "testing"

const sampleSessionInfo = `
WeekendInfo:
  TrackID: 219
  TrackDisplayName: Road America
  TrackConfigName: Full Course
DriverInfo:
  DriverCarFuelMaxLtr: 40.0
  DriverCarMaxFuelPct: 1.0
  DriverCarIdx: 0
  Drivers:
  - CarID: 144
    CarScreenName: Mazda MX-5 Cup
`

func TestParseSessionInfo(t *testing.T) {
	info, err := ParseSessionInfo(sampleSessionInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.TrackID != 219 {
		t.Errorf("TrackID = %d, want 219", info.TrackID)
	}
	if info.CarID != 144 {
		t.Errorf("CarID = %d, want 144", info.CarID)
	}
	if got := info.FuelTankSize(); got != 40.0 {
		t.Errorf("FuelTankSize = %v, want 40.0", got)
	}
}

func TestParseSessionInfoMissingTrackID(t *testing.T) {
	_, err := ParseSessionInfo(`
WeekendInfo:
  TrackDisplayName: Road America
DriverInfo:
  DriverCarIdx: 0
  Drivers:
  - CarID: 144
`)
	if err == nil {
		t.Fatal("expected an error for missing TrackID")
	}
}

func TestParseSessionInfoDriverIdxOutOfRange(t *testing.T) {
	_, err := ParseSessionInfo(`
WeekendInfo:
  TrackID: 1
  TrackDisplayName: Test Track
DriverInfo:
  DriverCarIdx: 3
  Drivers:
  - CarID: 144
`)
	if err == nil {
		t.Fatal("expected an error for out-of-range DriverCarIdx")
	}
}
