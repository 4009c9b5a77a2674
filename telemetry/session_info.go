package telemetry

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// sessionInfoDoc mirrors the subset of the simulator's SessionInfo YAML
// blob the core needs (§6). Field names follow the wire format exactly so
// yaml.v3 can unmarshal without custom tags beyond casing.
type sessionInfoDoc struct {
	WeekendInfo struct {
		TrackID            int64  `yaml:"TrackID"`
		TrackDisplayName   string `yaml:"TrackDisplayName"`
		TrackConfigName    string `yaml:"TrackConfigName"`
	} `yaml:"WeekendInfo"`
	DriverInfo struct {
		DriverCarFuelMaxLtr float64 `yaml:"DriverCarFuelMaxLtr"`
		DriverCarMaxFuelPct float64 `yaml:"DriverCarMaxFuelPct"`
		DriverCarIdx        int     `yaml:"DriverCarIdx"`
		Drivers             []struct {
			CarID          int64  `yaml:"CarID"`
			CarScreenName  string `yaml:"CarScreenName"`
		} `yaml:"Drivers"`
	} `yaml:"DriverInfo"`
}

// ParseSessionInfo parses the simulator's YAML session-attach blob into a
// SessionInfo record. Required fields missing or mistyped yield an error;
// TrackConfigName is optional and defaults to "".
func ParseSessionInfo(raw string) (SessionInfo, error) {
	var doc sessionInfoDoc
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return SessionInfo{}, fmt.Errorf("telemetry: parse session info: %w", err)
	}
	if doc.WeekendInfo.TrackID == 0 {
		return SessionInfo{}, fmt.Errorf("telemetry: session info missing WeekendInfo.TrackID")
	}
	if doc.WeekendInfo.TrackDisplayName == "" {
		return SessionInfo{}, fmt.Errorf("telemetry: session info missing WeekendInfo.TrackDisplayName")
	}
	if doc.DriverInfo.DriverCarIdx < 0 || doc.DriverInfo.DriverCarIdx >= len(doc.DriverInfo.Drivers) {
		return SessionInfo{}, fmt.Errorf("telemetry: session info DriverCarIdx %d out of range (%d drivers)",
			doc.DriverInfo.DriverCarIdx, len(doc.DriverInfo.Drivers))
	}
	driver := doc.DriverInfo.Drivers[doc.DriverInfo.DriverCarIdx]
	if driver.CarID == 0 {
		return SessionInfo{}, fmt.Errorf("telemetry: session info missing driver CarID")
	}
	if driver.CarScreenName == "" {
		return SessionInfo{}, fmt.Errorf("telemetry: session info missing driver CarScreenName")
	}
	if doc.DriverInfo.DriverCarFuelMaxLtr == 0 {
		return SessionInfo{}, fmt.Errorf("telemetry: session info missing DriverInfo.DriverCarFuelMaxLtr")
	}
	if doc.DriverInfo.DriverCarMaxFuelPct == 0 {
		return SessionInfo{}, fmt.Errorf("telemetry: session info missing DriverInfo.DriverCarMaxFuelPct")
	}

	return SessionInfo{
		TrackID:             doc.WeekendInfo.TrackID,
		TrackDisplayName:    doc.WeekendInfo.TrackDisplayName,
		TrackConfigName:     doc.WeekendInfo.TrackConfigName,
		DriverCarFuelMaxLtr: doc.DriverInfo.DriverCarFuelMaxLtr,
		DriverCarMaxFuelPct: doc.DriverInfo.DriverCarMaxFuelPct,
		CarID:               driver.CarID,
		CarName:             driver.CarScreenName,
	}, nil
}
