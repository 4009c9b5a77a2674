package strategy

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds configuration for an Estimator instance and its adapters.
type Config struct {
	// PollInterval is how often the external driver is expected to call
	// Estimator.Update. Informational only; the core never sleeps on it.
	PollInterval time.Duration `json:"poll_interval"`

	// HistoryDSN is the data source name passed to the History
	// implementation (e.g. a sqlite file path).
	HistoryDSN string `json:"history_dsn"`

	// HistoryLookback is the number of prior laps to average for historical
	// defaults. history.Repository.AverageRate does not read it and always
	// averages the five most recent matching laps.
	HistoryLookback int `json:"history_lookback"`

	// Settings carries the user-tunable fields from the settings file
	// (§6), loaded once and passed into SessionProgress.Update each tick.
	Settings UserSettings `json:"settings"`
}

// UserSettings are the small set of user-tunable knobs read from the
// settings file (§6): max_fuel_save, min_fuel, extra_laps, extra_fuel,
// clear_tires, take_tires.
type UserSettings struct {
	MaxFuelSave float64 `yaml:"max_fuel_save" json:"max_fuel_save"`
	MinFuel     float64 `yaml:"min_fuel" json:"min_fuel"`
	ExtraLaps   float64 `yaml:"extra_laps" json:"extra_laps"`
	ExtraFuel   float64 `yaml:"extra_fuel" json:"extra_fuel"`
	ClearTires  bool    `yaml:"clear_tires" json:"clear_tires"`
	TakeTires   bool    `yaml:"take_tires" json:"take_tires"`
}

// DefaultUserSettings returns the defaults named by §6: {0.15, 0.2, 2.0,
// 1.0, false, false}.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		MaxFuelSave: 0.15,
		MinFuel:     0.2,
		ExtraLaps:   2.0,
		ExtraFuel:   1.0,
		ClearTires:  false,
		TakeTires:   false,
	}
}

// DefaultConfig returns sensible defaults for an Estimator deployment.
func DefaultConfig() *Config {
	return &Config{
		PollInterval:    100 * time.Millisecond,
		HistoryDSN:      "laps.db",
		HistoryLookback: 5,
		Settings:        DefaultUserSettings(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("strategy: poll_interval must be positive")
	}
	if c.HistoryLookback <= 0 {
		return fmt.Errorf("strategy: history_lookback must be positive")
	}
	if c.Settings.MaxFuelSave < 0 || c.Settings.MaxFuelSave > 1 {
		return fmt.Errorf("strategy: settings.max_fuel_save must be in [0,1]")
	}
	if c.Settings.MinFuel < 0 {
		return fmt.Errorf("strategy: settings.min_fuel must be non-negative")
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ToJSON serializes the Config to JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

// FromJSON deserializes JSON into the Config.
func (c *Config) FromJSON(data []byte) error {
	return json.Unmarshal(data, c)
}
