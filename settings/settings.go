// Package settings loads and saves the user-tunable fuel-strategy knobs
// from a hand-edited YAML file on disk, independent of the simulator and
// the live estimator.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/psybedev/tracktic-strategy/strategy"
)

// DefaultPath is the settings file path cmd/strategymon uses when none is
// given on its command line; Load itself always takes an explicit path.
const DefaultPath = "settings.yml"

// Load reads and parses the settings file at path. A missing file is not an
// error: the caller gets the documented defaults back along with a nil
// error, matching a fresh install with no settings file yet written.
func Load(path string) (strategy.UserSettings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return strategy.DefaultUserSettings(), nil
	}
	if err != nil {
		return strategy.UserSettings{}, strategy.NewEstimatorError(
			strategy.ErrorKindSettingsLoadFailure, fmt.Sprintf("read %s", path), err)
	}

	out := strategy.DefaultUserSettings()
	if err := yaml.Unmarshal(data, &out); err != nil {
		return strategy.UserSettings{}, strategy.NewEstimatorError(
			strategy.ErrorKindSettingsLoadFailure, fmt.Sprintf("parse %s", path), err)
	}
	return out, nil
}

// Save writes settings to path as pretty-printed YAML, overwriting any
// existing file.
func Save(path string, s strategy.UserSettings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", path, err)
	}
	return nil
}
