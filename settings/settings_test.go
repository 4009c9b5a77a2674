package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/psybedev/tracktic-strategy/strategy"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != strategy.DefaultUserSettings() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	want := strategy.UserSettings{
		MaxFuelSave: 0.2,
		MinFuel:     0.5,
		ExtraLaps:   1.0,
		ExtraFuel:   2.0,
		ClearTires:  true,
		TakeTires:   false,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
func TestLoadPartialFileKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	if err := os.WriteFile(path, []byte("max_fuel_save: 0.3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.MaxFuelSave != 0.3 {
		t.Errorf("MaxFuelSave = %v, want 0.3", got.MaxFuelSave)
	}
	if want := strategy.DefaultUserSettings().MinFuel; got.MinFuel != want {
		t.Errorf("MinFuel = %v, want default %v", got.MinFuel, want)
	}
}
