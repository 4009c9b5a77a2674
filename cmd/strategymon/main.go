// Command strategymon is the process bootstrap: it wires a live telemetry
// source, a SQLite-backed lap history, and the user's settings file into an
// Estimator and ticks it at the simulator's natural refresh cadence. The
// dashboard that renders Estimation values is out of scope here; this
// program only produces them.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/psybedev/tracktic-strategy/history"
	"github.com/psybedev/tracktic-strategy/settings"
	"github.com/psybedev/tracktic-strategy/strategy"
	"github.com/psybedev/tracktic-strategy/telemetry"
)

func main() {
	dsn := flag.String("history", "laps.db", "path to the lap history database")
	settingsPath := flag.String("settings", settings.DefaultPath, "path to the user settings file")
	flag.Parse()

	userSettings, err := settings.Load(*settingsPath)
	if err != nil {
		log.Printf("strategymon: %v, using defaults", err)
		userSettings = strategy.DefaultUserSettings()
	}

	store, err := history.Open(*dsn)
	if err != nil {
		log.Fatalf("strategymon: open history: %v", err)
	}
	defer store.Close()

	source := telemetry.NewResilientSource(telemetry.NewIracingSource(), telemetry.DefaultCircuitBreakerConfig())
	estimator := strategy.NewEstimator(source, store)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var out strategy.Estimation
	for range ticker.C {
		if err := estimator.Update(userSettings, &out); err != nil {
			log.Printf("strategymon: %v", err)
			continue
		}
		if !out.Connected {
			continue
		}
		log.Printf("fuel=%.2f laps_left=%.1f next_stop=%v save=%.2f",
			out.Car.Fuel, out.Race.Laps, out.NextStop, out.FuelToSave)
	}
}
