package strategy

import "time"

// AmountLeft is a (fuel, laps, time) triple describing what remains, either
// in the car or in the race.
type AmountLeft struct {
	Fuel float64
	Laps float64
	Time TimeSpan
}

// Estimation is the boundary snapshot the core produces once per tick (§4.4).
type Estimation struct {
	Connected         bool
	Car               AmountLeft
	Race              AmountLeft
	RaceLapsEstimated bool
	RaceTimeEstimated bool
	FuelLastLap       float64
	Green             Rate
	Stops             int
	NextStop          *Pitstop
	FuelToSave        float64
	SaveTarget        float64
	TrackTemp         float64
	StartTrackTemp    float64
	WallClock         time.Time
}

// applyStrategy overwrites the strategy-derived fields of an Estimation from
// a freshly computed Strategy, per §4.6/"strat_to_result" in the design
// notes.
func applyStrategy(e *Estimation, s Strategy) {
	e.FuelToSave = s.FuelToSave
	if len(s.Stops) == 0 {
		e.NextStop = nil
	} else {
		stop := s.Stops[0]
		e.NextStop = &stop
	}
	e.Stops = len(s.Stops)
	e.Green = s.Green
	e.Race.Laps = float64(s.TotalLaps())
	e.Race.Fuel = s.TotalFuel()
	e.Race.Time = s.TotalTime()
	e.SaveTarget = s.FuelTarget()
}
