package strategy

import "math"

// Request is the input to Plan: the driver's current fuel state, the race
// end condition, and the rates to project forward.
type Request struct {
	FuelLeft    float64
	TankSize    float64
	MaxFuelSave float64
	MinFuel     float64
	YellowTogo  int
	Ends        RaceEnd
	Green       Rate
	Yellow      Rate
}

// Plan is a pure function from a Request to an optional Strategy. It never
// performs I/O and never retains state between calls.
//
// It walks a virtually infinite sequence of future lap rates - YellowTogo
// copies of Yellow followed by Green repeating forever - stopping as soon as
// the race-end condition is satisfied, and groups the walked laps into
// stints separated by required refuelings.
func Plan(req Request) (Strategy, bool) {
	if req.FuelLeft < 0 {
		panic("strategy: Plan called with negative FuelLeft")
	}
	if req.Green.Fuel <= 0 {
		panic("strategy: Plan called with non-positive Green.Fuel")
	}

	var stints []Stint
	var current Stint
	fuel := req.FuelLeft
	lapsAccumulated := 0
	timeAccumulated := Zero
	yellowRemaining := req.YellowTogo

	for {
		if raceEnded(req.Ends, lapsAccumulated, timeAccumulated) {
			break
		}
		var r Rate
		if yellowRemaining > 0 {
			r = req.Yellow
			yellowRemaining--
		} else {
			r = req.Green
		}

		if fuel < r.Fuel+req.MinFuel {
			if current.Laps > 0 {
				stints = append(stints, current)
			}
			current = Stint{}
			fuel = req.TankSize
		}

		current = current.add(r)
		fuel -= r.Fuel
		lapsAccumulated++
		timeAccumulated = timeAccumulated.Add(r.Time)
	}

	if current.Laps > 0 {
		stints = append(stints, current)
	}
	if len(stints) == 0 {
		return Strategy{}, false
	}

	stops := pitWindows(stints, req.TankSize, req.Green)
	fuelToSave := fuelToSave(stints, req.MaxFuelSave)

	return Strategy{
		Stints:     stints,
		Stops:      stops,
		FuelToSave: fuelToSave,
		Green:      req.Green,
		Yellow:     req.Yellow,
	}, true
}

// raceEnded applies the termination test BEFORE a lap is added: strict
// less-than for a lap count limit (the race ends at a lap boundary), and
// inclusive less-or-equal for a time limit (the lap during which time runs
// out is still counted).
func raceEnded(ends RaceEnd, lapsAccumulated int, timeAccumulated TimeSpan) bool {
	switch ends.Kind {
	case EndsWithLaps:
		return !(lapsAccumulated < ends.Laps)
	case EndsWithTime:
		return !timeAccumulated.LessOrEqual(ends.Time)
	case EndsWithLapsOrTime:
		return !(lapsAccumulated < ends.Laps && timeAccumulated.LessOrEqual(ends.Time))
	default:
		return true
	}
}

// pitWindows back-propagates pit windows from the end of the race: the last
// stint defines spare capacity that lets earlier stops be pulled forward.
func pitWindows(stints []Stint, tankSize float64, green Rate) []Pitstop {
	if len(stints) < 2 {
		return nil
	}
	fullStintLen := int(math.Floor(tankSize / green.Fuel))
	ext := fullStintLen - stints[len(stints)-1].Laps

	stops := make([]Pitstop, 0, len(stints)-1)
	runningOpen, runningClose := 0, 0
	for _, st := range stints[:len(stints)-1] {
		windowSize := ext
		if st.Laps < windowSize {
			windowSize = st.Laps
		}
		if windowSize < 0 {
			windowSize = 0
		}
		stops = append(stops, Pitstop{
			Open:  runningOpen + st.Laps - windowSize,
			Close: runningClose + st.Laps,
		})
		runningOpen += st.Laps - windowSize
		runningClose += st.Laps
		ext -= windowSize
	}
	return stops
}

// fuelToSave returns how much fuel saved across the stints before the last
// one would let the last pit stop be skipped entirely.
func fuelToSave(stints []Stint, maxFuelSave float64) float64 {
	total := 0.0
	for _, st := range stints {
		total += st.Fuel
	}
	saveCap := total * maxFuelSave
	last := stints[len(stints)-1].Fuel
	if last < saveCap {
		return last
	}
	return 0
}
