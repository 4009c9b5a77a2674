package strategy

import "fmt"

// Pitstop is a planned pit window expressed as lap counts from now.
// Open == 0 means the window is already open; Close <= 0 means it is overdue.
type Pitstop struct {
	Open  int
	Close int
}

// IsOpen reports whether the window is currently open.
func (p Pitstop) IsOpen() bool { return p.Open == 0 }

// String renders "OPEN N Laps" while the window is open, else "open-close Laps".
func (p Pitstop) String() string {
	if p.IsOpen() {
		return fmt.Sprintf("OPEN %d Laps", p.Close)
	}
	return fmt.Sprintf("%d-%d Laps", p.Open, p.Close)
}

// Stint is a contiguous run of laps between fuelings.
type Stint struct {
	Laps int
	Fuel float64
	Time TimeSpan
}

// add appends one lap's worth of rate to the stint.
func (s Stint) add(r Rate) Stint {
	return Stint{
		Laps: s.Laps + 1,
		Fuel: s.Fuel + r.Fuel,
		Time: s.Time.Add(r.Time),
	}
}

// Strategy is a complete plan: a stint list, the pit windows between them,
// the fuel-save opportunity against the last stop, and the rates it was
// built from.
type Strategy struct {
	Stints     []Stint
	Stops      []Pitstop
	FuelToSave float64
	Green      Rate
	Yellow     Rate
}

// TotalLaps sums the laps of every stint.
func (s Strategy) TotalLaps() int {
	total := 0
	for _, st := range s.Stints {
		total += st.Laps
	}
	return total
}

// TotalFuel sums the fuel of every stint.
func (s Strategy) TotalFuel() float64 {
	total := 0.0
	for _, st := range s.Stints {
		total += st.Fuel
	}
	return total
}

// TotalTime sums the time of every stint.
func (s Strategy) TotalTime() TimeSpan {
	total := Zero
	for _, st := range s.Stints {
		total = total.Add(st.Time)
	}
	return total
}

// Laps returns the per-stint lap counts, the shape used by the test vectors.
func (s Strategy) Laps() []int {
	out := make([]int, len(s.Stints))
	for i, st := range s.Stints {
		out[i] = st.Laps
	}
	return out
}

// FuelTarget returns the per-lap fuel consumption the driver must hit, up to
// but not including the last stint, to realize FuelToSave. Zero when no
// saving is in play.
func (s Strategy) FuelTarget() float64 {
	if s.FuelToSave <= 0 || len(s.Stints) == 0 {
		return 0
	}
	lastStintIdx := len(s.Stints) - 1
	lapsBeforeLast := s.TotalLaps() - s.Stints[lastStintIdx].Laps
	if lapsBeforeLast <= 0 {
		return 0
	}
	fuelBeforeLast := s.TotalFuel() - s.Stints[lastStintIdx].Fuel
	return (fuelBeforeLast - s.FuelToSave) / float64(lapsBeforeLast)
}

// RaceEndKind tags which form a RaceEnd takes.
type RaceEndKind int

const (
	// EndsWithLaps ends the race after a fixed lap count.
	EndsWithLaps RaceEndKind = iota
	// EndsWithTime ends the race after a fixed time.
	EndsWithTime
	// EndsWithLapsOrTime ends the race at whichever of laps/time comes first.
	EndsWithLapsOrTime
)

// RaceEnd is the tagged union describing how a race finishes.
type RaceEnd struct {
	Kind RaceEndKind
	Laps int
	Time TimeSpan
}

// NewEndsWithLaps builds a laps-limited RaceEnd.
func NewEndsWithLaps(laps int) RaceEnd { return RaceEnd{Kind: EndsWithLaps, Laps: laps} }

// NewEndsWithTime builds a time-limited RaceEnd.
func NewEndsWithTime(t TimeSpan) RaceEnd { return RaceEnd{Kind: EndsWithTime, Time: t} }

// NewEndsWithLapsOrTime builds a RaceEnd that finishes at whichever limit
// is hit first.
func NewEndsWithLapsOrTime(laps int, t TimeSpan) RaceEnd {
	return RaceEnd{Kind: EndsWithLapsOrTime, Laps: laps, Time: t}
}
