package strategy

// Rate is a per-lap fuel/time pair, the unit the planner and estimator both
// operate in.
type Rate struct {
	Fuel float64
	Time TimeSpan
}

// ZeroRate is the default Rate value.
var ZeroRate = Rate{}

// Add combines a Rate accumulator with a completed Lap, used while averaging
// a run of laps into a single rate.
func (r Rate) Add(l Lap) Rate {
	return Rate{
		Fuel: r.Fuel + l.FuelUsed,
		Time: r.Time.Add(l.Time),
	}
}

// DivN scales both components by 1/n, as the final step of an average.
func (r Rate) DivN(n int) Rate {
	if n <= 0 {
		return ZeroRate
	}
	return Rate{
		Fuel: r.Fuel / float64(n),
		Time: r.Time.DivN(n),
	}
}
