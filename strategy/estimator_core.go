package strategy

// LapRateEstimator maintains the ordered list of laps completed during a
// session and derives the current green- and yellow-flag rates, falling
// back to historical defaults loaded once at construction when live data is
// insufficient.
type LapRateEstimator struct {
	laps      []Lap
	defGreen  *Rate
	defYellow *Rate
}

// NewLapRateEstimator constructs an estimator, optionally seeded with
// historical defaults for this (car, track) pair.
func NewLapRateEstimator(defGreen, defYellow *Rate) *LapRateEstimator {
	return &LapRateEstimator{defGreen: defGreen, defYellow: defYellow}
}

// Record appends a completed lap.
func (e *LapRateEstimator) Record(l Lap) {
	e.laps = append(e.laps, l)
}

// Laps returns the recorded laps in chronological order. Callers must treat
// the slice as read-only.
func (e *LapRateEstimator) Laps() []Lap { return e.laps }

// GreenRate averages the last five laps run under no condition at all. With
// fewer than two such laps and a historical default present, the default
// wins; without a default, even a single live lap is used; with neither,
// there is no rate yet.
func (e *LapRateEstimator) GreenRate() (Rate, bool) {
	count := 0
	acc := ZeroRate
	for i := len(e.laps) - 1; i >= 0 && count < 5; i-- {
		if !e.laps[i].Condition.IsEmpty() {
			continue
		}
		acc = acc.Add(e.laps[i])
		count++
	}
	if count < 2 && e.defGreen != nil {
		return *e.defGreen, true
	}
	if count >= 1 {
		return acc.DivN(count), true
	}
	return ZeroRate, false
}

// YellowRate averages yellow laps, discarding the first (always partial) lap
// of each caution run. Falls back to the historical default when no full
// yellow lap has been observed this session.
func (e *LapRateEstimator) YellowRate() (Rate, bool) {
	yellowStarted := false
	acc := ZeroRate
	count := 0
	for _, l := range e.laps {
		if l.Condition.Intersects(ConditionYellow) {
			if !yellowStarted {
				yellowStarted = true
			} else {
				acc = acc.Add(l)
				count++
			}
		} else {
			yellowStarted = false
		}
	}
	if count == 0 {
		if e.defYellow != nil {
			return *e.defYellow, true
		}
		return ZeroRate, false
	}
	return acc.DivN(count), true
}

// TrailingYellowCount counts the longest suffix of laps run under caution.
func (e *LapRateEstimator) TrailingYellowCount() int {
	count := 0
	for i := len(e.laps) - 1; i >= 0; i-- {
		if !e.laps[i].Condition.Intersects(ConditionYellow) {
			break
		}
		count++
	}
	return count
}
