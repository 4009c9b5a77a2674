package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/psybedev/tracktic-strategy/telemetry"
)

// SessionProgress tracks one attached race session: raw frames in, lap
// records out, and a running Estimation. It owns the telemetry source for
// the lifetime of the session and is discarded on SessionExpired (§4.5).
//
// A new Strategy is only computed at the event points a lap completes, a
// pit exit happens, or a parade lap starts: every other tick just advances
// the running fuel/time counters and reuses the last computed strategy's
// display fields.
type SessionProgress struct {
	source    telemetry.Source
	history   History
	estimator *LapRateEstimator

	session   RaceSession
	sessionID SessionID
	tankSize  float64

	first    telemetry.Frame
	last     telemetry.Frame
	lapStart telemetry.Frame
	haveLast bool

	lapsWritten    int
	pendingLaps    []Lap
	startTrackTemp float64

	lastStrategy     Strategy
	haveLastStrategy bool
}

// NewSessionProgress attaches to a fresh session: parses the session info
// blob, registers the session with history, and primes the live-rate
// estimator with history's historical defaults.
func NewSessionProgress(source telemetry.Source, history History, settings UserSettings) (*SessionProgress, error) {
	raw, err := source.SessionInfo()
	if err != nil {
		return nil, NewEstimatorError(ErrorKindSessionInfoParseFailure, "read session info", err)
	}
	info, err := telemetry.ParseSessionInfo(raw)
	if err != nil {
		return nil, NewEstimatorError(ErrorKindSessionInfoParseFailure, "decode session info", err)
	}
	tankSize := info.FuelTankSize()

	session := RaceSession{
		FuelTankSize: tankSize,
		MaxFuelSave:  settings.MaxFuelSave,
		MinFuel:      settings.MinFuel,
		TrackID:      info.TrackID,
		TrackName:    info.TrackDisplayName,
		LayoutName:   info.TrackConfigName,
		CarID:        info.CarID,
		CarName:      info.CarName,
	}
	sessionID, err := history.RecordSession(session)
	if err != nil {
		return nil, NewEstimatorError(ErrorKindHistoryIOFailure, "record session", err)
	}

	var defGreen, defYellow *Rate
	if rate, ok := history.AverageRate(info.CarID, info.TrackID, ConditionNone); ok {
		defGreen = &rate
	}
	if rate, ok := history.AverageRate(info.CarID, info.TrackID, ConditionYellow); ok {
		defYellow = &rate
	}

	return &SessionProgress{
		source:      source,
		history:     history,
		estimator:   NewLapRateEstimator(defGreen, defYellow),
		session:     session,
		sessionID:   sessionID,
		tankSize:    tankSize,
		pendingLaps: make([]Lap, 0, 4),
	}, nil
}

// Update polls the telemetry source once and advances the state machine
// (§4.5). It returns a SessionExpired *EstimatorError when the simulator
// has torn the session down; the caller discards this SessionProgress on
// that signal.
func (sp *SessionProgress) Update(settings UserSettings, out *Estimation) error {
	result := sp.source.Poll()
	switch result.Kind {
	case telemetry.FrameResultNoChange:
		return nil
	case telemetry.FrameResultSessionExpired:
		return NewEstimatorError(ErrorKindSessionExpired, "session torn down", nil)
	}
	frame := result.Frame

	if !sp.haveLast {
		sp.first = frame
		sp.lapStart = frame
		sp.startTrackTemp = frame.TrackTemp
		sp.last = frame
		sp.haveLast = true
		sp.applyPerTickOutputs(frame, out)
		return nil
	}

	var flushErr error

	// 2. Session-reset detection: session_time running backwards means the
	// driver moved to a different sub-session (e.g. practice -> qualifying).
	if frame.SessionTime < sp.last.SessionTime {
		if err := sp.flush(); err != nil {
			flushErr = err
		}
		sp.first = frame
		sp.lapStart = frame
		sp.last = frame
	}

	// 3. Lap-start fixup: only measure laps while in the car.
	if !sp.lapStart.IsOnTrack && frame.IsOnTrack {
		sp.lapStart = frame
	}

	// 4. Pit-exit fixup.
	if sp.last.PitLocation == telemetry.PitLocationInPitStall && frame.PitLocation != telemetry.PitLocationInPitStall {
		sp.lapStart = frame
		sp.tryStrategyUpdate(frame, settings, out)
	}

	// 5. Parade-lap fixup.
	if frame.SessionState == telemetry.SessionStateParadeLaps && frame.SessionState != sp.last.SessionState {
		sp.lapStart = frame
		sp.tryStrategyUpdate(frame, settings, out)
	}

	// 6. Lap-boundary detection.
	if frame.LapProgress < 0.1 && sp.last.LapProgress > 0.9 {
		crossingTime := interpolateCrossingTime(sp.last.LapProgress, sp.last.SessionTime, frame.LapProgress, frame.SessionTime)
		lapTime := Zero
		if crossingTime > sp.lapStart.SessionTime {
			lapTime = FromSecondsF64(crossingTime - sp.lapStart.SessionTime)
		}
		fuelUsed := sp.lapStart.FuelLevel - frame.FuelLevel
		condition := lapState(frame).Union(lapState(sp.lapStart))

		if frame.SessionState != telemetry.SessionStateChequered && frame.SessionState != telemetry.SessionStateCoolDown {
			if fuelUsed > 0 {
				lap := Lap{
					FuelUsed:      fuelUsed,
					FuelLeftAtEnd: frame.FuelLevel,
					Time:          lapTime,
					Condition:     condition,
				}
				sp.estimator.Record(lap)
				sp.pendingLaps = append(sp.pendingLaps, lap)
				if err := sp.flush(); err != nil {
					flushErr = err
				}
				sp.tryStrategyUpdate(frame, settings, out)
			}
		}
		out.FuelLastLap = fuelUsed
		sp.lapStart = frame
	}

	// 7. Pit-approach refuel hint.
	if frame.PitLocation == telemetry.PitLocationApproachingPits && sp.last.PitLocation != telemetry.PitLocationApproachingPits {
		sp.sendRefuelHint(frame, settings)
	}

	// 8. Per-tick outputs, unconditionally, using sp.last as "the previous
	// frame" before it is overwritten below.
	sp.applyPerTickOutputs(frame, out)
	sp.last = frame

	return flushErr
}

// flush appends any pending laps to history and advances the high-water
// mark. The in-memory estimator state already reflects the recorded laps
// regardless of whether the append succeeds; a failure is surfaced to the
// caller so it can be logged, not rolled back, and the laps stay pending so
// the next flush tries them again.
func (sp *SessionProgress) flush() error {
	if len(sp.pendingLaps) == 0 {
		return nil
	}
	err := sp.history.AppendLaps(sp.sessionID, sp.estimator.Laps(), sp.lapsWritten)
	if err != nil {
		return NewEstimatorError(ErrorKindHistoryIOFailure, "append laps", err)
	}
	sp.lapsWritten += len(sp.pendingLaps)
	sp.pendingLaps = sp.pendingLaps[:0]
	return nil
}

// tryStrategyUpdate recomputes a Strategy from the current rates and, if the
// estimator has enough data to produce one, writes its fields into out and
// remembers it for the next refuel-hint calculation. A no-op while the
// estimator has no green rate yet.
func (sp *SessionProgress) tryStrategyUpdate(frame telemetry.Frame, settings UserSettings, out *Estimation) {
	green, ok := sp.estimator.GreenRate()
	if !ok {
		return
	}
	yellow, ok := sp.estimator.YellowRate()
	if !ok {
		yellow = green
	}
	ends, _, _ := sp.ends(frame)
	req := Request{
		FuelLeft:    frame.FuelLevel,
		TankSize:    sp.tankSize,
		MaxFuelSave: settings.MaxFuelSave,
		MinFuel:     settings.MinFuel,
		YellowTogo:  sp.estimator.TrailingYellowCount(),
		Ends:        ends,
		Green:       green,
		Yellow:      yellow,
	}
	strat, ok := Plan(req)
	if !ok {
		return
	}
	applyStrategy(out, strat)
	sp.lastStrategy = strat
	sp.haveLastStrategy = true
}

// sendRefuelHint computes the refuel amount per §4.5 step 7 and sends it,
// along with tire commands driven by settings.
func (sp *SessionProgress) sendRefuelHint(frame telemetry.Frame, settings UserSettings) {
	if settings.ClearTires {
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastClearTires})
	} else if settings.TakeTires {
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastTireLF})
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastTireRF})
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastTireLR})
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastTireRR})
	}

	if !sp.haveLastStrategy {
		liters := int(math.Ceil(sp.tankSize))
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastFuel, Value: &liters})
		return
	}

	extra := settings.ExtraFuel
	if green, ok := sp.estimator.GreenRate(); ok {
		extra = math.Max(settings.ExtraFuel, green.Fuel*settings.ExtraLaps)
	}
	add := math.Ceil(sp.lastStrategy.TotalFuel() - frame.FuelLevel + extra)
	if add > 0 {
		liters := int(add)
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastFuel, Value: &liters})
	} else {
		_ = sp.source.Broadcast(telemetry.BroadcastCommand{Kind: telemetry.BroadcastClearFuel})
	}
}

// applyPerTickOutputs implements §4.5 step 8: it runs every tick regardless
// of whether a new strategy was computed this tick, decaying the
// already-displayed race-remaining counters from sp.last (the previous
// frame) to frame (the current one).
func (sp *SessionProgress) applyPerTickOutputs(frame telemetry.Frame, out *Estimation) {
	out.Connected = true
	out.Car.Fuel = frame.FuelLevel

	if frame.IsOnTrack {
		delta := sp.last.FuelLevel - frame.FuelLevel
		if delta < 0 {
			delta = 0
		}
		out.Race.Fuel -= delta
		if out.Race.Fuel < 0 {
			out.Race.Fuel = 0
		}
	}

	if out.Green.Fuel > 0 {
		out.Car.Laps = frame.FuelLevel / out.Green.Fuel
		out.Car.Time = out.Green.Time.Scale(out.Car.Laps)
	} else {
		out.Car.Laps = 0
		out.Car.Time = Zero
	}

	ends, _, _ := sp.ends(frame)
	switch ends.Kind {
	case EndsWithLaps:
		out.Race.Laps = float64(ends.Laps)
		dtick := FromSecondsF64(frame.SessionTime - sp.last.SessionTime)
		out.Race.Time = out.Race.Time.Sub(out.Race.Time.Min(dtick))
		out.RaceLapsEstimated = false
		out.RaceTimeEstimated = true
	case EndsWithTime:
		out.Race.Time = ends.Time
		out.RaceLapsEstimated = true
		out.RaceTimeEstimated = false
	case EndsWithLapsOrTime:
		out.Race.Laps = float64(ends.Laps)
		out.Race.Time = ends.Time
		out.RaceLapsEstimated = false
		out.RaceTimeEstimated = false
	}

	out.TrackTemp = frame.TrackTemp
	out.StartTrackTemp = sp.startTrackTemp
	out.WallClock = time.Now()
}

// ends derives a RaceEnd per §4.5 step 10: the server's remaining-laps and
// remaining-time fields, preferring the session totals during warmup/parade
// laps, and synthesizing a 30-minute practice window when both axes report
// the simulator's "unlimited" sentinel. The two bool returns report whether
// the laps/time axis respectively came from a known (non-unlimited) value.
func (sp *SessionProgress) ends(frame telemetry.Frame) (RaceEnd, bool, bool) {
	timeVal, lapsVal := frame.SessionTimeRemain, frame.SessionLapsRemain
	if frame.SessionState == telemetry.SessionStateWarmup || frame.SessionState == telemetry.SessionStateParadeLaps {
		timeVal, lapsVal = frame.SessionTimeTotal, frame.SessionLapsTotal
	}

	timeUnlimited := timeVal >= telemetry.UnlimitedTimeSentinel
	lapsUnlimited := lapsVal >= telemetry.UnlimitedLapsSentinel

	if timeUnlimited {
		if lapsUnlimited {
			remaining := 1800.0 - frame.SessionTime
			if remaining < 0 {
				remaining = 0
			}
			return NewEndsWithTime(FromSecondsF64(remaining)), false, false
		}
		return NewEndsWithLaps(lapsVal), true, false
	}
	if lapsUnlimited {
		return NewEndsWithTime(FromSecondsF64(timeVal)), false, true
	}
	return NewEndsWithLapsOrTime(lapsVal, FromSecondsF64(timeVal)), true, true
}

// lapState implements §4.5 step 9: the condition bits a single frame
// contributes to the lap it falls within.
func lapState(frame telemetry.Frame) LapCondition {
	var c LapCondition
	yellow := frame.Flags.Intersects(telemetry.FlagYellow | telemetry.FlagYellowWaving | telemetry.FlagCaution | telemetry.FlagCautionWaving)
	if yellow {
		c = c.Union(ConditionYellow)
	}
	if frame.PitLocation == telemetry.PitLocationApproachingPits || frame.PitLocation == telemetry.PitLocationInPitStall {
		c = c.Union(ConditionPitted)
	}
	if frame.SessionState == telemetry.SessionStateParadeLaps || frame.SessionState == telemetry.SessionStateWarmup {
		c = c.Union(ConditionPaceLap)
	}
	if yellow && frame.Flags.Intersects(telemetry.FlagOneToGreen) {
		c = c.Union(ConditionOneToGreen)
	}
	return c
}

// lapCondition unions the lapState of two bracketing frames; kept as a
// small helper for callers (and tests) that reason about a lap's start and
// end frame together.
func lapCondition(start, end telemetry.Frame) LapCondition {
	return lapState(start).Union(lapState(end))
}

// interpolateCrossingTime linearly interpolates the session_time at which
// lap_progress crossed the start/finish line, given the frame before the
// crossing and the frame after it. It unwraps the wraparound by treating
// the earlier progress value as negative when it exceeds the later one.
func interpolateCrossingTime(lastProgress, lastTime, curProgress, curTime float64) float64 {
	if lastProgress > curProgress {
		lastProgress -= 1.0
	}
	denom := curProgress - lastProgress
	if denom <= 0 {
		return lastTime
	}
	frac := -lastProgress / denom
	return lastTime + frac*(curTime-lastTime)
}

// String implements a minimal diagnostic form, useful in logs.
func (sp *SessionProgress) String() string {
	return fmt.Sprintf("session %d: %d laps recorded", sp.sessionID, sp.lapsWritten+len(sp.pendingLaps))
}
