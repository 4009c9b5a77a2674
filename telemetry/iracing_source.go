package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mpapenbr/goirsdk/irsdk"
)

// IracingSource is a thin Source adapter over goirsdk's shared-memory
// client. It owns no retry or circuit-breaker logic of its own: Poll checks
// that the simulator is running with a request bounded by a two-second
// timeout, reports SessionExpired once that check fails after having been
// attached, and leaves reconnection policy to the caller.
type IracingSource struct {
	client      *http.Client
	api         *irsdk.Irsdk
	lastSession float64
	attached    bool
}

// NewIracingSource constructs a source that has not yet attached to a
// running simulator. Callers call Poll in a loop; the adapter attaches
// lazily on the first call that finds the simulator running.
func NewIracingSource() *IracingSource {
	return &IracingSource{client: &http.Client{Timeout: 5 * time.Second}}
}

// Poll implements Source.Poll.
func (s *IracingSource) Poll() FrameResult {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	running, err := irsdk.IsSimRunning(ctx, s.client)
	if err != nil || !running {
		if s.attached {
			s.attached = false
			return FrameResult{Kind: FrameResultSessionExpired}
		}
		return FrameResult{Kind: FrameResultNoChange}
	}

	if s.api == nil {
		s.api = irsdk.NewIrsdk()
	}
	if !s.api.WaitForValidData() {
		return FrameResult{Kind: FrameResultNoChange}
	}
	s.api.GetData()
	s.attached = true

	frame, err := s.readFrame()
	if err != nil {
		return FrameResult{Kind: FrameResultNoChange}
	}
	if frame.SessionTime == s.lastSession {
		return FrameResult{Kind: FrameResultNoChange}
	}
	s.lastSession = frame.SessionTime
	return FrameResult{Kind: FrameResultNewFrame, Frame: frame}
}

// readFrame reads the named telemetry variables the reference
// implementation keys off of (§6's TelemetryFactory table) and assembles a
// Frame.
func (s *IracingSource) readFrame() (Frame, error) {
	sessionTime, err := s.api.GetDoubleValue("SessionTime")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionTime: %w", err)
	}
	isOnTrack, err := s.api.GetBoolValue("IsOnTrack")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: IsOnTrack: %w", err)
	}
	pitLocation, err := s.api.GetIntValue("PlayerTrackSurface")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: PlayerTrackSurface: %w", err)
	}
	sessionState, err := s.api.GetIntValue("SessionState")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionState: %w", err)
	}
	flags, err := s.api.GetIntValue("SessionFlags")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionFlags: %w", err)
	}
	timeRemain, err := s.api.GetDoubleValue("SessionTimeRemain")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionTimeRemain: %w", err)
	}
	lapsRemain, err := s.api.GetIntValue("SessionLapsRemainEx")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionLapsRemainEx: %w", err)
	}
	timeTotal, err := s.api.GetDoubleValue("SessionTimeTotal")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionTimeTotal: %w", err)
	}
	lapsTotal, err := s.api.GetIntValue("SessionLapsTotal")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: SessionLapsTotal: %w", err)
	}
	fuelLevel, err := s.api.GetFloatValue("FuelLevel")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: FuelLevel: %w", err)
	}
	lapDistPct, err := s.api.GetFloatValue("LapDistPct")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: LapDistPct: %w", err)
	}
	trackTemp, err := s.api.GetFloatValue("TrackTempCrew")
	if err != nil {
		return Frame{}, fmt.Errorf("telemetry: TrackTempCrew: %w", err)
	}

	return Frame{
		SessionTime:       sessionTime,
		IsOnTrack:         isOnTrack,
		PitLocation:       PitLocation(pitLocation),
		SessionState:      SessionState(sessionState),
		Flags:             Flags(uint32(flags)),
		SessionTimeRemain: timeRemain,
		SessionLapsRemain: lapsRemain,
		SessionTimeTotal:  timeTotal,
		SessionLapsTotal:  lapsTotal,
		FuelLevel:         float64(fuelLevel),
		LapProgress:       float64(lapDistPct),
		TrackTemp:         float64(trackTemp),
	}, nil
}

// SessionInfo implements Source.SessionInfo, returning the raw YAML
// session-attach blob for ParseSessionInfo to decode.
func (s *IracingSource) SessionInfo() (string, error) {
	if s.api == nil {
		return "", fmt.Errorf("telemetry: not attached")
	}
	raw := s.api.GetSessionInfoYaml()
	if raw == "" {
		return "", fmt.Errorf("telemetry: empty session info")
	}
	return raw, nil
}

// Broadcast implements Source.Broadcast by translating a BroadcastCommand
// into the simulator's pit-service broadcast message.
func (s *IracingSource) Broadcast(cmd BroadcastCommand) error {
	if s.api == nil {
		return fmt.Errorf("telemetry: not attached")
	}
	var1, var2 := broadcastArgs(cmd)
	s.api.BroadcastMessage(irsdk.BroadcastPitCommand, int(pitCommandCode(cmd.Kind)), var1, var2)
	return nil
}

func pitCommandCode(kind BroadcastCommandKind) int {
	switch kind {
	case BroadcastFuel:
		return 1
	case BroadcastClearFuel:
		return 2
	case BroadcastTireLF:
		return 3
	case BroadcastTireRF:
		return 4
	case BroadcastTireLR:
		return 5
	case BroadcastTireRR:
		return 6
	case BroadcastClearTires:
		return 7
	case BroadcastFastRepair:
		return 8
	case BroadcastClear:
		return 9
	case BroadcastTearOff:
		return 10
	default:
		return 0
	}
}

func broadcastArgs(cmd BroadcastCommand) (int, int) {
	if cmd.Value == nil {
		return 0, 0
	}
	return *cmd.Value, 0
}
