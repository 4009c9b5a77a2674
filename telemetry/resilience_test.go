package telemetry

import (
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	sessionErr error
}

func (f *fakeSource) Poll() FrameResult                     { return FrameResult{Kind: FrameResultNoChange} }
func (f *fakeSource) Broadcast(cmd BroadcastCommand) error  { return nil }
func (f *fakeSource) SessionInfo() (string, error) {
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return "ok", nil
}

func TestResilientSourceTripsAfterRepeatedFailures(t *testing.T) {
	inner := &fakeSource{sessionErr: errors.New("not attached")}
	cfg := CircuitBreakerConfig{FailureThreshold: 2, RecoveryTimeout: 50 * time.Millisecond, SuccessThreshold: 1}
	rs := NewResilientSource(inner, cfg)

	for i := 0; i < 2; i++ {
		if _, err := rs.SessionInfo(); err == nil {
			t.Fatalf("attempt %d: expected an error", i)
		}
	}
	if rs.State() != string(circuitOpen) {
		t.Fatalf("state = %s, want open", rs.State())
	}
	if _, err := rs.SessionInfo(); err == nil {
		t.Fatal("expected circuit-open error while breaker is tripped")
	}
}

func TestResilientSourceRecoversAfterTimeout(t *testing.T) {
	inner := &fakeSource{sessionErr: errors.New("not attached")}
	cfg := CircuitBreakerConfig{FailureThreshold: 1, RecoveryTimeout: 10 * time.Millisecond, SuccessThreshold: 1}
	rs := NewResilientSource(inner, cfg)

	if _, err := rs.SessionInfo(); err == nil {
		t.Fatal("expected an error")
	}
	inner.sessionErr = nil
	time.Sleep(20 * time.Millisecond)
	if _, err := rs.SessionInfo(); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if rs.State() != string(circuitClosed) {
		t.Fatalf("state = %s, want closed", rs.State())
	}
}
