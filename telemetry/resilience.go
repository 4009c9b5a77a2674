package telemetry

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// circuitState is the state of a ResilientSource's circuit breaker.
type circuitState string

const (
	circuitClosed   circuitState = "closed"
	circuitOpen     circuitState = "open"
	circuitHalfOpen circuitState = "half_open"
)

// RetryConfig controls the backoff applied to a single SessionInfo call's
// attach retries.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

// DefaultRetryConfig mirrors the backoff the reference adapter has always
// used against a simulator that refuses to attach.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

func (rc RetryConfig) delay(attempt int) time.Duration {
	d := float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt))
	if d > float64(rc.MaxDelay) {
		d = float64(rc.MaxDelay)
	}
	if rc.Jitter {
		d += d * 0.1 * (rand.Float64() - 0.5)
	}
	return time.Duration(d)
}

// CircuitBreakerConfig controls when ResilientSource stops attempting to
// reach a simulator that has been failing repeatedly.
type CircuitBreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	SuccessThreshold int
}

// DefaultCircuitBreakerConfig mirrors the reference adapter's defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  15 * time.Second,
		SuccessThreshold: 2,
	}
}

// ResilientSource wraps a Source with a circuit breaker over SessionInfo
// attach attempts: a simulator that repeatedly fails to hand back session
// info trips the breaker, which then fails fast until RecoveryTimeout has
// elapsed rather than hammering a simulator that isn't there. Poll and
// Broadcast pass straight through; only the attach path (SessionInfo) is
// gated, since Poll is expected to return NoChange harmlessly when nothing
// is attached.
type ResilientSource struct {
	inner Source
	cbCfg CircuitBreakerConfig

	mu              sync.Mutex
	state           circuitState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
}

// NewResilientSource wraps inner with the given circuit breaker policy.
func NewResilientSource(inner Source, cbCfg CircuitBreakerConfig) *ResilientSource {
	return &ResilientSource{inner: inner, cbCfg: cbCfg, state: circuitClosed}
}

// Poll implements Source.Poll, passed straight through.
func (r *ResilientSource) Poll() FrameResult { return r.inner.Poll() }

// Broadcast implements Source.Broadcast, passed straight through.
func (r *ResilientSource) Broadcast(cmd BroadcastCommand) error { return r.inner.Broadcast(cmd) }

// SessionInfo implements Source.SessionInfo, gated by the circuit breaker
// and retried with exponential backoff while the breaker stays closed.
func (r *ResilientSource) SessionInfo() (string, error) {
	if !r.canExecute() {
		return "", fmt.Errorf("telemetry: circuit open, not attempting session info")
	}

	cfg := DefaultRetryConfig()
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		raw, err := r.inner.SessionInfo()
		if err == nil {
			r.recordSuccess()
			return raw, nil
		}
		lastErr = err
		if attempt < cfg.MaxRetries {
			time.Sleep(cfg.delay(attempt))
		}
	}
	r.recordFailure()
	return "", fmt.Errorf("telemetry: session info unavailable after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// State returns the breaker's current state, for diagnostics.
func (r *ResilientSource) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.state)
}

func (r *ResilientSource) canExecute() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case circuitClosed:
		return true
	case circuitOpen:
		if time.Since(r.lastFailureTime) >= r.cbCfg.RecoveryTimeout {
			r.state = circuitHalfOpen
			r.successCount = 0
			return true
		}
		return false
	case circuitHalfOpen:
		return true
	default:
		return false
	}
}

func (r *ResilientSource) recordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case circuitClosed:
		r.failureCount = 0
	case circuitHalfOpen:
		r.successCount++
		if r.successCount >= r.cbCfg.SuccessThreshold {
			r.state = circuitClosed
			r.failureCount = 0
			r.successCount = 0
		}
	}
}

func (r *ResilientSource) recordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failureCount++
	r.lastFailureTime = time.Now()
	switch r.state {
	case circuitClosed:
		if r.failureCount >= r.cbCfg.FailureThreshold {
			r.state = circuitOpen
		}
	case circuitHalfOpen:
		r.state = circuitOpen
		r.successCount = 0
	}
}
