package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeSpan is a non-negative duration with race-specific parsing and formatting.
// Below one hour it renders as MM:SS; at or above one hour, H:MM:SS.
type TimeSpan struct {
	d time.Duration
}

// Zero is the zero-length TimeSpan.
var Zero = TimeSpan{}

// NewTimeSpan builds a TimeSpan from a standard duration. Negative durations
// are clamped to zero; the core only ever deals in elapsed/remaining time.
func NewTimeSpan(d time.Duration) TimeSpan {
	if d < 0 {
		d = 0
	}
	return TimeSpan{d: d}
}

// FromSecondsF64 builds a TimeSpan from a floating point second count, as
// delivered by the telemetry source.
func FromSecondsF64(secs float64) TimeSpan {
	if secs < 0 {
		secs = 0
	}
	return TimeSpan{d: time.Duration(secs * float64(time.Second))}
}

// Duration returns the underlying time.Duration.
func (t TimeSpan) Duration() time.Duration { return t.d }

// Seconds returns the duration in fractional seconds.
func (t TimeSpan) Seconds() float64 { return t.d.Seconds() }

// Add returns t + o.
func (t TimeSpan) Add(o TimeSpan) TimeSpan { return TimeSpan{d: t.d + o.d} }

// Sub returns t - o, saturating at zero.
func (t TimeSpan) Sub(o TimeSpan) TimeSpan {
	if t.d <= o.d {
		return Zero
	}
	return TimeSpan{d: t.d - o.d}
}

// Scale multiplies by a scalar factor.
func (t TimeSpan) Scale(factor float64) TimeSpan {
	return FromSecondsF64(t.Seconds() * factor)
}

// DivN divides by a positive integer count, as used when averaging rates.
func (t TimeSpan) DivN(n int) TimeSpan {
	if n <= 0 {
		return Zero
	}
	return TimeSpan{d: t.d / time.Duration(n)}
}

// Min returns the smaller of t and o.
func (t TimeSpan) Min(o TimeSpan) TimeSpan {
	if t.d < o.d {
		return t
	}
	return o
}

// Less reports whether t < o.
func (t TimeSpan) Less(o TimeSpan) bool { return t.d < o.d }

// LessOrEqual reports whether t <= o.
func (t TimeSpan) LessOrEqual(o TimeSpan) bool { return t.d <= o.d }

// IsZero reports whether the duration is exactly zero.
func (t TimeSpan) IsZero() bool { return t.d == 0 }

// String formats as MM:SS below one hour, H:MM:SS at or above.
func (t TimeSpan) String() string {
	total := int64(t.d.Round(time.Second) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ParseTimeSpan parses MM:SS or H:MM:SS, tolerating surrounding whitespace.
func ParseTimeSpan(s string) (TimeSpan, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	var hours, minutes, seconds int64
	var err error
	switch len(parts) {
	case 2:
		minutes, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("strategy: invalid minutes in %q: %w", s, err)
		}
		seconds, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("strategy: invalid seconds in %q: %w", s, err)
		}
	case 3:
		hours, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("strategy: invalid hours in %q: %w", s, err)
		}
		minutes, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("strategy: invalid minutes in %q: %w", s, err)
		}
		seconds, err = strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("strategy: invalid seconds in %q: %w", s, err)
		}
	default:
		return Zero, fmt.Errorf("strategy: invalid TimeSpan format %q", s)
	}
	total := hours*3600 + minutes*60 + seconds
	if total < 0 {
		return Zero, fmt.Errorf("strategy: negative TimeSpan %q", s)
	}
	return TimeSpan{d: time.Duration(total) * time.Second}, nil
}
