// Package logic contains the pure sensing-and-decision pipeline for the
// street light controller: moving-average smoothing, startup auto-calibration,
// and the ON/OFF hysteresis state machine.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// MaxRaw is the full-scale sensor reading (10-bit ADC).
const MaxRaw = 1023

// State represents the logical state of the lighting relay.
type State string

const (
	StateOff State = "OFF"
	StateOn  State = "ON"
)

// EventType represents something the controller wants the outside world
// to act on or know about.
type EventType string

const (
	// EventLightOn / EventLightOff are hysteresis transitions. The caller
	// must drive the relay to the new state.
	EventLightOn  EventType = "LIGHT_ON"
	EventLightOff EventType = "LIGHT_OFF"

	// EventCalibrated fires once when the startup calibration window closes
	// with a usable ambient range and new thresholds were applied.
	EventCalibrated EventType = "CALIBRATED"
)

// Event represents a controller decision to be published.
type Event struct {
	Timestamp  time.Time
	Type       EventType
	State      State
	Raw        int
	Smoothed   int
	Thresholds Thresholds
}

// Input represents a single raw sensor sample.
type Input struct {
	Raw  int // 0..MaxRaw
	Time time.Time
}

// Thresholds is the ON/OFF switching pair. The relay turns ON when the
// smoothed value drops to On or below (darker), and OFF when it rises to
// Off or above (brighter). Off and On must stay at least the configured
// minimum gap apart; the With* mutators maintain that.
type Thresholds struct {
	On  int
	Off int
}

// WithOn returns thresholds with On set to v (clamped to 0..MaxRaw).
// Off is pushed up if the gap would be violated.
func (t Thresholds) WithOn(v, minGap int) Thresholds {
	t.On = clamp(v, 0, MaxRaw)
	if t.Off < t.On+minGap {
		t.Off = clamp(t.On+minGap, 0, MaxRaw)
	}
	return t
}

// WithOff returns thresholds with Off set to v (clamped to 0..MaxRaw).
// On is pushed down if the gap would be violated.
func (t Thresholds) WithOff(v, minGap int) Thresholds {
	t.Off = clamp(v, 0, MaxRaw)
	if t.On > t.Off-minGap {
		t.On = clamp(t.Off-minGap, 0, MaxRaw)
	}
	return t
}

// Gap returns Off - On.
func (t Thresholds) Gap() int {
	return t.Off - t.On
}

// EventCounts tracks the number of relay transitions since startup.
type EventCounts struct {
	On  int
	Off int
}

// TelemetryData contains information for a periodic telemetry emission.
type TelemetryData struct {
	Timestamp  time.Time
	Uptime     time.Duration
	Raw        int
	Smoothed   int
	State      State
	Thresholds Thresholds
	Counts     EventCounts
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
