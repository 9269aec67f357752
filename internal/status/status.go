// Package status provides a thread-safe status tracker for the streetlight
// daemon. The control loop writes it every tick; HTTP handlers and the live
// websocket read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/streetlight/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	SampleMs    int64
	TelemetryMs int64
	Window      int
	MinGap      int
	Broker      string
	HTTPAddr    string
	DBPath      string
	Device      string
}

// Reading is the per-tick view of the controller written by the loop.
type Reading struct {
	State       logic.State
	Raw         int
	Smoothed    int
	Thresholds  logic.Thresholds
	RawMin      int
	RawMax      int
	HaveSamples bool
	Calibrated  bool
	Counts      logic.EventCounts
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Reading
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update stores the controller reading. Called from the loop on every tick.
func (t *Tracker) Update(r Reading) {
	t.mu.Lock()
	t.snap.Reading = r
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
