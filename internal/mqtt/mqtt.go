// Package mqtt provides MQTT publishing and command reception with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/streetlight/internal/logic"
)

// Topics used by the daemon.
const (
	// TopicEvents carries relay transitions and calibration completions.
	TopicEvents = "lighting/streetlight/events"

	// TopicTelemetry carries the periodic status snapshot.
	TopicTelemetry = "lighting/streetlight/telemetry"

	// TopicSystem carries lifecycle events (STARTUP, SHUTDOWN).
	TopicSystem = "lighting/streetlight/system"

	// TopicCommand receives operator command lines; responses go to
	// TopicResponse. The payload grammar is the same as the stdin CLI.
	TopicCommand  = "lighting/streetlight/cmd"
	TopicResponse = "lighting/streetlight/cmd/response"
)

// Publisher publishes daemon output to MQTT.
type Publisher interface {
	// PublishEvent sends a controller event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishEvent(event logic.Event) error

	// PublishTelemetry sends a periodic telemetry snapshot.
	PublishTelemetry(td logic.TelemetryData) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// PublishResponse sends a command response line.
	PublishResponse(line string) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers operator command lines received over MQTT.
type CommandSource interface {
	Commands() <-chan string
}

// SystemEvent represents a system lifecycle event.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// EventPayload is the MQTT message envelope for controller events.
type EventPayload struct {
	Light LightEvent `json:"light"`
}

// LightEvent contains the controller event details.
type LightEvent struct {
	Timestamp    string `json:"timestamp"`
	Event        string `json:"event"`
	State        string `json:"state"`
	Raw          int    `json:"raw"`
	Smoothed     int    `json:"smoothed"`
	ThresholdOn  int    `json:"threshold_on"`
	ThresholdOff int    `json:"threshold_off"`
}

// FormatEventPayload creates the JSON payload for a controller event.
func FormatEventPayload(event logic.Event) ([]byte, error) {
	payload := EventPayload{
		Light: LightEvent{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Type),
			State:        string(event.State),
			Raw:          event.Raw,
			Smoothed:     event.Smoothed,
			ThresholdOn:  event.Thresholds.On,
			ThresholdOff: event.Thresholds.Off,
		},
	}
	return json.Marshal(payload)
}

// TelemetryPayload is the MQTT message envelope for telemetry snapshots.
type TelemetryPayload struct {
	Telemetry TelemetryInner `json:"telemetry"`
}

// TelemetryInner contains the telemetry details.
type TelemetryInner struct {
	Timestamp     string `json:"timestamp"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Raw           int    `json:"raw"`
	Smoothed      int    `json:"smoothed"`
	State         string `json:"state"`
	ThresholdOn   int    `json:"threshold_on"`
	ThresholdOff  int    `json:"threshold_off"`
	OnCount       int    `json:"on_count"`
	OffCount      int    `json:"off_count"`
}

// FormatTelemetryPayload creates the JSON payload for a telemetry snapshot.
func FormatTelemetryPayload(td logic.TelemetryData) ([]byte, error) {
	payload := TelemetryPayload{
		Telemetry: TelemetryInner{
			Timestamp:     td.Timestamp.UTC().Format(time.RFC3339),
			UptimeSeconds: int64(td.Uptime.Truncate(time.Second).Seconds()),
			Raw:           td.Raw,
			Smoothed:      td.Smoothed,
			State:         string(td.State),
			ThresholdOn:   td.Thresholds.On,
			ThresholdOff:  td.Thresholds.Off,
			OnCount:       td.Counts.On,
			OffCount:      td.Counts.Off,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message envelope for simple system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
