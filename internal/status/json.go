package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	Raw           int        `json:"raw"`
	Smoothed      int        `json:"smoothed"`
	ThresholdOn   int        `json:"threshold_on"`
	ThresholdOff  int        `json:"threshold_off"`
	RawMin        *int       `json:"raw_min,omitempty"`
	RawMax        *int       `json:"raw_max,omitempty"`
	Calibrated    bool       `json:"calibrated"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"event_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	On  int `json:"on"`
	Off int `json:"off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SampleMs    int64  `json:"sample_ms"`
	TelemetryMs int64  `json:"telemetry_ms"`
	Window      int    `json:"window"`
	MinGap      int    `json:"min_gap"`
	Broker      string `json:"broker,omitempty"`
	HTTPAddr    string `json:"http_addr"`
	DBPath      string `json:"db_path"`
	Device      string `json:"device"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:         state,
		Raw:           snap.Raw,
		Smoothed:      snap.Smoothed,
		ThresholdOn:   snap.Thresholds.On,
		ThresholdOff:  snap.Thresholds.Off,
		Calibrated:    snap.Calibrated,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts:        CountsJSON{On: snap.Counts.On, Off: snap.Counts.Off},
		Config: ConfigJSON{
			SampleMs:    snap.Config.SampleMs,
			TelemetryMs: snap.Config.TelemetryMs,
			Window:      snap.Config.Window,
			MinGap:      snap.Config.MinGap,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			DBPath:      snap.Config.DBPath,
			Device:      snap.Config.Device,
		},
	}
	if snap.HaveSamples {
		rawMin, rawMax := snap.RawMin, snap.RawMax
		inner.RawMin = &rawMin
		inner.RawMax = &rawMax
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
