package logic

import "time"

// ControllerConfig holds the controller tunables.
type ControllerConfig struct {
	Thresholds  Thresholds
	MinGap      int
	Window      int               // smoothing window size
	Calibration *CalibratorConfig // nil disables startup auto-calibration
}

// Controller owns the decision pipeline state: thresholds, light state,
// smoothing buffer, calibration window, and raw extrema since startup.
// It never touches hardware — Process returns events and the caller drives
// the relay. All methods must be called from a single goroutine.
type Controller struct {
	thresholds Thresholds
	minGap     int
	state      State
	smoother   *Smoother
	calibrator *Calibrator

	rawMin  int
	rawMax  int
	lastRaw int
	haveRaw bool

	counts        EventCounts
	startTime     time.Time
	lastTelemetry time.Time
}

// NewController creates a controller in state OFF. The startTime anchors the
// calibration window, uptime, and the telemetry cadence.
func NewController(cfg ControllerConfig, startTime time.Time) *Controller {
	c := &Controller{
		thresholds:    cfg.Thresholds,
		minGap:        cfg.MinGap,
		state:         StateOff,
		smoother:      NewSmoother(cfg.Window),
		startTime:     startTime,
		lastTelemetry: startTime,
	}
	if cfg.Calibration != nil {
		calCfg := *cfg.Calibration
		calCfg.MinGap = cfg.MinGap
		c.calibrator = NewCalibrator(calCfg, startTime)
	}
	return c
}

// Process takes a raw sensor sample and returns any events to act on:
// at most one CALIBRATED event (once, when the startup window closes) and
// at most one LIGHT_ON/LIGHT_OFF transition. Between the two thresholds the
// state is deliberately sticky — that dead zone is the anti-chatter
// mechanism.
func (c *Controller) Process(in Input) []Event {
	var events []Event

	if c.calibrator != nil && !c.calibrator.Done() {
		if !c.calibrator.Expired(in.Time) {
			c.calibrator.Observe(in.Raw, in.Time)
		} else if t, ok := c.calibrator.Finalize(); ok {
			c.thresholds = t
			events = append(events, Event{
				Timestamp:  in.Time,
				Type:       EventCalibrated,
				State:      c.state,
				Raw:        in.Raw,
				Smoothed:   c.smoother.Value(),
				Thresholds: c.thresholds,
			})
		}
	}

	// Extrema bookkeeping continues after calibration, for status reporting.
	if !c.haveRaw {
		c.rawMin, c.rawMax = in.Raw, in.Raw
		c.haveRaw = true
	} else {
		if in.Raw < c.rawMin {
			c.rawMin = in.Raw
		}
		if in.Raw > c.rawMax {
			c.rawMax = in.Raw
		}
	}
	c.lastRaw = in.Raw

	smoothed := c.smoother.Admit(in.Raw)

	switch {
	case c.state == StateOff && smoothed <= c.thresholds.On:
		c.state = StateOn
		c.counts.On++
		events = append(events, c.transitionEvent(EventLightOn, in, smoothed))
	case c.state == StateOn && smoothed >= c.thresholds.Off:
		c.state = StateOff
		c.counts.Off++
		events = append(events, c.transitionEvent(EventLightOff, in, smoothed))
	}

	return events
}

func (c *Controller) transitionEvent(t EventType, in Input, smoothed int) Event {
	return Event{
		Timestamp:  in.Time,
		Type:       t,
		State:      c.state,
		Raw:        in.Raw,
		Smoothed:   smoothed,
		Thresholds: c.thresholds,
	}
}

// SetOn updates the ON threshold from an operator command, clamping to the
// valid range and pushing the OFF threshold up if the gap would be violated.
// It never forces a state transition; only future evaluations change.
func (c *Controller) SetOn(v int) Thresholds {
	c.thresholds = c.thresholds.WithOn(v, c.minGap)
	return c.thresholds
}

// SetOff updates the OFF threshold, clamping and pushing the ON threshold
// down if the gap would be violated.
func (c *Controller) SetOff(v int) Thresholds {
	c.thresholds = c.thresholds.WithOff(v, c.minGap)
	return c.thresholds
}

// Apply installs a threshold pair verbatim, without gap re-adjustment.
// Used when loading persisted settings, which already satisfied the gap
// invariant at set-time.
func (c *Controller) Apply(t Thresholds) {
	c.thresholds = t
}

// Thresholds returns the current threshold pair.
func (c *Controller) Thresholds() Thresholds {
	return c.thresholds
}

// State returns the current light state.
func (c *Controller) State() State {
	return c.state
}

// Counts returns the transition counts since startup.
func (c *Controller) Counts() EventCounts {
	return c.counts
}

// Smoothed returns the current moving average (0 before the first sample).
func (c *Controller) Smoothed() int {
	return c.smoother.Value()
}

// LastRaw returns the most recent raw sample (0 before the first sample).
func (c *Controller) LastRaw() int {
	return c.lastRaw
}

// RawExtrema returns the raw min/max seen since startup.
// ok is false before the first sample.
func (c *Controller) RawExtrema() (min, max int, ok bool) {
	return c.rawMin, c.rawMax, c.haveRaw
}

// Calibrated reports whether startup calibration has completed (or was
// never enabled).
func (c *Controller) Calibrated() bool {
	return c.calibrator == nil || c.calibrator.Done()
}

// CheckTelemetry returns telemetry data if the interval has elapsed since
// the last emission (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (c *Controller) CheckTelemetry(now time.Time, interval time.Duration) *TelemetryData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastTelemetry) < interval {
		return nil
	}
	c.lastTelemetry = now
	return &TelemetryData{
		Timestamp:  now,
		Uptime:     now.Sub(c.startTime),
		Raw:        c.lastRaw,
		Smoothed:   c.smoother.Value(),
		State:      c.state,
		Thresholds: c.thresholds,
		Counts:     c.counts,
	}
}
