package logic

import "time"

// CalibratorConfig holds the tunables for startup auto-calibration.
// The interpolation fractions and range floor are configuration for
// compatibility with existing deployments, not hard invariants.
type CalibratorConfig struct {
	Window      time.Duration // how long after start to learn ambient extrema
	OnFraction  float64       // On threshold position within the learned range (darker side)
	OffFraction float64       // Off threshold position within the learned range (brighter side)
	MinRange    int           // learned range at or below this is too narrow to trust
	MinGap      int           // enforced minimum Off-On gap
}

// Calibrator observes raw samples during a startup window and derives
// hysteresis thresholds from the ambient range it saw. It runs at most once
// per instance; after Finalize it is inert. A covered or faulty sensor
// produces a narrow range and the calibration is skipped, never applied.
type Calibrator struct {
	cfg   CalibratorConfig
	start time.Time
	min   int
	max   int
	seen  bool
	done  bool
}

// NewCalibrator creates a calibrator whose window opens at start.
func NewCalibrator(cfg CalibratorConfig, start time.Time) *Calibrator {
	return &Calibrator{cfg: cfg, start: start}
}

// Observe feeds a raw sample into the extrema tracking. Samples arriving
// after the window expired or after Finalize are ignored.
func (c *Calibrator) Observe(raw int, now time.Time) {
	if c.done || c.Expired(now) {
		return
	}
	if !c.seen {
		c.min, c.max = raw, raw
		c.seen = true
		return
	}
	if raw < c.min {
		c.min = raw
	}
	if raw > c.max {
		c.max = raw
	}
}

// Expired reports whether the learning window has closed.
func (c *Calibrator) Expired(now time.Time) bool {
	return now.Sub(c.start) > c.cfg.Window
}

// Done reports whether Finalize has run.
func (c *Calibrator) Done() bool {
	return c.done
}

// Range returns the observed extrema. ok is false before any observation.
func (c *Calibrator) Range() (min, max int, ok bool) {
	return c.min, c.max, c.seen
}

// Finalize closes the calibration and derives thresholds from the observed
// range: On at OnFraction and Off at OffFraction within [min, max], with Off
// widened to On+MinGap when the interpolated gap is too small. ok is false —
// and existing thresholds must be kept — when the observed range is not wide
// enough to be meaningful. Calling Finalize again always returns ok=false.
func (c *Calibrator) Finalize() (Thresholds, bool) {
	if c.done {
		return Thresholds{}, false
	}
	c.done = true

	if !c.seen || c.max-c.min <= c.cfg.MinRange {
		return Thresholds{}, false
	}

	span := float64(c.max - c.min)
	t := Thresholds{
		On:  c.min + int(span*c.cfg.OnFraction),
		Off: c.min + int(span*c.cfg.OffFraction),
	}
	if t.Off < t.On+c.cfg.MinGap {
		t.Off = clamp(t.On+c.cfg.MinGap, 0, MaxRaw)
	}
	return t, true
}
