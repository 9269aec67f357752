package logic

import (
	"testing"
	"time"
)

func calCfg() CalibratorConfig {
	return CalibratorConfig{
		Window:      15 * time.Second,
		OnFraction:  0.35,
		OffFraction: 0.55,
		MinRange:    50,
		MinGap:      20,
	}
}

func TestCalibratorDerivation(t *testing.T) {
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	c := NewCalibrator(calCfg(), start)

	c.Observe(100, start)
	c.Observe(600, start.Add(5*time.Second))
	c.Observe(350, start.Add(10*time.Second))

	th, ok := c.Finalize()
	if !ok {
		t.Fatal("expected calibration to apply")
	}
	// 100 + 0.35*500 = 275, 100 + 0.55*500 = 375
	if th.On != 275 {
		t.Errorf("On = %d, want 275", th.On)
	}
	if th.Off != 375 {
		t.Errorf("Off = %d, want 375", th.Off)
	}
}

func TestCalibratorSkipsNarrowRange(t *testing.T) {
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		min, max int
	}{
		{"range below floor", 300, 340},
		{"range exactly at floor", 300, 350},
		{"flat sensor", 512, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCalibrator(calCfg(), start)
			c.Observe(tt.min, start)
			c.Observe(tt.max, start.Add(time.Second))
			if _, ok := c.Finalize(); ok {
				t.Errorf("range %d..%d: expected calibration skip", tt.min, tt.max)
			}
		})
	}
}

func TestCalibratorNoObservations(t *testing.T) {
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	c := NewCalibrator(calCfg(), start)
	if _, ok := c.Finalize(); ok {
		t.Error("expected skip with no observations")
	}
	if !c.Done() {
		t.Error("calibrator should be done after Finalize")
	}
}

func TestCalibratorWidensGap(t *testing.T) {
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	cfg := calCfg()
	cfg.MinRange = 50
	cfg.MinGap = 40
	c := NewCalibrator(cfg, start)

	// Range 60: interpolated gap = 0.2*60 = 12 < 40, Off widened to On+40.
	c.Observe(200, start)
	c.Observe(260, start.Add(time.Second))

	th, ok := c.Finalize()
	if !ok {
		t.Fatal("expected calibration to apply")
	}
	if th.On != 221 { // 200 + int(0.35*60)
		t.Errorf("On = %d, want 221", th.On)
	}
	if th.Off != th.On+40 {
		t.Errorf("Off = %d, want %d", th.Off, th.On+40)
	}
}

func TestCalibratorExpiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	c := NewCalibrator(calCfg(), start)

	if c.Expired(start.Add(15 * time.Second)) {
		t.Error("window boundary should still be inside the window")
	}
	if !c.Expired(start.Add(15*time.Second + time.Millisecond)) {
		t.Error("expected expiry past the window")
	}

	// Observations after expiry are ignored.
	c.Observe(100, start)
	c.Observe(900, start.Add(16*time.Second))
	min, max, ok := c.Range()
	if !ok {
		t.Fatal("expected a recorded range")
	}
	if min != 100 || max != 100 {
		t.Errorf("range = %d..%d, want 100..100", min, max)
	}
}

func TestCalibratorFinalizeOnce(t *testing.T) {
	start := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	c := NewCalibrator(calCfg(), start)
	c.Observe(100, start)
	c.Observe(600, start.Add(time.Second))

	if _, ok := c.Finalize(); !ok {
		t.Fatal("first Finalize should apply")
	}
	if _, ok := c.Finalize(); ok {
		t.Error("second Finalize should not apply")
	}
}
