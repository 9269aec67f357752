package main

import (
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweeney/streetlight/internal/gpio"
	"github.com/sweeney/streetlight/internal/logic"
	"github.com/sweeney/streetlight/internal/mqtt"
	"github.com/sweeney/streetlight/internal/settings"
	"github.com/sweeney/streetlight/internal/status"
)

// fakeClock returns a clock that advances by step on every call.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

type loopFixture struct {
	sensor    *gpio.FakeSensor
	relay     *gpio.FakeRelay
	client    *mqtt.FakeClient
	store     *settings.FakeStore
	d         *daemon
	responses []string
}

func newLoopFixture(samples []int, cfg logic.ControllerConfig, telemetry time.Duration) *loopFixture {
	start := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	f := &loopFixture{
		sensor: gpio.NewFakeSensor(samples),
		relay:  gpio.NewFakeRelay(),
		client: mqtt.NewFakeClient(),
		store:  &settings.FakeStore{},
	}
	f.d = &daemon{
		sensor:     f.sensor,
		relay:      f.relay,
		publisher:  f.client,
		mqttStatus: f.client,
		store:      f.store,
		tracker:    status.NewTracker(start, status.Config{}),
		ctrl:       logic.NewController(cfg, start),
		logger:     zerolog.Nop(),
		telemetry:  telemetry,
		now:        fakeClock(start, 50*time.Millisecond),
	}
	f.d.respond = func(line string) {
		f.responses = append(f.responses, line)
	}
	return f
}

// run drives the loop with the given script, then shuts it down via SIGTERM.
// Unbuffered channels mean each scripted send completes only after the
// previous one was fully handled, so assertions after run see final state.
func (f *loopFixture) run(t *testing.T, script func(tick chan<- time.Time, commands chan<- string)) {
	t.Helper()
	tick := make(chan time.Time)
	commands := make(chan string)
	sig := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- f.d.runLoop(tick, commands, sig)
	}()
	script(tick, commands)
	sig <- syscall.SIGTERM
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runLoop returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runLoop did not exit")
	}
}

func defaultLoopConfig() logic.ControllerConfig {
	return logic.ControllerConfig{
		Thresholds: logic.Thresholds{On: 480, Off: 520},
		MinGap:     20,
		Window:     1,
	}
}

func TestLoopTurnsLightOnWhenDark(t *testing.T) {
	f := newLoopFixture([]int{600, 400, 600}, defaultLoopConfig(), 0)

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		for i := 0; i < 3; i++ {
			tick <- time.Time{}
		}
	})

	want := []bool{true, false}
	if len(f.relay.States) != len(want) {
		t.Fatalf("relay states = %v, want %v", f.relay.States, want)
	}
	for i, on := range want {
		if f.relay.States[i] != on {
			t.Errorf("relay state %d = %v, want %v", i, f.relay.States[i], on)
		}
	}

	if len(f.client.Events) != 2 {
		t.Fatalf("published %d events, want 2", len(f.client.Events))
	}
	if f.client.Events[0].Type != logic.EventLightOn {
		t.Errorf("first event = %s, want %s", f.client.Events[0].Type, logic.EventLightOn)
	}
	if f.client.Events[0].Raw != 400 || f.client.Events[0].Smoothed != 400 {
		t.Errorf("first event raw/smoothed = %d/%d, want 400/400",
			f.client.Events[0].Raw, f.client.Events[0].Smoothed)
	}
	if f.client.Events[1].Type != logic.EventLightOff {
		t.Errorf("second event = %s, want %s", f.client.Events[1].Type, logic.EventLightOff)
	}
}

func TestLoopStatusCommand(t *testing.T) {
	f := newLoopFixture([]int{300}, defaultLoopConfig(), 0)

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		commands <- "STATUS" // before any sample
		tick <- time.Time{}
		commands <- "STATUS"
	})

	if len(f.responses) != 2 {
		t.Fatalf("responses = %v, want 2 lines", f.responses)
	}
	if f.responses[0] != "ON=480 OFF=520 STATE=OFF" {
		t.Errorf("pre-sample status = %q", f.responses[0])
	}
	if f.responses[1] != "ON=480 OFF=520 STATE=ON VAL=300 RAWMIN=300 RAWMAX=300" {
		t.Errorf("post-sample status = %q", f.responses[1])
	}
}

func TestLoopSetAndSaveCommands(t *testing.T) {
	f := newLoopFixture([]int{600}, defaultLoopConfig(), 0)

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		commands <- "SET ON 500"
		commands <- "SAVE"
		commands <- "HELP"
		commands <- "BOGUS"
	})

	if got := f.d.ctrl.Thresholds(); got.On != 500 || got.Off != 520 {
		t.Errorf("thresholds = %+v, want On=500 Off=520", got)
	}
	if len(f.store.Saves) != 1 || f.store.Saves[0] != (logic.Thresholds{On: 500, Off: 520}) {
		t.Errorf("store saves = %+v, want [{500 520}]", f.store.Saves)
	}

	if len(f.responses) != 4 {
		t.Fatalf("responses = %v, want 4 lines", f.responses)
	}
	if f.responses[0] != "OK" {
		t.Errorf("set response = %q, want OK", f.responses[0])
	}
	if f.responses[1] != "SAVED" {
		t.Errorf("save response = %q, want SAVED", f.responses[1])
	}
	if !strings.Contains(f.responses[2], "STATUS") {
		t.Errorf("help response %q does not list STATUS", f.responses[2])
	}
	if !strings.HasPrefix(f.responses[3], "ERR") {
		t.Errorf("bogus response = %q, want ERR prefix", f.responses[3])
	}
}

func TestLoopSaveFailureReportsError(t *testing.T) {
	f := newLoopFixture([]int{600}, defaultLoopConfig(), 0)
	f.store.SaveError = os.ErrPermission

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		commands <- "SAVE"
	})

	if len(f.responses) != 1 || f.responses[0] != "ERR: save failed" {
		t.Errorf("responses = %v, want [ERR: save failed]", f.responses)
	}
}

func TestLoopSensorErrorSkipsTick(t *testing.T) {
	f := newLoopFixture([]int{400}, defaultLoopConfig(), 0)
	f.sensor.ReadError = os.ErrNotExist

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		tick <- time.Time{}
		tick <- time.Time{}
	})

	if len(f.relay.States) != 0 {
		t.Errorf("relay driven despite sensor errors: %v", f.relay.States)
	}
	if len(f.client.Events) != 0 {
		t.Errorf("events published despite sensor errors: %v", f.client.Events)
	}
}

func TestLoopTelemetryCadence(t *testing.T) {
	// Clock steps 50ms per tick, telemetry every 100ms: ticks 2 and 4 emit.
	f := newLoopFixture([]int{600}, defaultLoopConfig(), 100*time.Millisecond)

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		for i := 0; i < 5; i++ {
			tick <- time.Time{}
		}
	})

	if len(f.client.Telemetry) != 2 {
		t.Fatalf("published %d telemetry snapshots, want 2", len(f.client.Telemetry))
	}
	td := f.client.Telemetry[0]
	if td.Raw != 600 || td.State != logic.StateOff {
		t.Errorf("telemetry = raw %d state %s, want 600 OFF", td.Raw, td.State)
	}
}

func TestLoopShutdownPublishesEvent(t *testing.T) {
	f := newLoopFixture([]int{600}, defaultLoopConfig(), 0)

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {})

	if len(f.client.SystemEvents) != 1 {
		t.Fatalf("published %d system events, want 1", len(f.client.SystemEvents))
	}
	ev := f.client.SystemEvents[0]
	if ev.Event != "SHUTDOWN" || ev.Reason != "SIGTERM" {
		t.Errorf("system event = %s/%s, want SHUTDOWN/SIGTERM", ev.Event, ev.Reason)
	}
	if !ev.Retained {
		t.Error("shutdown event not retained")
	}
	if !strings.Contains(string(ev.RawPayload), `"event":"SHUTDOWN"`) {
		t.Errorf("shutdown payload missing event field: %s", ev.RawPayload)
	}
}

func TestLoopCalibrationPublished(t *testing.T) {
	cfg := defaultLoopConfig()
	cfg.Calibration = &logic.CalibratorConfig{
		Window:      100 * time.Millisecond,
		OnFraction:  0.35,
		OffFraction: 0.55,
		MinRange:    50,
	}
	f := newLoopFixture([]int{100, 600, 600}, cfg, 0)

	f.run(t, func(tick chan<- time.Time, commands chan<- string) {
		for i := 0; i < 3; i++ {
			tick <- time.Time{}
		}
	})

	var cal *logic.Event
	for i := range f.client.Events {
		if f.client.Events[i].Type == logic.EventCalibrated {
			cal = &f.client.Events[i]
			break
		}
	}
	if cal == nil {
		t.Fatalf("no calibration event in %v", f.client.Events)
	}
	if cal.Thresholds.On != 275 || cal.Thresholds.Off != 375 {
		t.Errorf("calibrated thresholds = %+v, want On=275 Off=375", cal.Thresholds)
	}
	if got := f.d.ctrl.Thresholds(); got != cal.Thresholds {
		t.Errorf("controller thresholds = %+v, want %+v", got, cal.Thresholds)
	}
}
