package gpio

import (
	"errors"
	"testing"
)

func TestFakeSensorScriptedSamples(t *testing.T) {
	f := NewFakeSensor([]int{100, 200, 300})

	for i, want := range []int{100, 200, 300} {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != want {
			t.Errorf("read %d: got %d, want %d", i, got, want)
		}
	}

	// Exhausted samples repeat the last one.
	got, err := f.Read()
	if err != nil {
		t.Fatalf("read after exhaustion: %v", err)
	}
	if got != 300 {
		t.Errorf("read after exhaustion: got %d, want 300", got)
	}
}

func TestFakeSensorNoSamples(t *testing.T) {
	f := NewFakeSensor(nil)
	if _, err := f.Read(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeSensorReadError(t *testing.T) {
	f := NewFakeSensor([]int{100})
	f.ReadError = errors.New("boom")
	if _, err := f.Read(); err == nil {
		t.Error("expected configured read error")
	}
}

func TestFakeRelayRecordsStates(t *testing.T) {
	f := NewFakeRelay()

	if f.Current() {
		t.Error("expected initial state false")
	}

	for _, on := range []bool{true, true, false} {
		if err := f.Set(on); err != nil {
			t.Fatalf("Set(%v): %v", on, err)
		}
	}

	if len(f.States) != 3 {
		t.Fatalf("expected 3 recorded states, got %d", len(f.States))
	}
	if !f.States[0] || !f.States[1] || f.States[2] {
		t.Errorf("states = %v, want [true true false]", f.States)
	}
	if f.Current() {
		t.Error("Current should reflect the last Set")
	}
}

func TestFakesClose(t *testing.T) {
	s := NewFakeSensor([]int{1})
	r := NewFakeRelay()
	if err := s.Close(); err != nil || !s.Closed {
		t.Error("sensor Close not recorded")
	}
	if err := r.Close(); err != nil || !r.Closed {
		t.Error("relay Close not recorded")
	}
}
