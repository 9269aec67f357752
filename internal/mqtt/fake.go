package mqtt

import (
	"github.com/sweeney/streetlight/internal/logic"
)

// FakeClient records published messages for test assertions and can feed
// scripted command lines through Commands.
type FakeClient struct {
	// Events contains all controller events that were published.
	Events []logic.Event

	// Telemetry contains all telemetry snapshots that were published.
	Telemetry []logic.TelemetryData

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// Responses contains all command response lines that were published.
	Responses []string

	// CommandCh is returned by Commands. Tests send scripted lines here.
	CommandCh chan string

	// PublishError, if set, will be returned by every Publish method.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{CommandCh: make(chan string, 16)}
}

// PublishEvent records the controller event.
func (f *FakeClient) PublishEvent(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Events = append(f.Events, event)
	return nil
}

// PublishTelemetry records the telemetry snapshot.
func (f *FakeClient) PublishTelemetry(td logic.TelemetryData) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Telemetry = append(f.Telemetry, td)
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// PublishResponse records the response line.
func (f *FakeClient) PublishResponse(line string) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Responses = append(f.Responses, line)
	return nil
}

// Commands returns the scripted command channel.
func (f *FakeClient) Commands() <-chan string {
	return f.CommandCh
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}
