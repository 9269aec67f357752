// Package gpio provides the light sensor input and relay output with
// hardware abstraction. The real sensor reads an ADC channel through the
// Linux Industrial I/O sysfs interface; the real relay drives GPIO lines
// through the GPIO character device. Fakes allow testing without hardware.
package gpio

// Sensor reads the ambient light level.
type Sensor interface {
	// Read returns the raw sensor value, 0..1023. Higher means brighter.
	Read() (int, error)

	// Close releases sensor resources.
	Close() error
}

// Relay drives the lighting relay (and an optional indicator output that
// mirrors it).
type Relay interface {
	// Set drives the relay to the given logical state. The mapping from
	// logical state to signal level depends on the configured polarity.
	Set(on bool) error

	// Close releases GPIO resources.
	Close() error
}

// Default wiring (BCM numbering, Raspberry Pi).
const (
	DefaultRelayPin     = 17
	DefaultIndicatorPin = 27
)

// DefaultSensorDevice is the IIO sysfs attribute for ADC channel 0
// (e.g. an MCP3008 with an LDR divider on channel 0).
const DefaultSensorDevice = "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"
