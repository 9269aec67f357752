package gpio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IIOSensor reads raw ADC values from a Linux Industrial I/O sysfs attribute.
// Each Read opens and reads the attribute; the kernel performs the
// conversion on demand, so there is no state to hold between reads.
type IIOSensor struct {
	path string
}

// NewIIOSensor creates a sensor backed by the given sysfs attribute path.
// It fails fast if the attribute cannot be read, so misconfigured wiring
// surfaces at startup rather than on the first sample tick.
func NewIIOSensor(path string) (*IIOSensor, error) {
	s := &IIOSensor{path: path}
	if _, err := s.Read(); err != nil {
		return nil, fmt.Errorf("probe sensor: %w", err)
	}
	return s, nil
}

// Read returns the current raw ADC value.
func (s *IIOSensor) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.path, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return v, nil
}

// Close releases nothing; the sysfs attribute is opened per read.
func (s *IIOSensor) Close() error {
	return nil
}
