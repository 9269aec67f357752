//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealRelay drives the relay (and optional indicator) through the Linux
// GPIO character device.
type RealRelay struct {
	chip       *gpiocdev.Chip
	relay      *gpiocdev.Line
	indicator  *gpiocdev.Line // nil when no indicator is wired
	activeHigh bool
}

// NewRealRelay requests the relay output line and, when indicatorPin >= 0,
// the indicator line. activeHigh selects which signal level means "relay
// energized" — relay boards come in both flavors. Both outputs start at the
// inactive level.
func NewRealRelay(relayPin, indicatorPin int, activeHigh bool) (*RealRelay, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealRelay{chip: chip, activeHigh: activeHigh}

	relayLine, err := chip.RequestLine(relayPin, gpiocdev.AsOutput(r.level(false)))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", relayPin, err)
	}
	r.relay = relayLine

	if indicatorPin >= 0 {
		indLine, err := chip.RequestLine(indicatorPin, gpiocdev.AsOutput(0))
		if err != nil {
			relayLine.Close()
			chip.Close()
			return nil, fmt.Errorf("request indicator pin %d: %w", indicatorPin, err)
		}
		r.indicator = indLine
	}

	return r, nil
}

// level maps a logical relay state to a signal level per polarity.
func (r *RealRelay) level(on bool) int {
	if on == r.activeHigh {
		return 1
	}
	return 0
}

// Set drives the relay to the given logical state. The indicator always
// uses positive logic regardless of relay polarity.
func (r *RealRelay) Set(on bool) error {
	if err := r.relay.SetValue(r.level(on)); err != nil {
		return fmt.Errorf("set relay: %w", err)
	}
	if r.indicator != nil {
		v := 0
		if on {
			v = 1
		}
		if err := r.indicator.SetValue(v); err != nil {
			return fmt.Errorf("set indicator: %w", err)
		}
	}
	return nil
}

// Close de-energizes the relay and releases the GPIO lines.
func (r *RealRelay) Close() error {
	var errs []error

	if r.relay != nil {
		if err := r.relay.SetValue(r.level(false)); err != nil {
			errs = append(errs, fmt.Errorf("release relay: %w", err))
		}
		if err := r.relay.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay line: %w", err))
		}
	}
	if r.indicator != nil {
		if err := r.indicator.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release indicator: %w", err))
		}
		if err := r.indicator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close indicator line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
