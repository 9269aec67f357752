// Package settings persists hysteresis thresholds across restarts.
// The real implementation uses SQLite; a record is only trusted when its
// magic marker matches, mirroring the EEPROM layout of earlier hardware
// revisions. Anything else means "use defaults".
package settings

import "github.com/sweeney/streetlight/internal/logic"

// magic marks a threshold record as valid. Kept equal to the value the
// original firmware wrote to EEPROM so a migration tool can recognize both.
const magic = 0x5AA5

// Store loads and saves the threshold pair.
type Store interface {
	// Load returns the persisted thresholds. ok is false when no valid
	// record exists; that is not an error.
	Load() (t logic.Thresholds, ok bool, err error)

	// Save persists the thresholds, overwriting any previous record.
	Save(t logic.Thresholds) error

	// Close releases the underlying storage.
	Close() error
}
