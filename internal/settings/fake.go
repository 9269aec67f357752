package settings

import "github.com/sweeney/streetlight/internal/logic"

// FakeStore is a test double holding thresholds in memory.
type FakeStore struct {
	// Thresholds and Valid control what Load returns.
	Thresholds logic.Thresholds
	Valid      bool

	// Saves records every Save call in order.
	Saves []logic.Thresholds

	// LoadError, if set, will be returned by Load.
	LoadError error

	// SaveError, if set, will be returned by Save.
	SaveError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeStore creates an empty FakeStore (Load reports no valid record).
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Load returns the configured thresholds.
func (f *FakeStore) Load() (logic.Thresholds, bool, error) {
	if f.LoadError != nil {
		return logic.Thresholds{}, false, f.LoadError
	}
	return f.Thresholds, f.Valid, nil
}

// Save records the thresholds and makes them the current valid record,
// so a Load after Save behaves like a restart against the same database.
func (f *FakeStore) Save(t logic.Thresholds) error {
	if f.SaveError != nil {
		return f.SaveError
	}
	f.Saves = append(f.Saves, t)
	f.Thresholds = t
	f.Valid = true
	return nil
}

// Close marks the store as closed.
func (f *FakeStore) Close() error {
	f.Closed = true
	return nil
}
