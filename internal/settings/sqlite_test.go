package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sweeney/streetlight/internal/logic"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.Disabled)
}

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.db")
	store, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadEmpty(t *testing.T) {
	store := setupTestStore(t)

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("expected ok=false on empty store")
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := setupTestStore(t)

	want := logic.Thresholds{On: 500, Off: 520}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected a valid record after Save")
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := setupTestStore(t)

	if err := store.Save(logic.Thresholds{On: 100, Off: 200}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	want := logic.Thresholds{On: 480, Off: 520}
	if err := store.Save(want); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestWrongMagicMeansAbsent(t *testing.T) {
	store := setupTestStore(t)

	// A record written by something else (or corrupted) must be ignored.
	_, err := store.db.Exec(
		`INSERT INTO thresholds (id, magic, on_threshold, off_threshold) VALUES (1, ?, 480, 520)`,
		0x1234)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("expected ok=false for wrong magic")
	}
}

func TestSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	store, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	want := logic.Thresholds{On: 300, Off: 400}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Load()
	if err != nil || !ok {
		t.Fatalf("Load after reopen: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}
