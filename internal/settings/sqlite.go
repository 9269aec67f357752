package settings

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/sweeney/streetlight/internal/logic"
)

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps the threshold record in a single-row SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens (creating if needed) the settings database at path.
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	// Single writer; the loop saves synchronously and rarely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info().Str("path", path).Msg("settings store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS thresholds (
			id            INTEGER PRIMARY KEY CHECK (id = 1),
			magic         INTEGER NOT NULL,
			on_threshold  INTEGER NOT NULL,
			off_threshold INTEGER NOT NULL
		)`)
	return err
}

// Load returns the persisted thresholds. A missing row or a row with the
// wrong magic marker yields ok=false and no error.
func (s *SQLiteStore) Load() (logic.Thresholds, bool, error) {
	var m, on, off int
	row := s.db.QueryRow(`SELECT magic, on_threshold, off_threshold FROM thresholds WHERE id = 1`)
	if err := row.Scan(&m, &on, &off); err != nil {
		if err == sql.ErrNoRows {
			return logic.Thresholds{}, false, nil
		}
		return logic.Thresholds{}, false, fmt.Errorf("load thresholds: %w", err)
	}
	if m != magic {
		s.logger.Warn().Int("magic", m).Msg("settings record has wrong magic, using defaults")
		return logic.Thresholds{}, false, nil
	}
	return logic.Thresholds{On: on, Off: off}, true, nil
}

// Save overwrites the threshold record.
func (s *SQLiteStore) Save(t logic.Thresholds) error {
	_, err := s.db.Exec(`
		INSERT INTO thresholds (id, magic, on_threshold, off_threshold)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			magic = excluded.magic,
			on_threshold = excluded.on_threshold,
			off_threshold = excluded.off_threshold`,
		magic, t.On, t.Off)
	if err != nil {
		return fmt.Errorf("save thresholds: %w", err)
	}
	s.logger.Debug().Int("on", t.On).Int("off", t.Off).Msg("thresholds saved")
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
