package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 2

// timeLayout keeps sub-second precision so updated_at always advances.
const timeLayout = time.RFC3339Nano

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=FULL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return fmt.Errorf("v1: %w", err)
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return fmt.Errorf("v2: %w", err)
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS recipes (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		meal_type   TEXT NOT NULL,
		kcal        REAL NOT NULL DEFAULT 0,
		protein_g   REAL NOT NULL DEFAULT 0,
		lipid_g     REAL NOT NULL DEFAULT 0,
		carb_g      REAL NOT NULL DEFAULT 0,
		is_default  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_type ON recipes(meal_type);
	CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(name);

	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id   TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		id          TEXT NOT NULL,
		name        TEXT NOT NULL,
		quantity    REAL NOT NULL DEFAULT 0,
		unit        TEXT NOT NULL DEFAULT 'g',
		kcal        REAL NOT NULL DEFAULT 0,
		protein_g   REAL NOT NULL DEFAULT 0,
		lipid_g     REAL NOT NULL DEFAULT 0,
		carb_g      REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (recipe_id, position)
	);

	CREATE TABLE IF NOT EXISTS day_progress (
		date              TEXT PRIMARY KEY,
		breakfast         INTEGER NOT NULL DEFAULT 0,
		lunch             INTEGER NOT NULL DEFAULT 0,
		dinner            INTEGER NOT NULL DEFAULT 0,
		snack             INTEGER NOT NULL DEFAULT 0,
		shake             INTEGER NOT NULL DEFAULT 0,
		activity          INTEGER NOT NULL DEFAULT 0,
		supplements       TEXT NOT NULL DEFAULT '[]',
		selected_meals    TEXT NOT NULL DEFAULT '{}',
		selected_activity TEXT NOT NULL DEFAULT '',
		updated_at        TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('activity_minutes', '45'),
		('locale',           'fr');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 adds the profile singleton.
func (s *Store) migrateV2() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS user_profile (
		id                  TEXT PRIMARY KEY,
		weight_kg           REAL NOT NULL,
		height_cm           REAL NOT NULL,
		age                 INTEGER NOT NULL,
		sex                 TEXT NOT NULL,
		activity_multiplier REAL NOT NULL,
		activity_label      TEXT NOT NULL DEFAULT '',
		goal                TEXT NOT NULL,
		diet_type           TEXT NOT NULL,
		bmr                 REAL NOT NULL,
		tdee                INTEGER NOT NULL,
		target_calories     INTEGER NOT NULL,
		target_protein_g    INTEGER NOT NULL,
		target_lipid_g      INTEGER NOT NULL,
		target_carb_g       INTEGER NOT NULL,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
