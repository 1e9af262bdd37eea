package app

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/gleamweb/gleamweb/utils"
	_ "modernc.org/sqlite"
)

// HomePage is the page key seeded at store initialization and counted by
// the index handler.
const HomePage = "homepage"

// SQLiteStore ...
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the backing file, ensures the
// view_stats table exists and seeds the homepage row. Safe to call against
// an already-initialized store.
func NewSQLiteStore(path string) (Store, error) {
	if !utils.FileExists(path) {
		log.Debugf("creating view stats database at %s", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening store %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("error setting pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS view_stats (
			page TEXT PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing view_stats schema: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO view_stats (page, count) VALUES (?, 0)
		 ON CONFLICT(page) DO NOTHING`,
		HomePage,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error seeding %s row: %w", HomePage, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close ...
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Views returns the stored count for page, or 0 if no row exists.
func (s *SQLiteStore) Views(page string) (int64, error) {
	var views int64
	err := s.db.QueryRow(
		`SELECT count FROM view_stats WHERE page = ?`,
		page,
	).Scan(&views)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		err := fmt.Errorf("error getting views for %s: %w", page, err)
		log.Error(err)
		return 0, err
	}
	return views, nil
}

// IncViews increments the count for page and returns the new value. The
// row is created on first increment.
func (s *SQLiteStore) IncViews(page string) (int64, error) {
	var views int64
	err := s.db.QueryRow(
		`INSERT INTO view_stats (page, count) VALUES (?, 1)
		 ON CONFLICT(page) DO UPDATE SET count = count + 1
		 RETURNING count`,
		page,
	).Scan(&views)
	if err != nil {
		err := fmt.Errorf("error storing updated views for %s: %w", page, err)
		log.Error(err)
		return 0, err
	}
	return views, nil
}
