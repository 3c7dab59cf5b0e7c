package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:wsgrades.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/wsgrades?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer; avoids SQLITE_BUSY between the run and event inserts
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: schema: %w", err)
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS grade_runs (
  id TEXT PRIMARY KEY,
  workshop_title TEXT NOT NULL DEFAULT '',
  course_title TEXT NOT NULL DEFAULT '',
  course_id INTEGER NOT NULL,
  group_ids_json TEXT NOT NULL,
  group_scores_json TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS grade_rows (
  run_id TEXT NOT NULL REFERENCES grade_runs(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  id_number INTEGER,            -- NULL when the roster has none
  name TEXT NOT NULL,
  group_id TEXT NOT NULL,
  submission REAL,              -- NULL is the "-" grade
  assessment REAL,
  overall REAL NOT NULL,
  PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                     -- e.g., GradesComputed
  ref TEXT NOT NULL,                     -- natural key: runID
  data TEXT NOT NULL,                    -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS grade_runs (
  id TEXT PRIMARY KEY,
  workshop_title TEXT NOT NULL DEFAULT '',
  course_title TEXT NOT NULL DEFAULT '',
  course_id BIGINT NOT NULL,
  group_ids_json TEXT NOT NULL,
  group_scores_json TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS grade_rows (
  run_id TEXT NOT NULL REFERENCES grade_runs(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  id_number BIGINT,
  name TEXT NOT NULL,
  group_id TEXT NOT NULL,
  submission DOUBLE PRECISION,
  assessment DOUBLE PRECISION,
  overall DOUBLE PRECISION NOT NULL,
  PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  ref TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
