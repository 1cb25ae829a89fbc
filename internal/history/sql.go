package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Dialect holds the driver-specific SQL.
type Dialect struct {
	Driver string
	Schema string
	Insert string
	Recent string
}

var (
	MySQL = Dialect{
		Driver: "mysql",
		Schema: `CREATE TABLE IF NOT EXISTS scan_runs (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	interface VARCHAR(255) NOT NULL,
	outcome VARCHAR(32) NOT NULL,
	message TEXT NOT NULL,
	exit_code INT NOT NULL,
	started_at DATETIME(6) NOT NULL,
	finished_at DATETIME(6) NOT NULL
)`,
		Insert: `INSERT INTO scan_runs (interface, outcome, message, exit_code, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		Recent: `SELECT id, interface, outcome, message, exit_code, started_at, finished_at FROM scan_runs ORDER BY id DESC LIMIT ?`,
	}

	Postgres = Dialect{
		Driver: "postgres",
		Schema: `CREATE TABLE IF NOT EXISTS scan_runs (
	id BIGSERIAL PRIMARY KEY,
	interface TEXT NOT NULL,
	outcome TEXT NOT NULL,
	message TEXT NOT NULL,
	exit_code INTEGER NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`,
		Insert: `INSERT INTO scan_runs (interface, outcome, message, exit_code, started_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		Recent: `SELECT id, interface, outcome, message, exit_code, started_at, finished_at FROM scan_runs ORDER BY id DESC LIMIT $1`,
	}
)

// DialectFor returns the dialect registered for driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQL, nil
	case "postgres":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported history driver %q", driver)
	}
}

// SQLStore persists runs in MySQL or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database. Call Migrate before use.
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLStore connects, pings and migrates the history database.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	if driver == "mysql" {
		dsn, err = mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history store: %w", driver, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s history store: %w", driver, err)
	}

	store := NewSQLStore(db, dialect)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// Migrate creates the scan_runs table if needed.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Schema); err != nil {
		return fmt.Errorf("failed to migrate history store: %w", err)
	}
	return nil
}

func (s *SQLStore) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Insert,
		run.Interface, run.Outcome, run.Message, run.ExitCode,
		run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record scan run: %w", err)
	}
	return nil
}

func (s *SQLStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Recent, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Interface, &r.Outcome, &r.Message, &r.ExitCode, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan runs: %w", err)
	}
	return runs, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Open builds the store selected by driver.
func Open(ctx context.Context, driver, dsn string, size int) (Store, error) {
	if driver == "" || driver == "memory" {
		return NewMemoryStore(size), nil
	}
	return OpenSQLStore(ctx, driver, dsn)
}
