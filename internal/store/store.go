// Package store persists hr records in a SQLite file. Each record is kept as
// a JSON document next to the few columns used for lookups and ordering.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ensa-hoceima/hr-assistant/internal/logger"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateSerial = errors.New("serial number must be unique across all equipment")
)

const schema = `
CREATE TABLE IF NOT EXISTS employees (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	department TEXT,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	state TEXT NOT NULL,
	date TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_employee_id ON evaluations(employee_id);

CREATE TABLE IF NOT EXISTS internships (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	supervisor_id TEXT,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS checkins (
	id TEXT PRIMARY KEY,
	internship_id TEXT NOT NULL,
	date TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkins_internship_id ON checkins(internship_id);

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	supervisor_id TEXT NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trainings (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment (
	id TEXT PRIMARY KEY,
	serial_number TEXT UNIQUE,
	state TEXT NOT NULL,
	data TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assistant_chats (
	id TEXT PRIMARY KEY,
	asked_at TEXT NOT NULL,
	data TEXT NOT NULL
);
`

type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating when needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(path string, log *zap.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	log = logger.OrNop(log).Named("store")
	log.Debug("database opened", zap.String("path", path))
	return &Store{db: db, logger: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// put runs query with args followed by v encoded as JSON.
func (s *Store) put(ctx context.Context, query string, v any, args ...any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, append(args, string(data))...)
	return err
}

func one[T any](ctx context.Context, db *sql.DB, query string, args ...any) (*T, error) {
	var data string
	err := db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &v, nil
}

func many[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// timeLayout keeps a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func timestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
