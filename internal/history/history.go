// Package history persists processed commands in a local SQLite database so
// users can review what the assistant did on their machine.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Record is one processed command.
type Record struct {
	ID        string         `json:"id"`
	Input     string         `json:"input"`
	Action    string         `json:"action"`
	Params    map[string]any `json:"params,omitempty"`
	Message   string         `json:"message"`
	Success   bool           `json:"success"`
	Executed  bool           `json:"executed"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store is a SQLite-backed command log. Safe for concurrent use; the
// connection pool is capped at one because SQLite serializes writers anyway.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	action     TEXT NOT NULL,
	params     TEXT NOT NULL DEFAULT '{}',
	message    TEXT NOT NULL DEFAULT '',
	success    INTEGER NOT NULL DEFAULT 0,
	executed   INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_commands_created_at ON commands(created_at DESC);
`

// Open creates or opens the database at path, creating parent directories as
// needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	log.Debug("history store opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Append logs one processed command. Satisfies the engine's Recorder
// interface.
func (s *Store) Append(ctx context.Context, input, action, message string, params map[string]any, success, executed bool) error {
	if params == nil {
		params = map[string]any{}
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO commands (id, input, action, params, message, success, executed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), input, action, string(paramsJSON), message,
		boolToInt(success), boolToInt(executed), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// Recent returns the latest n records, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, action, params, message, success, executed, created_at
		 FROM commands ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var paramsJSON string
		var success, executed int
		if err := rows.Scan(&rec.ID, &rec.Input, &rec.Action, &paramsJSON,
			&rec.Message, &success, &executed, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &rec.Params); err != nil {
			s.log.Warn("corrupt params in history record",
				zap.String("id", rec.ID), zap.Error(err))
			rec.Params = map[string]any{}
		}
		rec.Success = success != 0
		rec.Executed = executed != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commands`).Scan(&n)
	return n, err
}

// Prune deletes records older than cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM commands WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
