// Package sqlite persists request records to a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"home-ai/internal/application"
	"home-ai/internal/domain"
)

const driverName = "sqlite"

const schemaRequestLogs = `
CREATE TABLE IF NOT EXISTS request_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    input_type TEXT NOT NULL,
    input_text TEXT NOT NULL,
    output_text TEXT NOT NULL,
    commands TEXT,
    duration_ms INTEGER NOT NULL
);
`

// Open opens or creates the database file and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite tolerates a single writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaRequestLogs); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply request_logs schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

// Store implements application.RequestStore over a request_logs table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) LogRequest(ctx context.Context, rec application.RequestRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	} else {
		rec.CreatedAt = rec.CreatedAt.UTC()
	}

	var commandsPtr *string
	if len(rec.Commands) > 0 {
		b, err := json.Marshal(rec.Commands)
		if err != nil {
			return fmt.Errorf("encoding commands: %w", err)
		}
		str := string(b)
		commandsPtr = &str
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_logs (request_id, created_at, input_type, input_text, output_text, commands, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RequestID,
		rec.CreatedAt.Format("2006-01-02 15:04:05"),
		rec.InputType,
		rec.InputText,
		rec.OutputText,
		commandsPtr,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting request log: %w", err)
	}
	return nil
}

func (s *Store) RecentRequests(ctx context.Context, limit int) ([]application.RequestRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, created_at, input_type, input_text, output_text, commands, duration_ms
		FROM request_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying request logs: %w", err)
	}
	defer rows.Close()

	out := make([]application.RequestRecord, 0, limit)
	for rows.Next() {
		var (
			rec         application.RequestRecord
			commandsStr sql.NullString
			durationMs  int64
		)
		if err := rows.Scan(&rec.RequestID, &rec.CreatedAt, &rec.InputType, &rec.InputText, &rec.OutputText, &commandsStr, &durationMs); err != nil {
			return nil, fmt.Errorf("scanning request log: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		rec.Duration = time.Duration(durationMs) * time.Millisecond

		if commandsStr.Valid && commandsStr.String != "" {
			var commands []domain.ExecutedCommand
			if err := json.Unmarshal([]byte(commandsStr.String), &commands); err != nil {
				return nil, fmt.Errorf("decoding commands for %s: %w", rec.RequestID, err)
			}
			rec.Commands = commands
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
