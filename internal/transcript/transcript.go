// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript keeps an append-only SQLite log of every exchange
// for later review.
//
// A nil *Log is valid and records nothing, so callers can leave the log
// disabled without branching.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one logged message.
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Log is a transcript database.
type Log struct {
	db *sql.DB
	// mu serializes writes to avoid SQLITE_BUSY under concurrent sessions.
	mu sync.Mutex
}

// Open opens or creates the transcript database at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping transcript: %w", err)
	}

	l := &Log{db: db}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize transcript schema: %w", err)
	}
	return l, nil
}

func (l *Log) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		kind TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
	`
	if _, err := l.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record appends e. Missing ID and CreatedAt are filled in.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if l == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO entries (id, session_id, role, kind, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Role, e.Kind, e.Content, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert transcript entry: %w", err)
	}
	return nil
}

// RecordExchange logs a user input and the bot's reply as two entries.
func (l *Log) RecordExchange(ctx context.Context, sessionID, input, kind, reply string) error {
	if l == nil {
		return nil
	}
	now := time.Now()
	if err := l.Record(ctx, Entry{SessionID: sessionID, Role: "user", Kind: "input", Content: input, CreatedAt: now}); err != nil {
		return err
	}
	return l.Record(ctx, Entry{SessionID: sessionID, Role: "assistant", Kind: kind, Content: reply, CreatedAt: now.Add(time.Nanosecond)})
}

// Recent returns up to limit of the newest entries, oldest first. An empty
// sessionID selects all sessions.
func (l *Log) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if l == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, session_id, role, kind, content, created_at FROM entries`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Kind, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript rows: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Close closes the database.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
