// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     store
// Description: SQLite backend for persistent script parameters
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig holds configuration for the SQLite backend
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/params.db",
	}
}

// SQLiteBackend implements ParamBackend using SQLite
type SQLiteBackend struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteBackend opens (and creates) the parameter database
func NewSQLiteBackend(cfg SQLiteConfig) (*SQLiteBackend, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return b, nil
}

// initSchema creates the necessary tables
func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persistent_params (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := b.db.Exec(schema)
	return err
}

// LoadAll implements ParamBackend
func (b *SQLiteBackend) LoadAll(ctx context.Context) (map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT name, value FROM persistent_params`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		values[name] = value
	}
	return values, rows.Err()
}

// Apply implements ParamBackend in a single transaction
func (b *SQLiteBackend) Apply(ctx context.Context, set map[string]string, deleted []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if len(set) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO persistent_params (name, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for name, value := range set {
			if _, err := stmt.ExecContext(ctx, name, value, now); err != nil {
				return fmt.Errorf("failed to store parameter %q: %w", name, err)
			}
		}
	}

	for _, name := range deleted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM persistent_params WHERE name = ?`, name); err != nil {
			return fmt.Errorf("failed to delete parameter %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// Close implements ParamBackend
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
