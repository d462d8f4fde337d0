package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"leadtracker/internal/config"
	"leadtracker/internal/models"

	"github.com/mattn/go-sqlite3"
)

// sqliteDialect is meant for local development and tests, not production traffic.
type sqliteDialect struct{}

func (sqliteDialect) Name() string { return models.EngineSQLite }

func (sqliteDialect) DriverName() string { return "sqlite3" }

func (sqliteDialect) DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", cfg.Path)
}

func (sqliteDialect) prepare(cfg config.DatabaseConfig) error {
	if cfg.Path == ":memory:" {
		return nil
	}
	// Создаем директорию для БД, если её нет
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func (sqliteDialect) TableExistsQuery(_ config.DatabaseConfig, table string) (string, []any) {
	return `SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = ?`, []any{table}
}

func (sqliteDialect) CreateLeadsTableSQL() string {
	return `CREATE TABLE leads (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            full_name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            phone TEXT,
            interest TEXT NOT NULL,
            registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`
}

func (sqliteDialect) VersionQuery() string { return `SELECT sqlite_version()` }

func (sqliteDialect) InsertReturnsID() bool { return false }

func (sqliteDialect) IsDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
