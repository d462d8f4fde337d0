package database

import (
	"fmt"
	"strings"

	"leadtracker/internal/config"
	"leadtracker/internal/models"
)

// Dialect hides the engine-specific SQL and driver details from the repository.
// Queries are written with "?" placeholders and rebound by sqlx for the driver.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(cfg config.DatabaseConfig) string
	// TableExistsQuery returns a query yielding a single boolean-compatible column.
	TableExistsQuery(cfg config.DatabaseConfig, table string) (string, []any)
	CreateLeadsTableSQL() string
	VersionQuery() string
	// InsertReturnsID reports whether INSERT ... RETURNING id must be used instead of LastInsertId.
	InsertReturnsID() bool
	IsDuplicateKey(err error) bool
}

// preparer is implemented by dialects that need local setup before the first connection.
type preparer interface {
	prepare(cfg config.DatabaseConfig) error
}

// NewDialect selects the dialect for the configured engine.
func NewDialect(engine string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case models.EngineMySQL:
		return mysqlDialect{}, nil
	case models.EnginePostgres, "postgresql":
		return postgresDialect{}, nil
	case models.EngineSQLite, "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database engine %q", engine)
	}
}
