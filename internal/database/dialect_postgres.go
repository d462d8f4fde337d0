package database

import (
	"errors"
	"net"
	"net/url"
	"strconv"

	"leadtracker/internal/config"
	"leadtracker/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// SQLSTATE unique_violation
const pgUniqueViolation = "23505"

type postgresDialect struct{}

func (postgresDialect) Name() string { return models.EnginePostgres }

func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) DSN(cfg config.DatabaseConfig) string {
	query := url.Values{}
	if cfg.SSLMode != "" {
		query.Set("sslmode", cfg.SSLMode)
	}
	if cfg.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(cfg.ConnectTimeout))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (postgresDialect) TableExistsQuery(_ config.DatabaseConfig, table string) (string, []any) {
	return `SELECT EXISTS (
                SELECT 1 FROM information_schema.tables
                WHERE table_schema = current_schema() AND table_name = ?
            )`, []any{table}
}

func (postgresDialect) CreateLeadsTableSQL() string {
	return `CREATE TABLE leads (
            id SERIAL PRIMARY KEY,
            full_name VARCHAR(100) NOT NULL,
            email VARCHAR(100) UNIQUE NOT NULL,
            phone VARCHAR(20),
            interest VARCHAR(100) NOT NULL,
            registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`
}

func (postgresDialect) VersionQuery() string { return `SELECT version()` }

func (postgresDialect) InsertReturnsID() bool { return true }

func (postgresDialect) IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
