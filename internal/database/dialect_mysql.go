package database

import (
	"errors"
	"net"
	"strconv"
	"time"

	"leadtracker/internal/config"
	"leadtracker/internal/models"

	"github.com/go-sql-driver/mysql"
)

// ER_DUP_ENTRY
const mysqlDuplicateEntry = 1062

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return models.EngineMySQL }

func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(cfg config.DatabaseConfig) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = cfg.Name
	c.ParseTime = true
	c.Loc = time.UTC
	// affected rows must count matched rows, not only changed ones
	c.ClientFoundRows = true
	c.Timeout = time.Duration(cfg.ConnectTimeout) * time.Second
	c.Params = map[string]string{
		"charset": "utf8mb4",
		// session clock matches Loc so TIMESTAMP values round-trip unshifted
		"time_zone": "'+00:00'",
	}
	return c.FormatDSN()
}

func (mysqlDialect) TableExistsQuery(cfg config.DatabaseConfig, table string) (string, []any) {
	return `SELECT COUNT(*) > 0
            FROM information_schema.tables
            WHERE table_schema = ? AND table_name = ?`, []any{cfg.Name, table}
}

func (mysqlDialect) CreateLeadsTableSQL() string {
	return `CREATE TABLE leads (
            id INT AUTO_INCREMENT PRIMARY KEY,
            full_name VARCHAR(100) NOT NULL,
            email VARCHAR(100) UNIQUE NOT NULL,
            phone VARCHAR(20),
            interest VARCHAR(100) NOT NULL,
            registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        ) DEFAULT CHARSET=utf8mb4`
}

func (mysqlDialect) VersionQuery() string { return `SELECT VERSION()` }

func (mysqlDialect) InsertReturnsID() bool { return false }

func (mysqlDialect) IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
