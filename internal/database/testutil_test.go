package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"leadtracker/internal/config"
	"leadtracker/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const unreachableDriver = "leadtracker-unreachable"

var registerOnce sync.Once

// refusingDriver fails every connection attempt the way a down server would.
type refusingDriver struct{}

func (refusingDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("dial tcp 10.0.0.1:3306: connect: connection refused")
}

// unreachableDialect behaves like sqlite but connects through the failing driver.
type unreachableDialect struct {
	sqliteDialect
}

func (unreachableDialect) DriverName() string { return unreachableDriver }

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Engine:     models.EngineSQLite,
		Path:       filepath.Join(t.TempDir(), "leads.db"),
		MaxRetries: 1,
		RetryDelay: "0s",
	}
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	logger := zerolog.Nop()
	p, err := NewProvider(sqliteConfig(t), sqliteDialect{}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// newUnreachableProvider returns a provider that always fails and records the pauses it took.
func newUnreachableProvider(t *testing.T, attempts int) (*Provider, *[]time.Duration) {
	t.Helper()
	registerOnce.Do(func() {
		sql.Register(unreachableDriver, refusingDriver{})
	})

	cfg := config.DatabaseConfig{
		Engine:     models.EngineMySQL,
		Host:       "10.0.0.1",
		Port:       3306,
		Name:       "formulario",
		User:       "app",
		MaxRetries: attempts,
		RetryDelay: "2s",
	}
	logger := zerolog.Nop()
	p, err := NewProvider(cfg, unreachableDialect{}, &logger)
	require.NoError(t, err)

	var pauses []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return ctx.Err()
	}
	return p, &pauses
}

// newTestStore wires a provider, schema and repository on a fresh sqlite file.
func newTestStore(t *testing.T) (*LeadRepository, *Provider) {
	t.Helper()
	provider := newTestProvider(t)
	logger := zerolog.Nop()
	schema := NewSchema(provider, NewHealthChecker(provider, &logger), &logger)
	_, err := schema.EnsureSchema(context.Background())
	require.NoError(t, err)
	return NewLeadRepository(provider, &logger), provider
}

func sampleInput(email string) models.LeadInput {
	return models.LeadInput{
		FullName: "Ana Torres",
		Email:    email,
		Phone:    "+34 600 000 000",
		Interest: "Marketing Digital",
	}
}
