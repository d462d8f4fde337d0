package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadtracker/internal/config"
	"leadtracker/internal/metrics"
	"leadtracker/internal/retry"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Provider opens database handles with bounded, fixed-delay retry.
// Unless cfg.Pooled is set, every Acquire opens a fresh single-connection
// handle and Release closes it.
type Provider struct {
	cfg     config.DatabaseConfig
	dialect Dialect
	policy  retry.Policy
	logger  *zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	shared *sqlx.DB
}

func NewProvider(cfg config.DatabaseConfig, dialect Dialect, logger *zerolog.Logger) (*Provider, error) {
	if dialect == nil {
		return nil, errors.New("dialect is required")
	}
	delay, err := cfg.RetryDelayDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid retry delay: %w", err)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if p, ok := dialect.(preparer); ok {
		if err := p.prepare(cfg); err != nil {
			return nil, err
		}
	}

	return &Provider{
		cfg:     cfg,
		dialect: dialect,
		policy:  retry.Fixed(cfg.MaxRetries, delay),
		logger:  logger,
		sleep:   retry.Sleep,
	}, nil
}

// Dialect returns the dialect the provider connects with.
func (p *Provider) Dialect() Dialect {
	return p.dialect
}

// Config returns the database settings the provider was built with.
func (p *Provider) Config() config.DatabaseConfig {
	return p.cfg
}

// Acquire returns a live handle or an error wrapping ErrConnection once all attempts failed.
// In pooled mode the lock only guards the shared handle; dialing happens outside it.
func (p *Provider) Acquire(ctx context.Context) (*sqlx.DB, error) {
	if !p.cfg.Pooled {
		return p.dial(ctx)
	}

	if db := p.sharedHandle(); db != nil {
		return db, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, connectionError(err)
	}

	db, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shared != nil {
		// another caller published first
		_ = db.Close()
		return p.shared, nil
	}
	p.shared = db
	return db, nil
}

func (p *Provider) sharedHandle() *sqlx.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shared
}

func (p *Provider) dial(ctx context.Context) (*sqlx.DB, error) {
	attempts := p.policy.Attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := p.connect(ctx)
		if err == nil {
			metrics.IncConnectAttempt("success")
			p.logger.Info().
				Str("engine", p.dialect.Name()).
				Str("host", p.cfg.Host).
				Int("attempt", attempt).
				Msg("database connection established")
			return db, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		delay := p.policy.NextDelay(attempt)
		metrics.IncConnectAttempt("retry")
		p.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("retry_in", delay).
			Msg("database connection failed, retrying")

		if err := p.sleep(ctx, delay); err != nil {
			metrics.IncConnectAttempt("failure")
			return nil, connectionError(fmt.Errorf("retry aborted: %w", err))
		}
	}

	metrics.IncConnectAttempt("failure")
	p.logger.Error().
		Err(lastErr).
		Str("engine", p.dialect.Name()).
		Str("host", p.cfg.Host).
		Int("attempts", attempts).
		Msg("could not connect to database")
	return nil, connectionError(lastErr)
}

func (p *Provider) connect(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open(p.dialect.DriverName(), p.dialect.DSN(p.cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if !p.cfg.Pooled {
		db.SetMaxOpenConns(1)
	}

	pingCtx := ctx
	if p.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.ConnectTimeout)*time.Second)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Release closes a handle obtained from Acquire. Pooled handles stay open.
func (p *Provider) Release(db *sqlx.DB) {
	if db == nil || p.cfg.Pooled {
		return
	}
	if err := db.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to close database connection")
	}
}

// Close drops the shared handle in pooled mode.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shared == nil {
		return nil
	}
	err := p.shared.Close()
	p.shared = nil
	return err
}
