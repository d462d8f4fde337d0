package database

import (
	"context"
	"fmt"

	"leadtracker/internal/models"

	"github.com/rs/zerolog"
)

// Schema creates the leads table when it is missing.
type Schema struct {
	provider *Provider
	health   *HealthChecker
	logger   *zerolog.Logger
}

func NewSchema(provider *Provider, health *HealthChecker, logger *zerolog.Logger) *Schema {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Schema{provider: provider, health: health, logger: logger}
}

// EnsureSchema reports whether the table had to be created. Safe to call on every start.
func (s *Schema) EnsureSchema(ctx context.Context) (bool, error) {
	dialect := s.provider.Dialect()
	s.logger.Info().Str("engine", dialect.Name()).Msg("initializing database schema")

	status := s.health.CheckHealth(ctx)
	if !status.Reachable {
		s.logger.Error().Msg("cannot initialize schema without a database connection")
		return false, fmt.Errorf("%w: health check failed", ErrConnection)
	}

	db, err := s.provider.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer s.provider.Release(db)

	query, args := dialect.TableExistsQuery(s.provider.Config(), models.LeadsTable)
	var exists bool
	if err := db.QueryRowxContext(ctx, db.Rebind(query), args...).Scan(&exists); err != nil {
		return false, queryError("check leads table", err)
	}

	if exists {
		s.logger.Info().Str("table", models.LeadsTable).Msg("table already exists")
		return false, nil
	}

	if _, err := db.ExecContext(ctx, dialect.CreateLeadsTableSQL()); err != nil {
		s.logger.Error().Err(err).Str("table", models.LeadsTable).Msg("failed to create table")
		return false, queryError("create leads table", err)
	}

	s.logger.Info().Str("table", models.LeadsTable).Msg("table created")
	return true, nil
}
