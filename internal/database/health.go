package database

import (
	"context"

	"leadtracker/internal/models"

	"github.com/rs/zerolog"
)

// HealthChecker probes the database and reports its version.
type HealthChecker struct {
	provider *Provider
	logger   *zerolog.Logger
}

func NewHealthChecker(provider *Provider, logger *zerolog.Logger) *HealthChecker {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &HealthChecker{provider: provider, logger: logger}
}

// CheckHealth never returns an error: an unreachable or broken database is reported as Reachable=false.
func (h *HealthChecker) CheckHealth(ctx context.Context) models.HealthStatus {
	dialect := h.provider.Dialect()
	status := models.HealthStatus{Engine: dialect.Name()}

	db, err := h.provider.Acquire(ctx)
	if err != nil {
		return status
	}
	defer h.provider.Release(db)

	var version string
	if err := db.QueryRowxContext(ctx, dialect.VersionQuery()).Scan(&version); err != nil {
		h.logger.Error().Err(err).Str("engine", dialect.Name()).Msg("version query failed")
		return status
	}

	status.Reachable = true
	status.Version = version
	h.logger.Debug().Str("engine", dialect.Name()).Str("db_version", version).Msg("database is healthy")
	return status
}
