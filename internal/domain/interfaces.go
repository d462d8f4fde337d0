package domain

import (
	"context"
	"time"

	"leadtracker/internal/models"
)

type LeadRepository interface {
	Create(ctx context.Context, in models.LeadInput) (int64, error)
	List(ctx context.Context) ([]models.Lead, error)
	Get(ctx context.Context, id int64) (*models.Lead, error)
	Update(ctx context.Context, id int64, in models.LeadInput) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type HealthChecker interface {
	CheckHealth(ctx context.Context) models.HealthStatus
}

type SchemaInitializer interface {
	EnsureSchema(ctx context.Context) (bool, error)
}

// SubmissionLimiter counts submissions per key inside a fixed window.
type SubmissionLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type LeadService interface {
	Submit(ctx context.Context, in models.LeadInput) (int64, error)
	List(ctx context.Context) ([]models.Lead, error)
	Get(ctx context.Context, id int64) (*models.Lead, error)
	Edit(ctx context.Context, id int64, in models.LeadInput) error
	Remove(ctx context.Context, id int64) error
	Health(ctx context.Context) models.HealthStatus
	Interests() []string
}
