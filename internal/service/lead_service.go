package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"leadtracker/internal/database"
	"leadtracker/internal/domain"
	"leadtracker/internal/metrics"
	"leadtracker/internal/models"

	"github.com/rs/zerolog"
)

const (
	ReasonRequired = "is required"
	ReasonTooLong  = "is too long"
	ReasonInvalid  = "is not a valid address"
)

// ValidationError rejects input before it reaches storage.
type ValidationError struct {
	Field  string
	Reason string
	Max    int
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonTooLong {
		return fmt.Sprintf("%s must be at most %d characters", e.Field, e.Max)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type LeadService struct {
	repo      domain.LeadRepository
	health    domain.HealthChecker
	interests []string
	logger    *zerolog.Logger
}

func NewLeadService(repo domain.LeadRepository, health domain.HealthChecker, interests []string, logger *zerolog.Logger) *LeadService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if len(interests) == 0 {
		interests = models.DefaultInterests
	}
	return &LeadService{
		repo:      repo,
		health:    health,
		interests: append([]string(nil), interests...),
		logger:    logger,
	}
}

// Interests returns the services offered on the form.
func (s *LeadService) Interests() []string {
	return append([]string(nil), s.interests...)
}

// Submit validates and stores a new lead.
func (s *LeadService) Submit(ctx context.Context, in models.LeadInput) (int64, error) {
	in = in.Trimmed()
	if err := Validate(in); err != nil {
		metrics.IncLeadOperation("create", "invalid")
		return 0, err
	}

	id, err := s.repo.Create(ctx, in)
	if err != nil {
		metrics.IncLeadOperation("create", resultOf(err))
		return 0, err
	}

	metrics.IncLeadOperation("create", "success")
	return id, nil
}

func (s *LeadService) List(ctx context.Context) ([]models.Lead, error) {
	leads, err := s.repo.List(ctx)
	metrics.IncLeadOperation("list", resultOf(err))
	return leads, err
}

func (s *LeadService) Get(ctx context.Context, id int64) (*models.Lead, error) {
	lead, err := s.repo.Get(ctx, id)
	metrics.IncLeadOperation("get", resultOf(err))
	return lead, err
}

// Edit validates and rewrites a lead. An id that matched nothing is logged, not reported.
func (s *LeadService) Edit(ctx context.Context, id int64, in models.LeadInput) error {
	in = in.Trimmed()
	if err := Validate(in); err != nil {
		metrics.IncLeadOperation("update", "invalid")
		return err
	}

	affected, err := s.repo.Update(ctx, id, in)
	if err != nil {
		metrics.IncLeadOperation("update", resultOf(err))
		return err
	}
	if affected == 0 {
		s.logger.Warn().Int64("lead_id", id).Msg("update matched no lead")
	}

	metrics.IncLeadOperation("update", "success")
	return nil
}

// Remove deletes a lead. Deleting an unknown id succeeds.
func (s *LeadService) Remove(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		metrics.IncLeadOperation("delete", resultOf(err))
		return err
	}
	if affected == 0 {
		s.logger.Warn().Int64("lead_id", id).Msg("delete matched no lead")
	}

	metrics.IncLeadOperation("delete", "success")
	return nil
}

func (s *LeadService) Health(ctx context.Context) models.HealthStatus {
	return s.health.CheckHealth(ctx)
}

// Validate checks an already trimmed input.
func Validate(in models.LeadInput) error {
	required := []struct {
		field, value string
		max          int
	}{
		{"full_name", in.FullName, models.MaxFullNameLen},
		{"email", in.Email, models.MaxEmailLen},
		{"interest", in.Interest, models.MaxInterestLen},
	}
	for _, r := range required {
		if r.value == "" {
			return &ValidationError{Field: r.field, Reason: ReasonRequired}
		}
		if n := len([]rune(r.value)); n > r.max {
			return &ValidationError{Field: r.field, Reason: ReasonTooLong, Max: r.max}
		}
	}

	if len([]rune(in.Phone)) > models.MaxPhoneLen {
		return &ValidationError{Field: "phone", Reason: ReasonTooLong, Max: models.MaxPhoneLen}
	}

	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return &ValidationError{Field: "email", Reason: ReasonInvalid}
	}

	return nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, database.ErrDuplicateEmail):
		return "duplicate"
	case errors.Is(err, database.ErrNotFound):
		return "not_found"
	case errors.Is(err, database.ErrConnection):
		return "unavailable"
	default:
		return "error"
	}
}
