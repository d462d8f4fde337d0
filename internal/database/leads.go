package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"leadtracker/internal/metrics"
	"leadtracker/internal/models"

	"github.com/rs/zerolog"
)

const selectLeads = `
        SELECT id, full_name, email, COALESCE(phone, '') AS phone, interest, registered_at
        FROM leads`

// LeadRepository runs one statement per call on a connection acquired for that call.
type LeadRepository struct {
	provider *Provider
	logger   *zerolog.Logger
}

func NewLeadRepository(provider *Provider, logger *zerolog.Logger) *LeadRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &LeadRepository{provider: provider, logger: logger}
}

// Create inserts a lead and returns its id.
func (r *LeadRepository) Create(ctx context.Context, in models.LeadInput) (int64, error) {
	defer metrics.ObserveQuery("create", time.Now())

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer r.provider.Release(db)

	dialect := r.provider.Dialect()
	query := `INSERT INTO leads (full_name, email, phone, interest) VALUES (?, ?, ?, ?)`

	var id int64
	if dialect.InsertReturnsID() {
		err = db.QueryRowxContext(ctx, db.Rebind(query+` RETURNING id`),
			in.FullName, in.Email, in.Phone, in.Interest,
		).Scan(&id)
	} else {
		var result sql.Result
		result, err = db.ExecContext(ctx, db.Rebind(query), in.FullName, in.Email, in.Phone, in.Interest)
		if err == nil {
			id, err = result.LastInsertId()
		}
	}

	if err != nil {
		if dialect.IsDuplicateKey(err) {
			r.logger.Warn().Str("email", in.Email).Msg("lead email already exists")
			return 0, ErrDuplicateEmail
		}
		r.logger.Error().Err(err).Msg("failed to create lead")
		return 0, queryError("create lead", err)
	}

	r.logger.Info().Int64("lead_id", id).Str("interest", in.Interest).Msg("lead created")
	return id, nil
}

// List returns every lead, newest first.
func (r *LeadRepository) List(ctx context.Context) ([]models.Lead, error) {
	defer metrics.ObserveQuery("list", time.Now())

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.provider.Release(db)

	leads := []models.Lead{}
	if err := db.SelectContext(ctx, &leads, selectLeads+` ORDER BY registered_at DESC, id DESC`); err != nil {
		r.logger.Error().Err(err).Msg("failed to list leads")
		return nil, queryError("list leads", err)
	}

	r.logger.Debug().Int("count", len(leads)).Msg("leads loaded")
	return leads, nil
}

// Get returns the lead with the given id or ErrNotFound.
func (r *LeadRepository) Get(ctx context.Context, id int64) (*models.Lead, error) {
	defer metrics.ObserveQuery("get", time.Now())

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.provider.Release(db)

	var lead models.Lead
	if err := db.GetContext(ctx, &lead, db.Rebind(selectLeads+` WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error().Err(err).Int64("lead_id", id).Msg("failed to get lead")
		return nil, queryError("get lead", err)
	}

	return &lead, nil
}

// Update rewrites the mutable fields. A missing id is not an error: it yields 0 affected rows.
func (r *LeadRepository) Update(ctx context.Context, id int64, in models.LeadInput) (int64, error) {
	defer metrics.ObserveQuery("update", time.Now())

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer r.provider.Release(db)

	query := `UPDATE leads SET full_name = ?, email = ?, phone = ?, interest = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, db.Rebind(query), in.FullName, in.Email, in.Phone, in.Interest, id)
	if err != nil {
		if r.provider.Dialect().IsDuplicateKey(err) {
			return 0, ErrDuplicateEmail
		}
		r.logger.Error().Err(err).Int64("lead_id", id).Msg("failed to update lead")
		return 0, queryError("update lead", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, queryError("update lead", err)
	}

	r.logger.Info().Int64("lead_id", id).Int64("rows_affected", affected).Msg("lead updated")
	return affected, nil
}

// Delete removes the lead. A missing id is not an error: it yields 0 affected rows.
func (r *LeadRepository) Delete(ctx context.Context, id int64) (int64, error) {
	defer metrics.ObserveQuery("delete", time.Now())

	db, err := r.provider.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer r.provider.Release(db)

	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM leads WHERE id = ?`), id)
	if err != nil {
		r.logger.Error().Err(err).Int64("lead_id", id).Msg("failed to delete lead")
		return 0, queryError("delete lead", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, queryError("delete lead", err)
	}

	r.logger.Info().Int64("lead_id", id).Int64("rows_affected", affected).Msg("lead deleted")
	return affected, nil
}
