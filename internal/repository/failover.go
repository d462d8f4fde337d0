package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"leadtracker/internal/domain"

	"github.com/rs/zerolog"
)

const recheckInterval = time.Minute

// FailoverLimiter uses the primary limiter until it fails, then the fallback,
// probing the primary again once a minute.
type FailoverLimiter struct {
	primary  domain.SubmissionLimiter
	fallback domain.SubmissionLimiter
	logger   *zerolog.Logger
	now      func() time.Time

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverLimiter(primary, fallback domain.SubmissionLimiter, logger *zerolog.Logger) *FailoverLimiter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *FailoverLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !f.isDown.Load() || f.dueForRecheck() {
		allowed, err := f.primary.Allow(ctx, key, limit, window)
		if err == nil {
			if f.isDown.Swap(false) {
				f.logger.Info().Msg("primary submission limiter recovered")
			}
			return allowed, nil
		}
		if !f.isDown.Swap(true) {
			f.logger.Error().Err(err).Msg("primary submission limiter failed, falling back to memory")
		}
		f.mu.Lock()
		f.lastCheck = f.now()
		f.mu.Unlock()
	}

	return f.fallback.Allow(ctx, key, limit, window)
}

func (f *FailoverLimiter) dueForRecheck() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now().Sub(f.lastCheck) > recheckInterval
}
