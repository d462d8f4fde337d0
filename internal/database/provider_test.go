package database

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"leadtracker/internal/config"
	"leadtracker/internal/retry"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_AcquireSQLite(t *testing.T) {
	p := newTestProvider(t)

	db, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.NoError(t, db.PingContext(context.Background()))

	p.Release(db)
	assert.Error(t, db.PingContext(context.Background()), "released handle must be closed")
}

func TestProvider_CreatesDirectory(t *testing.T) {
	cfg := sqliteConfig(t)
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	cfg.Path = filepath.Join(dir, "leads.db")
	logger := zerolog.Nop()

	p, err := NewProvider(cfg, sqliteDialect{}, &logger)
	require.NoError(t, err)

	db, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(db)
	assert.DirExists(t, dir)
	assert.FileExists(t, cfg.Path)
}

func TestProvider_Pooled(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Pooled = true
	logger := zerolog.Nop()
	p, err := NewProvider(cfg, sqliteDialect{}, &logger)
	require.NoError(t, err)

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(first)

	second, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.NoError(t, second.PingContext(context.Background()))

	require.NoError(t, p.Close())
	assert.Error(t, first.PingContext(context.Background()))
	assert.NoError(t, p.Close(), "closing twice is a no-op")
}

func TestProvider_RetriesWithFixedDelay(t *testing.T) {
	p, pauses := newUnreachableProvider(t, 3)

	db, err := p.Acquire(context.Background())
	assert.Nil(t, db)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Contains(t, err.Error(), "connection refused")

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *pauses)
}

func TestProvider_SingleAttemptDoesNotSleep(t *testing.T) {
	p, pauses := newUnreachableProvider(t, 1)

	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
	assert.Empty(t, *pauses)
}

func TestProvider_CancelledDuringRetry(t *testing.T) {
	p, _ := newUnreachableProvider(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := p.Acquire(ctx)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProvider_RealSleepIsBounded(t *testing.T) {
	p, _ := newUnreachableProvider(t, 3)
	p.policy.InitialDelay = 20 * time.Millisecond
	p.sleep = func(ctx context.Context, d time.Duration) error {
		time.Sleep(d)
		return nil
	}

	start := time.Now()
	_, err := p.Acquire(context.Background())
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrConnection)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestProvider_PooledConcurrentFailuresDoNotQueue(t *testing.T) {
	p, _ := newUnreachableProvider(t, 2)
	p.cfg.Pooled = true
	p.policy.InitialDelay = 100 * time.Millisecond
	p.sleep = retry.Sleep

	const callers = 5
	var wg sync.WaitGroup
	elapsed := make([]time.Duration, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := time.Now()
			_, errs[i] = p.Acquire(context.Background())
			elapsed[i] = time.Since(start)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.ErrorIs(t, errs[i], ErrConnection)
		assert.Less(t, elapsed[i], 300*time.Millisecond, "caller %d waited for another caller's retries", i)
	}
}

func TestProvider_PooledCancelledCallerReturnsPromptly(t *testing.T) {
	p, _ := newUnreachableProvider(t, 3)
	p.cfg.Pooled = true
	p.policy.InitialDelay = 100 * time.Millisecond
	p.sleep = retry.Sleep

	busy := make(chan struct{})
	go func() {
		defer close(busy)
		_, _ = p.Acquire(context.Background())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	_, err := p.Acquire(ctx)
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	<-busy
}

func TestProvider_PooledConcurrentAcquireSharesHandle(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Pooled = true
	logger := zerolog.Nop()
	p, err := NewProvider(cfg, sqliteDialect{}, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	const callers = 8
	var wg sync.WaitGroup
	handles := make([]*sqlx.DB, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := p.Acquire(context.Background())
			assert.NoError(t, err)
			handles[i] = db
		}(i)
	}
	wg.Wait()

	shared, err := p.Acquire(context.Background())
	require.NoError(t, err)
	for _, db := range handles {
		assert.Same(t, shared, db)
	}
	assert.NoError(t, shared.PingContext(context.Background()))
}

func TestProvider_LogsEstablishedConnectionAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	p, err := NewProvider(sqliteConfig(t), sqliteDialect{}, &logger)
	require.NoError(t, err)

	db, err := p.Acquire(context.Background())
	require.NoError(t, err)
	p.Release(db)

	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), "database connection established")
}

func TestNewProvider_Errors(t *testing.T) {
	logger := zerolog.Nop()

	_, err := NewProvider(config.DatabaseConfig{MaxRetries: 1}, nil, &logger)
	assert.Error(t, err)

	_, err = NewProvider(config.DatabaseConfig{MaxRetries: 1, RetryDelay: "later"}, sqliteDialect{}, &logger)
	assert.Error(t, err)
}
