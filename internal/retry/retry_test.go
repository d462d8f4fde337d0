package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_NextDelay(t *testing.T) {
	t.Run("Fixed", func(t *testing.T) {
		p := Fixed(3, 2*time.Second)
		assert.Equal(t, 2*time.Second, p.NextDelay(1))
		assert.Equal(t, 2*time.Second, p.NextDelay(2))
		assert.Equal(t, 2*time.Second, p.NextDelay(5))
	})

	t.Run("Exponential", func(t *testing.T) {
		p := Policy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
		assert.Equal(t, time.Second, p.NextDelay(1))
		assert.Equal(t, 2*time.Second, p.NextDelay(2))
		assert.Equal(t, 4*time.Second, p.NextDelay(3))
		assert.Equal(t, 5*time.Second, p.NextDelay(4))
	})

	t.Run("DefaultsFactor", func(t *testing.T) {
		p := Policy{InitialDelay: time.Second}
		assert.Equal(t, 2*time.Second, p.NextDelay(2))
	})

	t.Run("ZeroDelay", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), Fixed(3, 0).NextDelay(1))
	})

	t.Run("AttemptBelowOne", func(t *testing.T) {
		p := Fixed(3, time.Second)
		assert.Equal(t, time.Second, p.NextDelay(0))
	})
}

func TestPolicy_Attempts(t *testing.T) {
	assert.Equal(t, 1, Policy{}.Attempts())
	assert.Equal(t, 3, Fixed(3, 0).Attempts())
}

func TestSleep(t *testing.T) {
	t.Run("Elapses", func(t *testing.T) {
		start := time.Now()
		err := Sleep(context.Background(), 20*time.Millisecond)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Sleep(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ZeroReturnsContextState", func(t *testing.T) {
		assert.NoError(t, Sleep(context.Background(), 0))
	})
}
