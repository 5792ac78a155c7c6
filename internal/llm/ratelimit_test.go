package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst up to capacity", func(t *testing.T) {
		rl := newRateLimiter(10)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 10; i++ {
			require.NoError(t, rl.wait(ctx))
		}
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := rl.wait(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("defaults when unset", func(t *testing.T) {
		rl := newRateLimiter(0)
		assert.Equal(t, DefaultRequestsPerMinute, rl.limiter.Burst())
	})
}
