package google

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestNewRateLimiter_Service(t *testing.T) {
	assert.Equal(t, ServiceSheets, NewRateLimiter(ServiceSheets).Service())
	assert.Equal(t, ServiceType("unknown"), NewRateLimiter("unknown").Service())
}

// shortWait waits on rl for at most 20ms.
func shortWait(rl *RateLimiter) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	return rl.Wait(ctx)
}

func TestRateLimiter_WaitRespectsBurst(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.NoError(t, shortWait(rl))
	assert.NoError(t, shortWait(rl))
	assert.Error(t, shortWait(rl))
}

func TestRateLimiter_BackoffBlocksWait(t *testing.T) {
	rl := NewRateLimiter(ServiceDrive)
	rl.RecordRateLimitError(30)

	assert.ErrorIs(t, shortWait(rl), context.DeadlineExceeded)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiter(ServiceGmail)
	rl.RecordRateLimitError(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_DoWrapsAndRecords(t *testing.T) {
	rl := NewRateLimiter(ServiceSheets)

	err := rl.Do(context.Background(), func() error {
		return &googleapi.Error{Code: http.StatusTooManyRequests, Message: "slow down"}
	})

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, shortWait(rl), context.DeadlineExceeded, "backoff window should be open")
}

func TestRateLimiter_DoSuccess(t *testing.T) {
	rl := NewRateLimiter(ServiceSheets)
	calls := 0

	err := rl.Do(context.Background(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
