package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledLimiterGrantsReissueLock(t *testing.T) {
	var limiter *PublicLimiter

	token, ok, err := limiter.AcquireReissueLock(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, token)

	require.NoError(t, limiter.ReleaseReissueLock(context.Background(), "42", token))
}

func TestReissueLockRequiresClient(t *testing.T) {
	var lock *reissueLock

	_, _, err := lock.acquire(context.Background(), "42")
	require.Error(t, err)

	require.NoError(t, lock.releaseHeld(context.Background(), "42", "token"))
}
