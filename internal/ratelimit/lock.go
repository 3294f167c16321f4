package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// A holder token guards the release so a lock that expired and was
// taken over by another instance is never deleted by the old holder.
const releaseIfHolderScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	reissueKeyPrefix = "certificate:reissue:"

	// reissueLockTTL bounds how long a crashed holder can block
	// re-issue for the same donation.
	reissueLockTTL = 30 * time.Second
)

// reissueLock serializes certificate re-issue for a single donation
// across server instances.
type reissueLock struct {
	client  *redis.Client
	release *redis.Script
}

func newReissueLock(client *redis.Client) *reissueLock {
	if client == nil {
		return nil
	}
	return &reissueLock{
		client:  client,
		release: redis.NewScript(releaseIfHolderScript),
	}
}

func (l *reissueLock) acquire(ctx context.Context, donationID string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if donationID == "" {
		return "", false, errors.New("lock donation id is empty")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, reissueKeyPrefix+donationID, token, reissueLockTTL).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *reissueLock) releaseHeld(ctx context.Context, donationID, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if donationID == "" || token == "" {
		return nil
	}
	return l.release.Run(ctx, l.client, []string{reissueKeyPrefix + donationID}, token).Err()
}
