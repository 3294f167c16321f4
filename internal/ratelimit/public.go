package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/sahayog-foundation/sahayog/internal/config"
)

const (
	keyDonationVerify = "public:donation:verify:%s"
	keyMessageSubmit  = "public:message:submit:%s"
)

// PublicLimiter throttles the unauthenticated endpoints per client IP.
// A nil limiter means rate limiting is disabled and every request passes.
type PublicLimiter struct {
	enabled bool

	bucket  *TokenBucket
	reissue *reissueLock

	verifyRate   float64
	verifyBurst  int
	messageRate  float64
	messageBurst int
}

func NewPublicLimiter(cfg config.Config) (*PublicLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.VerifyRate <= 0 || limitCfg.VerifyBurst <= 0 {
		return nil, errors.New("donation verify rate limit must be positive")
	}
	if limitCfg.MessageRate <= 0 || limitCfg.MessageBurst <= 0 {
		return nil, errors.New("message submit rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &PublicLimiter{
		enabled:      true,
		bucket:       NewTokenBucket(client),
		reissue:      newReissueLock(client),
		verifyRate:   limitCfg.VerifyRate,
		verifyBurst:  limitCfg.VerifyBurst,
		messageRate:  limitCfg.MessageRate,
		messageBurst: limitCfg.MessageBurst,
	}, nil
}

func (l *PublicLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *PublicLimiter) AllowVerify(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyDonationVerify, strings.TrimSpace(clientIP)), l.verifyRate, l.verifyBurst)
}

func (l *PublicLimiter) AllowMessage(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyMessageSubmit, strings.TrimSpace(clientIP)), l.messageRate, l.messageBurst)
}

// AcquireReissueLock takes a short-lived redis lock keyed by donation,
// serializing certificate re-issue across instances. A disabled
// limiter always grants the lock with an empty token.
func (l *PublicLimiter) AcquireReissueLock(ctx context.Context, donationID string) (string, bool, error) {
	if !l.Enabled() {
		return "", true, nil
	}
	return l.reissue.acquire(ctx, donationID)
}

func (l *PublicLimiter) ReleaseReissueLock(ctx context.Context, donationID, token string) error {
	if !l.Enabled() {
		return nil
	}
	return l.reissue.releaseHeld(ctx, donationID, token)
}
