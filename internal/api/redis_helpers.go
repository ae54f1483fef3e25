package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	errRateLimited   = errors.New("rate limit exceeded")
	errAccountLocked = errors.New("account temporarily locked")
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// loginGuard 限制登录频率，并在连续失败后临时锁定账号。
type loginGuard interface {
	Check(ctx context.Context, ip, username string) error
	Fail(ctx context.Context, username string)
	Reset(ctx context.Context, username string)
}

// tokenRevoker 记录已注销的刷新令牌 jti。
type tokenRevoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// LoginLimits 对应 AuthConfig 中的限流参数。
type LoginLimits struct {
	MaxAttempts  int
	Window       time.Duration
	LockDuration time.Duration
}

type redisLoginGuard struct {
	client redis.Cmdable
	limits LoginLimits
}

func newRedisLoginGuard(client redis.Cmdable, limits LoginLimits) *redisLoginGuard {
	if limits.MaxAttempts <= 0 {
		limits.MaxAttempts = 5
	}
	if limits.Window <= 0 {
		limits.Window = 15 * time.Minute
	}
	if limits.LockDuration <= 0 {
		limits.LockDuration = limits.Window
	}
	return &redisLoginGuard{client: client, limits: limits}
}

// Check 先按 IP+用户名限速，再检查账号锁定。Redis 故障时放行。
func (g *redisLoginGuard) Check(ctx context.Context, ip, username string) error {
	username = strings.ToLower(username)
	rateKey := "rate:login:" + ip + ":" + username
	count, err := incrWithTTL(ctx, g.client, rateKey, g.limits.Window)
	if err == nil && count > int64(g.limits.MaxAttempts*2) {
		return errRateLimited
	}
	if ttl, _ := g.client.TTL(ctx, "lock:login:"+username).Result(); ttl > 0 {
		return errAccountLocked
	}
	return nil
}

func (g *redisLoginGuard) Fail(ctx context.Context, username string) {
	username = strings.ToLower(username)
	count, err := incrWithTTL(ctx, g.client, "lock:login:fail:"+username, g.limits.Window)
	if err != nil {
		return
	}
	if count >= int64(g.limits.MaxAttempts) {
		_ = g.client.Set(ctx, "lock:login:"+username, "1", g.limits.LockDuration).Err()
	}
}

func (g *redisLoginGuard) Reset(ctx context.Context, username string) {
	_ = g.client.Del(ctx, "lock:login:fail:"+strings.ToLower(username)).Err()
}

const refreshTokenBlacklistKeyPrefix = "auth:refresh:blacklist:"

type redisTokenRevoker struct {
	client redis.Cmdable
}

func (r *redisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, refreshTokenBlacklistKeyPrefix+jti).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (r *redisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.client.Set(ctx, refreshTokenBlacklistKeyPrefix+jti, "revoked", ttl).Err()
}
