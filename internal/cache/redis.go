package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/easyrent/vehiclerental/config"
	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds everything short-lived: the vehicle catalog, login
// sessions, CAPTCHA answers and in-flight booking attempts.
type RedisCache struct {
	client      redis.Cmdable
	vehiclesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, vehiclesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		vehiclesTTL: vehiclesTTL,
	}
}

// NewWithClient wraps an existing client or cluster client.
func NewWithClient(client redis.Cmdable, vehiclesTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, vehiclesTTL: vehiclesTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) GetVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	data, err := c.client.Get(ctx, vehiclesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var vehicles []domain.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *RedisCache) SetVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	payload, err := json.Marshal(vehicles)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, vehiclesKey(), payload, c.vehiclesTTL).Err()
}

func (c *RedisCache) CreateSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error {
	return c.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
}

// ResolveSession returns the user behind a session, or ErrUnauthorized when
// the session is unknown or expired.
func (c *RedisCache) ResolveSession(ctx context.Context, sessionID string) (int64, error) {
	val, err := c.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrUnauthorized
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	return userID, nil
}

func (c *RedisCache) DeleteSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (c *RedisCache) SaveCaptcha(ctx context.Context, id, code string, ttl time.Duration) error {
	return c.client.Set(ctx, captchaKey(id), code, ttl).Err()
}

// TakeCaptcha reads and deletes a challenge in one step; a missing id yields "".
func (c *RedisCache) TakeCaptcha(ctx context.Context, id string) (string, error) {
	code, err := c.client.GetDel(ctx, captchaKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (c *RedisCache) SaveAttempt(ctx context.Context, attempt *domain.BookingAttempt, ttl time.Duration) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, attemptKey(attempt.ID), payload, ttl).Err()
}

func (c *RedisCache) GetAttempt(ctx context.Context, id string) (*domain.BookingAttempt, error) {
	data, err := c.client.Get(ctx, attemptKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("booking attempt %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	var attempt domain.BookingAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// LockAttempt takes a short exclusive lock so two steps of one attempt
// cannot interleave their load and save.
func (c *RedisCache) LockAttempt(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, attemptLockKey(id), "locked", ttl).Result()
}

func (c *RedisCache) UnlockAttempt(ctx context.Context, id string) error {
	return c.client.Del(ctx, attemptLockKey(id)).Err()
}

func (c *RedisCache) Close() error {
	if closer, ok := c.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func vehiclesKey() string {
	return "cache:vehicles"
}

func sessionKey(id string) string {
	return "session:" + id
}

func captchaKey(id string) string {
	return "captcha:" + id
}

func attemptKey(id string) string {
	return "attempt:" + id
}

func attemptLockKey(id string) string {
	return "lock:attempt:" + id
}
