package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	customErrors "github.com/picstream/auth-service/internal/domain/auth/errors"
	"github.com/picstream/auth-service/internal/domain/auth/model"
)

// RedisSessionRepo keeps one key per refresh session, keyed by the token JTI.
// Expiry is delegated to Redis TTLs, so stale sessions vanish on their own.
type RedisSessionRepo struct {
	client *redis.Client
}

func NewRedisSessionRepo(client *redis.Client) *RedisSessionRepo {
	return &RedisSessionRepo{
		client: client,
	}
}

func sessionKey(jti string) string {
	return "session:" + jti
}

func (r *RedisSessionRepo) Store(ctx context.Context, s model.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return customErrors.WrapInternal(err, "Store")
	}
	return r.client.Set(ctx, sessionKey(s.JTI), payload, safeTTL(s.ExpiresAt)).Err()
}

func (r *RedisSessionRepo) Get(ctx context.Context, jti string) (model.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(jti)).Bytes()
	switch {
	case err == redis.Nil:
		return model.Session{}, customErrors.ErrNotFound
	case err != nil:
		return model.Session{}, customErrors.WrapInternal(err, "Get")
	}

	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Session{}, customErrors.WrapInternal(err, "Get")
	}
	return s, nil
}

func (r *RedisSessionRepo) Exists(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKey(jti)).Result()
	return n > 0, err
}

func (r *RedisSessionRepo) Delete(ctx context.Context, jti string) error {
	// DEL on an absent key is a no-op, which is exactly the logout contract.
	return r.client.Del(ctx, sessionKey(jti)).Err()
}

func safeTTL(exp time.Time) time.Duration {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// minimal TTL so the key still disappears
		return time.Minute
	}
	return ttl
}
