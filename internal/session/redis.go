package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const redisKeyPrefix = "helpdesk:session:"

// RedisStore keeps sessions in Redis with a key TTL matching the session expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	body, err := json.Marshal(s)
	if err != nil {
		return errors.WithStack(err)
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return errors.WithStack(r.client.Set(ctx, redisKeyPrefix+s.ID, body, ttl).Err())
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var s Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, errors.WithStack(err)
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return errors.WithStack(r.client.Del(ctx, redisKeyPrefix+id).Err())
}

// Close releases the client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
