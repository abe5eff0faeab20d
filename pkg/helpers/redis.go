package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a session hash is absent or expired.
var ErrNoSession = errors.New("session not found")

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SessionKey is the Redis hash holding a user's live session.
func SessionKey(userID string) string {
	return "user:session:" + userID
}

// SaveSession replaces the session hash at key and sets its lifetime.
func SaveSession(ctx context.Context, rdb *redis.Client, key string, fields map[string]any, ttl time.Duration) error {
	_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// TouchSession overwrites fields on a live session without extending it.
// A missing session is left missing.
func TouchSession(ctx context.Context, rdb *redis.Client, key string, fields map[string]any) error {
	ttl, err := rdb.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return ErrNoSession
	}
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// LoadSession returns every field of the session hash at key.
func LoadSession(ctx context.Context, rdb *redis.Client, key string) (map[string]string, error) {
	data, err := rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoSession
	}
	return data, nil
}

func RedisDel(ctx context.Context, rdb *redis.Client, key string) error {
	return rdb.Del(ctx, key).Err()
}
