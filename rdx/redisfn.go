package rdx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Conn is the shared Redis client. Nil means caching and events are off.
var Conn *redis.Client

var ErrDisabled = errors.New("redis disabled")

// Init connects to Redis. Callers may continue without Redis when it fails.
func Init(ctx context.Context, addr, password string) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("ping redis %s: %w", addr, err)
	}
	Conn = client
	log.Info().Str("addr", addr).Msg("connected to Redis")
	return nil
}

// RdxGet returns "" with redis.Nil when the key is missing.
func RdxGet(ctx context.Context, key string) (string, error) {
	if Conn == nil {
		return "", ErrDisabled
	}
	return Conn.Get(ctx, key).Result()
}

func RdxSet(ctx context.Context, key string, value string, ttl time.Duration) error {
	if Conn == nil {
		return ErrDisabled
	}
	return Conn.Set(ctx, key, value, ttl).Err()
}

func RdxDel(ctx context.Context, keys ...string) error {
	if Conn == nil {
		return ErrDisabled
	}
	return Conn.Del(ctx, keys...).Err()
}

func Publish(ctx context.Context, channel string, payload []byte) error {
	if Conn == nil {
		return ErrDisabled
	}
	return Conn.Publish(ctx, channel, payload).Err()
}

func MenuKey(restaurantID string) string {
	return "menu:" + restaurantID
}
