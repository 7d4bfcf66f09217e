package kv

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis store.
type RedisOptions struct {
	// Redis server address.
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// TLS config.
	TLSConfig *tls.Config
	// KeyPrefix is prepended to every key.
	KeyPrefix string
}

// Redis stores keys in a Redis database.
type Redis struct {
	client  *redis.Client
	prefix  string
	isOwner bool
}

// NewRedis opens a client for options; Close releases it.
func NewRedis(options RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		TLSConfig: options.TLSConfig,
		Addr:      options.Address,
		Password:  options.Password,
		DB:        options.DB,
	})
	return &Redis{client: client, prefix: options.KeyPrefix, isOwner: true}
}

// NewRedisWithClient wraps an existing client. Close leaves it open.
func NewRedisWithClient(client *redis.Client, keyPrefix string) *Redis {
	return &Redis{client: client, prefix: keyPrefix}
}

// Ping tests connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis connection is not open")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the client if this store opened it.
func (r *Redis) Close() error {
	if !r.isOwner || r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis connection is not open")
	}
	s, err := r.client.Get(ctx, r.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if r.client == nil {
		return fmt.Errorf("redis connection is not open")
	}
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if r.client == nil {
		return fmt.Errorf("redis connection is not open")
	}
	return r.client.Del(ctx, r.prefix+key).Err()
}
