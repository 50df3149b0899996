// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sets KEYS[1] to ARGV[3] when it is absent (ARGV[1] == "0") or still
// equals ARGV[2].
var swapScript = redis.NewScript(`
local cur = redis.call("get", KEYS[1])
if ARGV[1] == "0" then
	if cur then
		return 0
	end
elseif cur ~= ARGV[2] then
	return 0
end
redis.call("set", KEYS[1], ARGV[3])
return 1
`)

// Redis stores values as plain strings under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects and pings a Redis server.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis ping: %w", ErrStore, err)
	}
	return client, nil
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		prefix: "securevote:",
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrStore, key, err)
	}
	return val, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: put %s: %w", ErrStore, key, err)
	}
	return nil
}

func (r *Redis) CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error) {
	exists := "1"
	if old == nil {
		exists = "0"
	}
	n, err := swapScript.Run(ctx, r.client, []string{r.key(key)}, exists, old, value).Int()
	if err != nil {
		return false, fmt.Errorf("%w: swap %s: %w", ErrStore, key, err)
	}
	return n == 1, nil
}
