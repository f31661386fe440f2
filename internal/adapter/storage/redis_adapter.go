package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	guardKeyPrefix  = "guard:"
	defaultGuardTTL = 30 * time.Second
)

// releaseGuardScript deletes the guard only if this adapter still owns it,
// so a guard that expired and was re-acquired elsewhere is left alone.
var releaseGuardScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

// RedisAdapter persists cart snapshots as plain string keys and implements
// the submit guard with SETNX.
type RedisAdapter struct {
	client   *redis.Client
	cartTTL  time.Duration
	guardTTL time.Duration
	owner    string
}

// NewRedisAdapter returns an adapter; cartTTL of zero keeps snapshots until
// they are cleared. owner identifies this process in guard values.
func NewRedisAdapter(client *redis.Client, cartTTL, guardTTL time.Duration, owner string) *RedisAdapter {
	if guardTTL <= 0 {
		guardTTL = defaultGuardTTL
	}
	return &RedisAdapter{
		client:   client,
		cartTTL:  cartTTL,
		guardTTL: guardTTL,
		owner:    owner,
	}
}

func (r *RedisAdapter) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cart snapshot: %w", err)
	}
	return data, true, nil
}

func (r *RedisAdapter) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.cartTTL).Err(); err != nil {
		return fmt.Errorf("set cart snapshot: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, guardKeyPrefix+key, r.owner, r.guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire submit guard: %w", err)
	}
	return ok, nil
}

func (r *RedisAdapter) Release(ctx context.Context, key string) error {
	if err := releaseGuardScript.Run(ctx, r.client, []string{guardKeyPrefix + key}, r.owner).Err(); err != nil {
		return fmt.Errorf("release submit guard: %w", err)
	}
	return nil
}
