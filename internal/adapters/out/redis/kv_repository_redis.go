// internal/adapters/out/redis/kv_repository_redis.go
package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"milkmaster/internal/adapters/out/kv"
)

// KVRepositoryRedis implements kv.Store on Redis. Keys are prefixed
// so several storefront deployments can share one instance.
type KVRepositoryRedis struct {
	Client *redis.Client
	Prefix string
}

func NewKVRepositoryRedis(client *redis.Client, prefix string) *KVRepositoryRedis {
	return &KVRepositoryRedis{Client: client, Prefix: strings.TrimSpace(prefix)}
}

func (r *KVRepositoryRedis) key(k string) string {
	if r.Prefix == "" {
		return k
	}
	return r.Prefix + ":" + k
}

func (r *KVRepositoryRedis) Get(ctx context.Context, key string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("kv_repository_redis: client is nil")
	}
	raw, err := r.Client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return raw, nil
}

func (r *KVRepositoryRedis) Set(ctx context.Context, key string, value []byte) error {
	if r == nil || r.Client == nil {
		return errors.New("kv_repository_redis: client is nil")
	}
	// No TTL: cart partitions live until clearCart removes them.
	return r.Client.Set(ctx, r.key(key), value, 0).Err()
}

func (r *KVRepositoryRedis) Remove(ctx context.Context, key string) error {
	if r == nil || r.Client == nil {
		return errors.New("kv_repository_redis: client is nil")
	}
	return r.Client.Del(ctx, r.key(key)).Err()
}
