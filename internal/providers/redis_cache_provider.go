package providers

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"metricsdash/internal/structures"
)

const redisOpTimeout = 2 * time.Second

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCacheProvider shares cached series between daemon replicas.
type RedisCacheProvider struct {
	store  redisCmdable
	prefix string
	logger Logger
}

func NewRedisCacheProvider(conf structures.RedisConfig, logger Logger) *RedisCacheProvider {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.Addr,
		Password:     conf.Password,
		DB:           conf.DB,
		DialTimeout:  conf.DialTimeout,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
	})
	return newRedisCacheProvider(client, conf.Prefix, logger)
}

func newRedisCacheProvider(store redisCmdable, prefix string, logger Logger) *RedisCacheProvider {
	return &RedisCacheProvider{store: store, prefix: prefix, logger: logger}
}

func (r *RedisCacheProvider) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *RedisCacheProvider) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := r.store.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warnf(TypeApp, "redis get %s: %s", key, err)
		}
		return nil, false
	}
	return val, true
}

func (r *RedisCacheProvider) Set(key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if ttl < 0 {
		ttl = 0
	}
	if err := r.store.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.Warnf(TypeApp, "redis set %s: %s", key, err)
	}
}
