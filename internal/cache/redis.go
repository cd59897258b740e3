package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/redis/go-redis/v9"
)

// Redis - кэш выборок в Redis. Значения хранятся в JSON,
// для каждого тега ведётся множество ключей.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "slots"
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]*model.Slot, bool, error) {
	bs, err := r.rdb.Get(ctx, r.dataKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var slots []*model.Slot
	if err := json.Unmarshal(bs, &slots); err != nil {
		// Битое значение считаем промахом
		return nil, false, nil
	}
	return slots, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, slots []*model.Slot, tags ...string) error {
	bs, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("marshal slots: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, r.dataKey(key), bs, r.ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, r.tagKey(tag), key)
		pipe.Expire(ctx, r.tagKey(tag), 2*r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		keys, err := r.rdb.SMembers(ctx, r.tagKey(tag)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis smembers: %w", err)
		}

		toDelete := make([]string, 0, len(keys)+1)
		for _, k := range keys {
			toDelete = append(toDelete, r.dataKey(k))
		}
		toDelete = append(toDelete, r.tagKey(tag))

		if err := r.rdb.Del(ctx, toDelete...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

func (r *Redis) dataKey(key string) string { return r.prefix + ":data:" + key }
func (r *Redis) tagKey(tag string) string  { return r.prefix + ":tag:" + tag }
