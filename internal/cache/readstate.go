package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MemoryReadStore хранит отметки о прочтении в памяти
type MemoryReadStore struct {
	mu   sync.Mutex
	sets map[string]map[uuid.UUID]time.Time
}

func NewMemoryReadStore() *MemoryReadStore {
	return &MemoryReadStore{sets: make(map[string]map[uuid.UUID]time.Time)}
}

func (m *MemoryReadStore) ReadSet(_ context.Context, key string) (map[uuid.UUID]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uuid.UUID]time.Time, len(m.sets[key]))
	for id, at := range m.sets[key] {
		out[id] = at
	}
	return out, nil
}

func (m *MemoryReadStore) MarkRead(_ context.Context, key string, id uuid.UUID, noticeAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[key]
	if !ok {
		set = make(map[uuid.UUID]time.Time)
		m.sets[key] = set
	}
	set[id] = noticeAt
	return nil
}

func (m *MemoryReadStore) Remove(_ context.Context, key string, ids ...uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.sets[key], id)
	}
	return nil
}

// RedisReadStore хранит отметки в хэше: поле - ID уведомления, значение - unix ms
type RedisReadStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisReadStore(rdb *redis.Client, prefix string) *RedisReadStore {
	if prefix == "" {
		prefix = "notices:read"
	}
	return &RedisReadStore{rdb: rdb, prefix: prefix}
}

func (r *RedisReadStore) ReadSet(ctx context.Context, key string) (map[uuid.UUID]time.Time, error) {
	raw, err := r.rdb.HGetAll(ctx, r.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	out := make(map[uuid.UUID]time.Time, len(raw))
	for field, value := range raw {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		out[id] = time.UnixMilli(ms).UTC()
	}
	return out, nil
}

func (r *RedisReadStore) MarkRead(ctx context.Context, key string, id uuid.UUID, noticeAt time.Time) error {
	err := r.rdb.HSet(ctx, r.key(key), id.String(), strconv.FormatInt(noticeAt.UnixMilli(), 10)).Err()
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (r *RedisReadStore) Remove(ctx context.Context, key string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = id.String()
	}

	if err := r.rdb.HDel(ctx, r.key(key), fields...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (r *RedisReadStore) key(k string) string { return r.prefix + ":" + k }
