package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

type memoryEntry struct {
	slots   []*model.Slot
	tags    []string
	expires time.Time
}

// Memory - кэш в памяти процесса
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	entries   map[string]memoryEntry
	tags      map[string]map[string]struct{}
	nextSweep time.Time
	now       func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		tags:    make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]*model.Slot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expires) {
		m.removeLocked(key)
		return nil, false, nil
	}
	return cloneSlots(e.slots), true, nil
}

func (m *Memory) Set(_ context.Context, key string, slots []*model.Slot, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweepLocked(now)
		m.nextSweep = now.Add(m.ttl)
	}

	m.removeLocked(key)
	m.entries[key] = memoryEntry{
		slots:   cloneSlots(slots),
		tags:    append([]string(nil), tags...),
		expires: now.Add(m.ttl),
	}
	for _, tag := range tags {
		keys, ok := m.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range tags {
		for key := range m.tags[tag] {
			m.removeLocked(key)
		}
		delete(m.tags, tag)
	}
	return nil
}

// Len возвращает количество хранимых выборок
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// sweepLocked удаляет просроченные выборки
func (m *Memory) sweepLocked(now time.Time) {
	for key, e := range m.entries {
		if now.After(e.expires) {
			m.removeLocked(key)
		}
	}
}

// removeLocked удаляет выборку вместе с её ключом в индексе тегов
func (m *Memory) removeLocked(key string) {
	e, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range e.tags {
		keys := m.tags[tag]
		delete(keys, key)
		if len(keys) == 0 {
			delete(m.tags, tag)
		}
	}
}
