package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutoring_bot/internal/cache"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/queue"
	"github.com/Freeeeeet/tutoring_bot/internal/repository"
	"go.uber.org/zap"
)

// SlotStore - хранилище слотов. Transition и Update с RequireStatus обязаны
// проверять статус атомарно и возвращать repository.ErrStatusConflict при несовпадении.
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	Get(ctx context.Context, id int64) (*model.Slot, error)
	List(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error)
	Update(ctx context.Context, id int64, upd model.SlotUpdate) (*model.Slot, error)
	Delete(ctx context.Context, id int64) error
	Transition(ctx context.Context, id int64, from, to model.SlotStatus, extra model.TransitionExtra) (*model.Slot, error)
}

// EventPublisher получает события о слотах
type EventPublisher interface {
	PublishSlotEvent(ctx context.Context, event queue.SlotEvent) error
	PublishReminder(ctx context.Context, reminder queue.SessionReminder) error
}

// SlotReader читает слоты через кэш и сбрасывает кэш после мутаций
type SlotReader struct {
	store  SlotStore
	cache  cache.SlotCache
	logger *zap.Logger
}

func NewSlotReader(store SlotStore, slotCache cache.SlotCache, logger *zap.Logger) *SlotReader {
	return &SlotReader{
		store:  store,
		cache:  slotCache,
		logger: logger,
	}
}

// List возвращает выборку слотов. В кэше лежит выборка с границами,
// расширенными до cache.BoundStep; точные границы применяются после чтения.
func (r *SlotReader) List(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	wide := cache.Widen(filter)
	key := cache.FilterKey(wide)

	slots, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Slot cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return cache.Narrow(filter, slots), nil
	}

	slots, err = r.store.List(ctx, wide)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	if err := r.cache.Set(ctx, key, slots, cache.FilterTags(wide)...); err != nil {
		r.logger.Warn("Slot cache write failed", zap.String("key", key), zap.Error(err))
	}

	return cache.Narrow(filter, slots), nil
}

// Get возвращает слот по ID через кэш
func (r *SlotReader) Get(ctx context.Context, id int64) (*model.Slot, error) {
	key := cache.SlotKey(id)

	slots, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Slot cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok && len(slots) == 1 {
		return slots[0], nil
	}

	slot, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, []*model.Slot{slot}, cache.SlotTag(id)); err != nil {
		r.logger.Warn("Slot cache write failed", zap.String("key", key), zap.Error(err))
	}

	return slot, nil
}

// Invalidate сбрасывает все выборки, в которые могли попасть слоты
func (r *SlotReader) Invalidate(ctx context.Context, slots ...*model.Slot) {
	var tags []string
	for _, s := range slots {
		if s != nil {
			tags = append(tags, cache.SlotTags(s)...)
		}
	}
	if len(tags) == 0 {
		return
	}

	if err := r.cache.Invalidate(ctx, tags...); err != nil {
		r.logger.Error("Slot cache invalidation failed", zap.Strings("tags", tags), zap.Error(err))
	}
}

// storeError переводит ошибки хранилища в ошибки предметной области
func storeError(err error, slotID int64, from, to model.SlotStatus) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		return &model.InvalidTransitionError{SlotID: slotID, From: from, To: to, Stale: true}
	}
	return err
}
