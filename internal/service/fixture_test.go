package service

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/cache"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/queue"
	"github.com/Freeeeeet/tutoring_bot/internal/repository"
	"go.uber.org/zap"
)

var (
	tutorUser   = &model.User{ID: 1, TelegramID: 1001, FirstName: "Anna", LastName: "Petrova", IsTutor: true}
	studentUser = &model.User{ID: 2, TelegramID: 1002, FirstName: "Boris"}
	otherUser   = &model.User{ID: 3, TelegramID: 1003, FirstName: "Clara"}
	rivalTutor  = &model.User{ID: 4, TelegramID: 1004, FirstName: "Denis", IsTutor: true}

	tutor   = tutorUser.Identity(model.RoleTutor)
	student = studentUser.Identity(model.RoleStudent)
	other   = otherUser.Identity(model.RoleStudent)
	rival   = rivalTutor.Identity(model.RoleTutor)
)

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	mu        sync.Mutex
	events    []queue.SlotEvent
	reminders []queue.SessionReminder
}

func (p *recordingPublisher) PublishSlotEvent(_ context.Context, event queue.SlotEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) PublishReminder(_ context.Context, reminder queue.SessionReminder) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reminders = append(p.reminders, reminder)
	return nil
}

type fixture struct {
	now          time.Time
	store        *repository.MemorySlotRepository
	reader       *SlotReader
	publisher    *recordingPublisher
	availability *AvailabilityService
	booking      *BookingService
	reschedule   *RescheduleService
	notices      *NotificationService
	reads        *cache.MemoryReadStore
}

// newFixture собирает сервисы поверх памяти. Часы у всех общие и двигаются через f.now.
func newFixture(now time.Time) *fixture {
	f := &fixture{now: now}
	clock := func() time.Time { return f.now }
	logger := zap.NewNop()

	f.store = repository.NewMemorySlotRepository().WithClock(clock)
	for _, u := range []*model.User{tutorUser, studentUser, otherUser, rivalTutor} {
		f.store.PutUser(u)
	}

	f.publisher = &recordingPublisher{}
	f.reads = cache.NewMemoryReadStore()
	f.reader = NewSlotReader(f.store, cache.NewMemory(time.Minute), logger)
	f.availability = NewAvailabilityService(f.store, f.reader, time.UTC, logger)
	f.booking = NewBookingService(f.store, f.reader, nil, f.publisher, logger).WithClock(clock)
	f.reschedule = NewRescheduleService(f.store, f.reader, time.UTC, logger)
	f.notices = NewNotificationService(f.reader, f.reads, time.UTC, logger).WithClock(clock)
	return f
}

// countingStore считает обращения к хранилищу за выборками
type countingStore struct {
	SlotStore
	lists int
}

func (s *countingStore) List(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	s.lists++
	return s.SlotStore.List(ctx, filter)
}

func (f *fixture) seed(slot *model.Slot) {
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = f.now
	}
	if slot.UpdatedAt.IsZero() {
		slot.UpdatedAt = f.now
	}
	f.store.Seed(slot)
}

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func id(v int64) *int64 { return &v }
