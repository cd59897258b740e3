package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// MemorySlotRepository хранит слоты в памяти. Используется в тестах и при STORE=memory.
// Семантика совпадает с SlotRepository, включая проверку статуса при переходах.
type MemorySlotRepository struct {
	mu     sync.Mutex
	nextID int64
	slots  map[int64]*model.Slot
	users  map[int64]*model.User
	now    func() time.Time
}

func NewMemorySlotRepository() *MemorySlotRepository {
	return &MemorySlotRepository{
		slots: make(map[int64]*model.Slot),
		users: make(map[int64]*model.User),
		now:   time.Now,
	}
}

// WithClock подменяет часы (для updated_at в тестах)
func (r *MemorySlotRepository) WithClock(now func() time.Time) *MemorySlotRepository {
	r.now = now
	return r
}

// PutUser регистрирует пользователя, чтобы у слотов были имена сторон
func (r *MemorySlotRepository) PutUser(user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *user
	r.users[u.ID] = &u
}

// Seed кладёт слот с заданным ID как есть
func (r *MemorySlotRepository) Seed(slot *model.Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.slots[slot.ID] = slot.Clone()
	if slot.ID > r.nextID {
		r.nextID = slot.ID
	}
}

func (r *MemorySlotRepository) Create(_ context.Context, slot *model.Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now().UTC()
	slot.ID = r.nextID
	slot.CreatedAt = now
	slot.UpdatedAt = now
	r.slots[slot.ID] = slot.Clone()
	return nil
}

func (r *MemorySlotRepository) Get(_ context.Context, id int64) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	return r.withParties(slot), nil
}

func (r *MemorySlotRepository) List(_ context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.Slot
	for _, slot := range r.slots {
		if filter.Matches(slot) {
			out = append(out, r.withParties(slot))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledStart.Equal(out[j].ScheduledStart) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledStart.Before(out[j].ScheduledStart)
	})
	return out, nil
}

func (r *MemorySlotRepository) Update(_ context.Context, id int64, upd model.SlotUpdate) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	if upd.RequireStatus != "" && slot.Status != upd.RequireStatus {
		return nil, ErrStatusConflict
	}

	if upd.Start != nil {
		slot.ScheduledStart = upd.Start.UTC()
	}
	if upd.End != nil {
		slot.ScheduledEnd = upd.End.UTC()
	}
	if upd.Notes != nil {
		slot.TutorNotes = *upd.Notes
	}

	return r.withParties(slot), nil
}

func (r *MemorySlotRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return model.ErrSlotNotFound
	}
	if slot.Status != model.SlotStatusOpen {
		return ErrStatusConflict
	}

	delete(r.slots, id)
	return nil
}

func (r *MemorySlotRepository) Transition(_ context.Context, id int64, from, to model.SlotStatus, extra model.TransitionExtra) (*model.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.slots[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	if slot.Status != from {
		return nil, ErrStatusConflict
	}

	switch to {
	case model.SlotStatusPending:
		slot.StudentID = copyID(extra.StudentID)
		slot.SubjectID = copyID(extra.SubjectID)
	case model.SlotStatusOpen:
		slot.LastStudentID = slot.StudentID
		slot.StudentID = nil
		slot.SubjectID = nil
	case model.SlotStatusCancelled:
		slot.CancellationReason = extra.CancellationReason
		slot.CancelledBy = copyID(extra.CancelledBy)
	}

	slot.Status = to
	slot.UpdatedAt = r.now().UTC()

	return r.withParties(slot), nil
}

// withParties возвращает копию слота с именами сторон
func (r *MemorySlotRepository) withParties(slot *model.Slot) *model.Slot {
	out := slot.Clone()
	out.Tutor, out.Student = nil, nil
	if u, ok := r.users[out.TutorID]; ok {
		t := *u
		out.Tutor = &t
	}
	if out.StudentID != nil {
		if u, ok := r.users[*out.StudentID]; ok {
			st := *u
			out.Student = &st
		}
	}
	return out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
