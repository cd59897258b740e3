package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// MemoryUserRepository хранит пользователей в памяти. Пользователи видны
// и слотам, поэтому хранилище общее с MemorySlotRepository.
type MemoryUserRepository struct {
	slots  *MemorySlotRepository
	nextID int64
}

func NewMemoryUserRepository(slots *MemorySlotRepository) *MemoryUserRepository {
	return &MemoryUserRepository{slots: slots}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.slots.mu.Lock()
	defer r.slots.mu.Unlock()

	for _, u := range r.slots.users {
		if u.TelegramID == user.TelegramID {
			return fmt.Errorf("create user: telegram id %d already exists", user.TelegramID)
		}
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = r.slots.now().UTC()

	u := *user
	r.slots.users[u.ID] = &u
	return nil
}

func (r *MemoryUserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	r.slots.mu.Lock()
	defer r.slots.mu.Unlock()

	for _, u := range r.slots.users {
		if u.TelegramID == telegramID {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.slots.mu.Lock()
	defer r.slots.mu.Unlock()

	u, ok := r.slots.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *model.User) error {
	r.slots.mu.Lock()
	defer r.slots.mu.Unlock()

	if _, ok := r.slots.users[user.ID]; !ok {
		return fmt.Errorf("user not found")
	}

	u := *user
	r.slots.users[u.ID] = &u
	return nil
}
