package state

import (
	"sync"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// Manager управляет состояниями пользователей и выбранной ролью
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData  // telegramID -> UserData
	roles  map[int64]model.Role // telegramID -> роль, в которой пользователь работает
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
		roles:  make(map[int64]model.Role),
	}
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState устанавливает состояние пользователя, черновик сохраняется
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	if userData, exists := sm.states[telegramID]; exists {
		userData.State = state
		return
	}
	sm.states[telegramID] = &UserData{State: state}
}

// Begin начинает новый диалог с чистым черновиком
func (sm *Manager) Begin(telegramID int64, state UserState, draft Draft) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.states[telegramID] = &UserData{State: state, Draft: draft}
}

// Draft возвращает копию черновика
func (sm *Manager) Draft(telegramID int64) (Draft, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.Draft, true
	}
	return Draft{}, false
}

// UpdateDraft меняет черновик и переводит диалог в следующее состояние
func (sm *Manager) UpdateDraft(telegramID int64, next UserState, fn func(*Draft)) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	userData, exists := sm.states[telegramID]
	if !exists {
		return false
	}
	fn(&userData.Draft)
	userData.State = next
	return true
}

// ClearState очищает состояние и данные пользователя
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Role возвращает выбранную роль; ok=false если пользователь её не выбирал
func (sm *Manager) Role(telegramID int64) (model.Role, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	role, ok := sm.roles[telegramID]
	return role, ok
}

// SetRole запоминает роль пользователя
func (sm *Manager) SetRole(telegramID int64, role model.Role) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.roles[telegramID] = role
}
