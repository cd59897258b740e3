package model

import (
	"fmt"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	LanguageCode string    `json:"language_code"`
	IsTutor      bool      `json:"is_tutor"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role - роль, в которой пользователь выполняет действие
type Role string

const (
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// Identity - текущий пользователь и его роль
type Identity struct {
	ID        int64
	Role      Role
	FirstName string
	LastName  string
}

// Identity строит Identity пользователя для указанной роли
func (u *User) Identity(role Role) Identity {
	return Identity{
		ID:        u.ID,
		Role:      role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// DefaultRole возвращает роль по умолчанию
func (u *User) DefaultRole() Role {
	if u.IsTutor {
		return RoleTutor
	}
	return RoleStudent
}

// ReadStateKey - ключ набора прочитанных уведомлений (у каждой роли свой)
func (i Identity) ReadStateKey() string {
	return fmt.Sprintf("%d:%s", i.ID, i.Role)
}
