package service

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
)

// AccessMargin - за сколько до начала и сколько после конца можно войти в звонок
const AccessMargin = 15 * time.Minute

const (
	ReasonMissingInformation = "missing information"
	ReasonNotAuthorized      = "not authorized for this session"
	ReasonSessionEnded       = "session has ended"
)

// AccessDecision - можно ли сейчас войти в звонок по слоту
type AccessDecision struct {
	CanAccess     bool   `json:"can_access"`
	Reason        string `json:"reason,omitempty"`
	DashboardLink string `json:"dashboard_link"`
}

// DashboardLink - куда вернуть пользователя в зависимости от роли
func DashboardLink(role model.Role) string {
	switch role {
	case model.RoleTutor:
		return "/tutor/dashboard"
	case model.RoleStudent:
		return "/student/dashboard"
	}
	return "/"
}

// CallLink - ссылка на звонок по слоту
func CallLink(slotID int64) string {
	return fmt.Sprintf("/call/%d", slotID)
}

// CanAccess решает, пускать ли пользователя в звонок в момент now.
// Чистая функция: не обращается к хранилищу и никогда не паникует.
func CanAccess(slot *model.Slot, user *model.Identity, now time.Time) AccessDecision {
	if slot == nil || user == nil {
		link := "/"
		if user != nil {
			link = DashboardLink(user.Role)
		}
		return AccessDecision{Reason: ReasonMissingInformation, DashboardLink: link}
	}

	deny := func(reason string) AccessDecision {
		return AccessDecision{Reason: reason, DashboardLink: DashboardLink(user.Role)}
	}

	if _, err := model.ResolveViewpoint(*user, slot); err != nil {
		return deny(ReasonNotAuthorized)
	}

	if slot.Status != model.SlotStatusConfirmed {
		return deny(fmt.Sprintf("session is %s", slot.Status))
	}

	opens := slot.ScheduledStart.Add(-AccessMargin)
	closes := slot.ScheduledEnd.Add(AccessMargin)

	if now.Before(opens) {
		return deny("join in " + timewindow.FormatTimeRemaining(opens.Sub(now)))
	}
	if now.After(closes) {
		return deny(ReasonSessionEnded)
	}

	return AccessDecision{CanAccess: true, DashboardLink: DashboardLink(user.Role)}
}
