package service

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	confirmed := &model.Slot{
		ID:             5,
		TutorID:        tutor.ID,
		StudentID:      id(student.ID),
		ScheduledStart: at("2025-03-10 14:00"),
		ScheduledEnd:   at("2025-03-10 15:00"),
		Status:         model.SlotStatusConfirmed,
	}

	withStatus := func(st model.SlotStatus) *model.Slot {
		s := confirmed.Clone()
		s.Status = st
		return s
	}

	tests := []struct {
		name   string
		slot   *model.Slot
		user   *model.Identity
		now    time.Time
		allow  bool
		reason string
		link   string
	}{
		{name: "no slot", slot: nil, user: &student, now: at("2025-03-10 14:00"), reason: "missing information", link: "/student/dashboard"},
		{name: "no user", slot: confirmed, user: nil, now: at("2025-03-10 14:00"), reason: "missing information", link: "/"},
		{name: "stranger", slot: confirmed, user: &other, now: at("2025-03-10 14:00"), reason: "not authorized for this session", link: "/student/dashboard"},
		{name: "other tutor", slot: confirmed, user: &rival, now: at("2025-03-10 14:00"), reason: "not authorized for this session", link: "/tutor/dashboard"},
		{name: "pending", slot: withStatus(model.SlotStatusPending), user: &student, now: at("2025-03-10 14:00"), reason: "session is pending", link: "/student/dashboard"},
		{name: "completed", slot: withStatus(model.SlotStatusCompleted), user: &tutor, now: at("2025-03-10 14:00"), reason: "session is completed", link: "/tutor/dashboard"},
		{name: "a day early", slot: confirmed, user: &tutor, now: at("2025-03-09 13:45"), reason: "join in 1 day", link: "/tutor/dashboard"},
		{name: "just before window", slot: confirmed, user: &student, now: at("2025-03-10 13:45").Add(-time.Second), reason: "join in 1 minute", link: "/student/dashboard"},
		{name: "window opens", slot: confirmed, user: &student, now: at("2025-03-10 13:45"), allow: true, link: "/student/dashboard"},
		{name: "in session", slot: confirmed, user: &tutor, now: at("2025-03-10 14:30"), allow: true, link: "/tutor/dashboard"},
		{name: "window closes", slot: confirmed, user: &tutor, now: at("2025-03-10 15:15"), allow: true, link: "/tutor/dashboard"},
		{name: "after window", slot: confirmed, user: &tutor, now: at("2025-03-10 15:15").Add(time.Nanosecond), reason: "session has ended", link: "/tutor/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAccess(tt.slot, tt.user, tt.now)
			assert.Equal(t, tt.allow, got.CanAccess)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, tt.link, got.DashboardLink)
		})
	}
}

func TestDashboardLink(t *testing.T) {
	assert.Equal(t, "/tutor/dashboard", DashboardLink(model.RoleTutor))
	assert.Equal(t, "/student/dashboard", DashboardLink(model.RoleStudent))
	assert.Equal(t, "/", DashboardLink(""))
	assert.Equal(t, "/call/42", CallLink(42))
}
