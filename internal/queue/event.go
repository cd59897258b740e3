// Package queue описывает события жизненного цикла слотов и публикует их в RabbitMQ.
package queue

import "time"

const (
	// SlotEventsQueue - очередь изменений статуса слотов
	SlotEventsQueue = "slot.events"
	// RemindersQueue - очередь напоминаний о скором начале занятия
	RemindersQueue = "slot.reminders"
)

// SlotEvent публикуется после каждого успешного перехода статуса
type SlotEvent struct {
	SlotID             int64     `json:"slot_id"`
	TutorID            int64     `json:"tutor_id"`
	StudentID          *int64    `json:"student_id,omitempty"`
	From               string    `json:"from"`
	To                 string    `json:"to"`
	ActorID            int64     `json:"actor_id,omitempty"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	ScheduledStart     time.Time `json:"scheduled_start"`
	ScheduledEnd       time.Time `json:"scheduled_end"`
	At                 time.Time `json:"at"`
}

// SessionReminder публикуется планировщиком для подтверждённых занятий,
// которые скоро начнутся
type SessionReminder struct {
	SlotID         int64     `json:"slot_id"`
	TutorID        int64     `json:"tutor_id"`
	StudentID      int64     `json:"student_id"`
	ScheduledStart time.Time `json:"scheduled_start"`
	StartsIn       string    `json:"starts_in"`
	CallLink       string    `json:"call_link"`
}
