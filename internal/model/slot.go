package model

import "time"

type SlotStatus string

const (
	SlotStatusOpen      SlotStatus = "open"      // Свободен, можно записаться
	SlotStatusPending   SlotStatus = "pending"   // Ожидает решения репетитора
	SlotStatusConfirmed SlotStatus = "confirmed" // Подтверждён
	SlotStatusCancelled SlotStatus = "cancelled" // Отменён одной из сторон
	SlotStatusCompleted SlotStatus = "completed" // Занятие состоялось
)

// Valid проверяет что статус известен
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusOpen, SlotStatusPending, SlotStatusConfirmed, SlotStatusCancelled, SlotStatusCompleted:
		return true
	}
	return false
}

// Terminal возвращает true для статусов, из которых переходов нет
func (s SlotStatus) Terminal() bool {
	return s == SlotStatusCancelled || s == SlotStatusCompleted
}

// Slot - окно времени репетитора. После записи студента хранит и саму бронь.
type Slot struct {
	ID                 int64      `json:"id"`
	TutorID            int64      `json:"tutor_id"`
	StudentID          *int64     `json:"student_id"`      // nil пока слот свободен
	SubjectID          *int64     `json:"subject_id"`      // nil пока слот свободен
	LastStudentID      *int64     `json:"last_student_id"` // кто запрашивал слот до отклонения
	ScheduledStart     time.Time  `json:"scheduled_start"`
	ScheduledEnd       time.Time  `json:"scheduled_end"`
	Status             SlotStatus `json:"status"`
	TutorNotes         string     `json:"tutor_notes"`
	CancellationReason string     `json:"cancellation_reason"`
	CancelledBy        *int64     `json:"cancelled_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Дополнительные поля для удобства (не из таблицы slots)
	Tutor   *User `json:"tutor,omitempty"`
	Student *User `json:"student,omitempty"`
}

// Duration возвращает длительность слота
func (s *Slot) Duration() time.Duration {
	return s.ScheduledEnd.Sub(s.ScheduledStart)
}

// IsParty проверяет что пользователь - одна из сторон слота
func (s *Slot) IsParty(userID int64) bool {
	if s.TutorID == userID {
		return true
	}
	return s.StudentID != nil && *s.StudentID == userID
}

// Clone возвращает независимую копию слота
func (s *Slot) Clone() *Slot {
	c := *s
	c.StudentID = cloneID(s.StudentID)
	c.SubjectID = cloneID(s.SubjectID)
	c.LastStudentID = cloneID(s.LastStudentID)
	c.CancelledBy = cloneID(s.CancelledBy)
	if s.Tutor != nil {
		t := *s.Tutor
		c.Tutor = &t
	}
	if s.Student != nil {
		st := *s.Student
		c.Student = &st
	}
	return &c
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// SlotFilter описывает выборку слотов
type SlotFilter struct {
	TutorID   int64        // 0 - любой репетитор
	StudentID int64        // 0 - любой студент
	Statuses  []SlotStatus // пусто - любые статусы
	From      time.Time    // начало слота >= From (нулевое значение - без ограничения)
	To        time.Time    // начало слота < To (нулевое значение - без ограничения)
}

// Matches проверяет что слот попадает в выборку
func (f SlotFilter) Matches(s *Slot) bool {
	if f.TutorID != 0 && s.TutorID != f.TutorID {
		return false
	}
	if f.StudentID != 0 && (s.StudentID == nil || *s.StudentID != f.StudentID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if st == s.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && s.ScheduledStart.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !s.ScheduledStart.Before(f.To) {
		return false
	}
	return true
}

// SlotUpdate - частичное изменение слота; nil-поля не меняются
type SlotUpdate struct {
	Start *time.Time
	End   *time.Time
	Notes *string
	// RequireStatus - изменение применяется только если слот в этом статусе
	RequireStatus SlotStatus
}
