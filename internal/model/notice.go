package model

import (
	"time"

	"github.com/google/uuid"
)

type NoticeKind string

const (
	NoticeUpcomingSession NoticeKind = "upcoming_session"
	NoticeBookingUpdate   NoticeKind = "booking_update"
	NoticeNewRequest      NoticeKind = "new_request"
	NoticeStartsSoon      NoticeKind = "starts_soon"
	NoticeFeedbackRequest NoticeKind = "feedback_request"
)

// Notice - уведомление, вычисленное из текущего состояния слотов (не хранится)
type Notice struct {
	ID        uuid.UUID  `json:"id"`
	Kind      NoticeKind `json:"kind"`
	SlotID    int64      `json:"slot_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link"`
	Timestamp time.Time  `json:"timestamp"`
	Read      bool       `json:"read"`
}
