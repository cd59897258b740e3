package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RecentWindow - насколько свежие изменения статуса попадают в уведомления
	RecentWindow = 7 * 24 * time.Hour
	// StartsSoonWindow - за сколько до начала репетитор получает "скоро начало"
	StartsSoonWindow = 2 * time.Hour
	// ReadRetention - сколько хранится отметка о прочтении
	ReadRetention = 30 * 24 * time.Hour
)

// noticeNamespace - пространство имён для детерминированных ID уведомлений
var noticeNamespace = uuid.MustParse("6f1c2b9e-4d1a-4c7e-9b8a-2f5d3e1a7c40")

// ReadStore хранит прочитанные уведомления: ID -> время самого уведомления
type ReadStore interface {
	ReadSet(ctx context.Context, key string) (map[uuid.UUID]time.Time, error)
	MarkRead(ctx context.Context, key string, id uuid.UUID, noticeAt time.Time) error
	Remove(ctx context.Context, key string, ids ...uuid.UUID) error
}

// NotificationService вычисляет уведомления из текущего состояния слотов.
// Своего состояния, кроме отметок о прочтении, не хранит.
type NotificationService struct {
	reader *SlotReader
	reads  ReadStore
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

func NewNotificationService(reader *SlotReader, reads ReadStore, loc *time.Location, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		reader: reader,
		reads:  reads,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock подменяет часы
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// List возвращает уведомления пользователя, новые сверху
func (s *NotificationService) List(ctx context.Context, me model.Identity) ([]model.Notice, error) {
	now := s.now()

	slots, err := s.relevantSlots(ctx, me, now)
	if err != nil {
		return nil, err
	}

	notices := Derive(me, slots, now, s.loc)

	readSet, err := s.pruneReadSet(ctx, me, now)
	if err != nil {
		return nil, err
	}

	for i := range notices {
		_, notices[i].Read = readSet[notices[i].ID]
	}

	return notices, nil
}

// Unread возвращает количество непрочитанных уведомлений
func (s *NotificationService) Unread(ctx context.Context, me model.Identity) (int, error) {
	notices, err := s.List(ctx, me)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, notice := range notices {
		if !notice.Read {
			n++
		}
	}
	return n, nil
}

// MarkRead отмечает уведомление прочитанным
func (s *NotificationService) MarkRead(ctx context.Context, me model.Identity, id uuid.UUID) error {
	notices, err := s.List(ctx, me)
	if err != nil {
		return err
	}

	at := s.now()
	for _, notice := range notices {
		if notice.ID == id {
			at = notice.Timestamp
			break
		}
	}

	if err := s.reads.MarkRead(ctx, me.ReadStateKey(), id, at); err != nil {
		return fmt.Errorf("mark notice read: %w", err)
	}
	return nil
}

// MarkAllRead отмечает прочитанными все текущие уведомления
func (s *NotificationService) MarkAllRead(ctx context.Context, me model.Identity) error {
	notices, err := s.List(ctx, me)
	if err != nil {
		return err
	}

	for _, notice := range notices {
		if notice.Read {
			continue
		}
		if err := s.reads.MarkRead(ctx, me.ReadStateKey(), notice.ID, notice.Timestamp); err != nil {
			return fmt.Errorf("mark notice read: %w", err)
		}
	}
	return nil
}

// pruneReadSet удаляет отметки об уведомлениях старше ReadRetention.
// Время уведомления хранится вместе с отметкой, поэтому удаляются
// и отметки уведомлений, которых уже нет в списке.
func (s *NotificationService) pruneReadSet(ctx context.Context, me model.Identity, now time.Time) (map[uuid.UUID]time.Time, error) {
	key := me.ReadStateKey()

	readSet, err := s.reads.ReadSet(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load read notices: %w", err)
	}

	cutoff := now.Add(-ReadRetention)
	var stale []uuid.UUID
	for id, at := range readSet {
		if at.Before(cutoff) {
			stale = append(stale, id)
			delete(readSet, id)
		}
	}

	if len(stale) > 0 {
		if err := s.reads.Remove(ctx, key, stale...); err != nil {
			s.logger.Warn("Failed to prune read notices",
				zap.String("key", key),
				zap.Int("count", len(stale)),
				zap.Error(err))
		}
	}

	return readSet, nil
}

// relevantSlots выбирает слоты пользователя в его роли
func (s *NotificationService) relevantSlots(ctx context.Context, me model.Identity, now time.Time) ([]*model.Slot, error) {
	filter := model.SlotFilter{
		Statuses: []model.SlotStatus{
			model.SlotStatusPending,
			model.SlotStatusConfirmed,
			model.SlotStatusCancelled,
			model.SlotStatusCompleted,
		},
		From: now.Add(-ReadRetention),
	}

	switch me.Role {
	case model.RoleTutor:
		filter.TutorID = me.ID
	case model.RoleStudent:
		filter.StudentID = me.ID
	default:
		return nil, &model.ValidationError{Field: "role", Message: "unknown role"}
	}

	slots, err := s.reader.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list slots for notices: %w", err)
	}
	return slots, nil
}

// Derive строит уведомления по слотам пользователя на момент now
func Derive(me model.Identity, slots []*model.Slot, now time.Time, loc *time.Location) []model.Notice {
	var (
		notices  []model.Notice
		upcoming *model.Slot
	)
	recent := now.Add(-RecentWindow)

	for _, slot := range slots {
		view, err := model.ResolveViewpoint(me, slot)
		if err != nil {
			continue
		}
		name := counterpartName(view)
		when := fmt.Sprintf("%s, %s",
			slot.ScheduledStart.In(loc).Format("Mon, Jan 2"),
			timewindow.FormatTimeRange(slot.ScheduledStart, slot.ScheduledEnd, loc))

		switch slot.Status {
		case model.SlotStatusPending:
			if view.Role() == model.RoleTutor {
				notices = append(notices, newNotice(model.NoticeNewRequest, slot, slot.UpdatedAt,
					"New booking request",
					fmt.Sprintf("%s requested a session on %s", name, when),
					DashboardLink(model.RoleTutor)))
			}

		case model.SlotStatusConfirmed:
			if slot.ScheduledStart.After(now) && (upcoming == nil || slot.ScheduledStart.Before(upcoming.ScheduledStart)) {
				upcoming = slot
			}
			if !slot.UpdatedAt.Before(recent) {
				notices = append(notices, newNotice(model.NoticeBookingUpdate, slot, slot.UpdatedAt,
					"Booking confirmed",
					fmt.Sprintf("Your session with %s on %s is confirmed", name, when),
					CallLink(slot.ID)))
			}
			until := slot.ScheduledStart.Sub(now)
			if view.Role() == model.RoleTutor && until > 0 && until <= StartsSoonWindow {
				notices = append(notices, newNotice(model.NoticeStartsSoon, slot, slot.ScheduledStart,
					"Session starts soon",
					fmt.Sprintf("Your session with %s starts in %s", name, timewindow.FormatTimeRemaining(until)),
					CallLink(slot.ID)))
			}

		case model.SlotStatusCancelled:
			if !slot.UpdatedAt.Before(recent) {
				msg := fmt.Sprintf("Your session with %s on %s was cancelled", name, when)
				if slot.CancellationReason != "" {
					msg += ": " + slot.CancellationReason
				}
				notices = append(notices, newNotice(model.NoticeBookingUpdate, slot, slot.UpdatedAt,
					"Booking cancelled", msg, DashboardLink(view.Role())))
			}

		case model.SlotStatusCompleted:
			if view.Role() == model.RoleStudent && !slot.UpdatedAt.Before(recent) {
				notices = append(notices, newNotice(model.NoticeFeedbackRequest, slot, slot.UpdatedAt,
					"How was your session?",
					fmt.Sprintf("Tell us how your session with %s went", name),
					fmt.Sprintf("/feedback/%d", slot.ID)))
			}
		}
	}

	if upcoming != nil {
		view, _ := model.ResolveViewpoint(me, upcoming)
		notices = append(notices, newNotice(model.NoticeUpcomingSession, upcoming, upcoming.ScheduledStart,
			"Upcoming session",
			fmt.Sprintf("Next session with %s on %s", counterpartName(view),
				timewindow.FormatTimeRange(upcoming.ScheduledStart, upcoming.ScheduledEnd, loc)),
			CallLink(upcoming.ID)))
	}

	sort.SliceStable(notices, func(i, j int) bool {
		if notices[i].Timestamp.Equal(notices[j].Timestamp) {
			return notices[i].ID.String() < notices[j].ID.String()
		}
		return notices[i].Timestamp.After(notices[j].Timestamp)
	})

	return notices
}

func newNotice(kind model.NoticeKind, slot *model.Slot, at time.Time, title, message, link string) model.Notice {
	return model.Notice{
		ID:        NoticeID(kind, slot, at),
		Kind:      kind,
		SlotID:    slot.ID,
		Title:     title,
		Message:   message,
		Link:      link,
		Timestamp: at,
	}
}

// NoticeID - детерминированный ID: одно и то же событие всегда даёт один ID
func NoticeID(kind model.NoticeKind, slot *model.Slot, at time.Time) uuid.UUID {
	name := fmt.Sprintf("%s:%d:%s:%d", kind, slot.ID, slot.Status, at.UTC().UnixMilli())
	return uuid.NewSHA1(noticeNamespace, []byte(name))
}

func counterpartName(view model.Viewpoint) string {
	other, ok := view.Counterpart()
	if ok && other.FirstName != "" {
		return other.FirstName
	}
	if view.Role() == model.RoleTutor {
		return "your student"
	}
	return "your tutor"
}
