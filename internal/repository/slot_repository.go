package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// slotColumns - колонки слота вместе с именами сторон (для уведомлений)
const slotColumns = `
	s.id, s.tutor_id, s.student_id, s.subject_id, s.last_student_id,
	s.scheduled_start, s.scheduled_end, s.status, s.tutor_notes,
	s.cancellation_reason, s.cancelled_by, s.created_at, s.updated_at,
	t.first_name, t.last_name, st.first_name, st.last_name
`

const slotJoins = `
	LEFT JOIN users t ON t.id = s.tutor_id
	LEFT JOIN users st ON st.id = s.student_id
`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новый свободный слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (tutor_id, scheduled_start, scheduled_end, status, tutor_notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.TutorID,
		slot.ScheduledStart,
		slot.ScheduledEnd,
		slot.Status,
		slot.TutorNotes,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// Get получает слот по ID
func (r *SlotRepository) Get(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots s ` + slotJoins + ` WHERE s.id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return slot, nil
}

// List получает слоты по фильтру, отсортированные по времени начала
func (r *SlotRepository) List(ctx context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.TutorID != 0 {
		conds = append(conds, "s.tutor_id = "+arg(filter.TutorID))
	}
	if filter.StudentID != 0 {
		conds = append(conds, "s.student_id = "+arg(filter.StudentID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		conds = append(conds, "s.status = ANY("+arg(statuses)+")")
	}
	if !filter.From.IsZero() {
		conds = append(conds, "s.scheduled_start >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "s.scheduled_start < "+arg(filter.To))
	}

	query := `SELECT ` + slotColumns + ` FROM slots s ` + slotJoins
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY s.scheduled_start`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	return slots, nil
}

// Update меняет время и заметки слота. updated_at не трогает: это время
// последней смены статуса. Если задан RequireStatus, слот должен быть
// в этом статусе, иначе возвращается ErrStatusConflict.
func (r *SlotRepository) Update(ctx context.Context, id int64, upd model.SlotUpdate) (*model.Slot, error) {
	query := `
		WITH updated AS (
			UPDATE slots
			SET scheduled_start = COALESCE($2, scheduled_start),
			    scheduled_end = COALESCE($3, scheduled_end),
			    tutor_notes = COALESCE($4, tutor_notes)
			WHERE id = $1 AND ($5 = '' OR status = $5)
			RETURNING *
		)
		SELECT ` + slotColumns + ` FROM updated s ` + slotJoins

	slot, err := scanSlot(r.QueryRow(ctx, query, id, upd.Start, upd.End, upd.Notes, string(upd.RequireStatus)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, r.missOrConflict(ctx, id)
		}
		return nil, fmt.Errorf("update slot: %w", err)
	}

	return slot, nil
}

// Delete удаляет слот. Удалить можно только свободный слот.
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM slots WHERE id = $1 AND status = 'open'`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return r.missOrConflict(ctx, id)
	}

	return nil
}

// Transition атомарно меняет статус from -> to (compare-and-swap по статусу)
func (r *SlotRepository) Transition(ctx context.Context, id int64, from, to model.SlotStatus, extra model.TransitionExtra) (*model.Slot, error) {
	set := ""
	args := []any{id, from, to}

	switch to {
	case model.SlotStatusPending:
		args = append(args, extra.StudentID, extra.SubjectID)
		set = `, student_id = $4, subject_id = $5`
	case model.SlotStatusOpen:
		// Отклонённая заявка освобождает слот, прежний студент остаётся в истории
		set = `, last_student_id = student_id, student_id = NULL, subject_id = NULL`
	case model.SlotStatusCancelled:
		args = append(args, extra.CancellationReason, extra.CancelledBy)
		set = `, cancellation_reason = $4, cancelled_by = $5`
	}

	query := `
		WITH updated AS (
			UPDATE slots
			SET status = $3` + set + `, updated_at = now()
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT ` + slotColumns + ` FROM updated s ` + slotJoins

	slot, err := scanSlot(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, r.missOrConflict(ctx, id)
		}
		return nil, fmt.Errorf("transition slot: %w", err)
	}

	return slot, nil
}

// missOrConflict отличает отсутствие слота от несовпадения статуса
func (r *SlotRepository) missOrConflict(ctx context.Context, id int64) error {
	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM slots WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check slot exists: %w", err)
	}

	if !exists {
		return model.ErrSlotNotFound
	}
	return ErrStatusConflict
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		slot                      model.Slot
		tutorFirst, tutorLast     *string
		studentFirst, studentLast *string
	)

	err := row.Scan(
		&slot.ID,
		&slot.TutorID,
		&slot.StudentID,
		&slot.SubjectID,
		&slot.LastStudentID,
		&slot.ScheduledStart,
		&slot.ScheduledEnd,
		&slot.Status,
		&slot.TutorNotes,
		&slot.CancellationReason,
		&slot.CancelledBy,
		&slot.CreatedAt,
		&slot.UpdatedAt,
		&tutorFirst,
		&tutorLast,
		&studentFirst,
		&studentLast,
	)
	if err != nil {
		return nil, err
	}

	slot.ScheduledStart = slot.ScheduledStart.UTC()
	slot.ScheduledEnd = slot.ScheduledEnd.UTC()

	if tutorFirst != nil {
		slot.Tutor = &model.User{ID: slot.TutorID, FirstName: *tutorFirst, LastName: deref(tutorLast)}
	}
	if studentFirst != nil && slot.StudentID != nil {
		slot.Student = &model.User{ID: *slot.StudentID, FirstName: *studentFirst, LastName: deref(studentLast)}
	}

	return &slot, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
