// Package cache - кэш выборок слотов с инвалидацией по тегам.
// Каждая выборка помечается тегами (репетитор, студент, слот), и любая
// мутация сбрасывает все выборки с затронутыми тегами.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// DefaultTTL - сколько живёт выборка, если её никто не сбросил
const DefaultTTL = 30 * time.Second

// BoundStep - шаг, до которого расширяются границы выборки.
// Запросы в пределах одного шага делят одну запись кэша.
const BoundStep = time.Hour

// SlotCache хранит выборки слотов по ключу
type SlotCache interface {
	Get(ctx context.Context, key string) ([]*model.Slot, bool, error)
	Set(ctx context.Context, key string, slots []*model.Slot, tags ...string) error
	Invalidate(ctx context.Context, tags ...string) error
}

// AllTag помечает выборки без владельца (просмотр свободных слотов всех репетиторов)
const AllTag = "all"

// TutorTag - тег выборок репетитора
func TutorTag(id int64) string { return fmt.Sprintf("tutor:%d", id) }

// StudentTag - тег выборок студента
func StudentTag(id int64) string { return fmt.Sprintf("student:%d", id) }

// SlotTag - тег записи одного слота
func SlotTag(id int64) string { return fmt.Sprintf("slot:%d", id) }

// SlotKey - ключ записи одного слота
func SlotKey(id int64) string { return "get:" + SlotTag(id) }

// FilterKey строит стабильный ключ выборки
func FilterKey(f model.SlotFilter) string {
	statuses := make([]string, len(f.Statuses))
	for i, st := range f.Statuses {
		statuses[i] = string(st)
	}
	sort.Strings(statuses)

	return fmt.Sprintf("list:t=%d:s=%d:st=%s:from=%s:to=%s",
		f.TutorID,
		f.StudentID,
		strings.Join(statuses, ","),
		formatBound(f.From),
		formatBound(f.To),
	)
}

// Widen расширяет границы выборки до BoundStep: From вниз, To вверх.
// Результат широкой выборки содержит все слоты исходной.
func Widen(f model.SlotFilter) model.SlotFilter {
	if !f.From.IsZero() {
		f.From = f.From.UTC().Truncate(BoundStep)
	}
	if !f.To.IsZero() {
		to := f.To.UTC()
		f.To = to.Truncate(BoundStep)
		if f.To.Before(to) {
			f.To = f.To.Add(BoundStep)
		}
	}
	return f
}

// Narrow оставляет слоты, попадающие в исходную выборку
func Narrow(f model.SlotFilter, slots []*model.Slot) []*model.Slot {
	var out []*model.Slot
	for _, s := range slots {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// FilterTags возвращает теги, под которыми хранится выборка
func FilterTags(f model.SlotFilter) []string {
	var tags []string
	if f.TutorID != 0 {
		tags = append(tags, TutorTag(f.TutorID))
	}
	if f.StudentID != 0 {
		tags = append(tags, StudentTag(f.StudentID))
	}
	if len(tags) == 0 {
		tags = append(tags, AllTag)
	}
	return tags
}

// SlotTags - теги, которые нужно сбросить после изменения слота
func SlotTags(slot *model.Slot) []string {
	tags := []string{SlotTag(slot.ID), TutorTag(slot.TutorID), AllTag}
	if slot.StudentID != nil {
		tags = append(tags, StudentTag(*slot.StudentID))
	}
	if slot.LastStudentID != nil {
		tags = append(tags, StudentTag(*slot.LastStudentID))
	}
	return tags
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func cloneSlots(slots []*model.Slot) []*model.Slot {
	if slots == nil {
		return nil
	}
	out := make([]*model.Slot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}
