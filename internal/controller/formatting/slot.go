package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/timewindow"
)

// SlotLine - одна строка списка слотов
func SlotLine(slot *model.Slot, loc *time.Location) string {
	display := GetSlotStatusDisplay(slot.Status)
	return fmt.Sprintf("%s #%d %s, %s (%s)",
		display.Emoji,
		slot.ID,
		slot.ScheduledStart.In(loc).Format("Mon, Jan 2"),
		timewindow.FormatTimeRange(slot.ScheduledStart, slot.ScheduledEnd, loc),
		timewindow.FormatDuration(slot.ScheduledStart, slot.ScheduledEnd),
	)
}

// SlotDetails - карточка слота глазами пользователя
func SlotDetails(slot *model.Slot, view model.Viewpoint, loc *time.Location) string {
	display := GetSlotStatusDisplay(slot.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Занятие #%d\n\n", display.Emoji, slot.ID)
	fmt.Fprintf(&sb, "📅 %s\n", slot.ScheduledStart.In(loc).Format("Monday, Jan 2"))
	fmt.Fprintf(&sb, "🕐 %s (%s)\n",
		timewindow.FormatTimeRange(slot.ScheduledStart, slot.ScheduledEnd, loc),
		timewindow.FormatDuration(slot.ScheduledStart, slot.ScheduledEnd))
	fmt.Fprintf(&sb, "📊 Статус: %s\n", display.Text)

	if view != nil {
		if other, ok := view.Counterpart(); ok {
			label := "👨‍🏫 Репетитор"
			if view.Role() == model.RoleTutor {
				label = "👤 Студент"
			}
			fmt.Fprintf(&sb, "%s: %s\n", label, FullName(other.FirstName, other.LastName))
		}
	}

	if slot.TutorNotes != "" {
		fmt.Fprintf(&sb, "📝 %s\n", slot.TutorNotes)
	}
	if slot.CancellationReason != "" {
		fmt.Fprintf(&sb, "💬 Причина отмены: %s\n", slot.CancellationReason)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FullName склеивает имя и фамилию
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// NoticeLine - строка уведомления
func NoticeLine(n model.Notice, loc *time.Location) string {
	mark := "🔔"
	if n.Read {
		mark = "▫️"
	}
	return fmt.Sprintf("%s %s · %s\n%s\n%s",
		mark, n.Title, n.Timestamp.In(loc).Format("Jan 2, 3:04 PM"), n.Message, n.ID)
}
