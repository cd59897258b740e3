package timewindow

import (
	"fmt"
	"iter"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

const (
	// DateOptionsDays - на сколько дней вперёд можно выбрать дату
	DateOptionsDays = 30
	// SlotStep - шаг сетки времени
	SlotStep = 30 * time.Minute

	dayStartMinutes = 7 * 60  // 07:00 - первое время начала
	dayEndMinutes   = 22 * 60 // 22:00 - последнее время начала
)

// DateOption - дата для выбора: значение "2006-01-02" и подпись
type DateOption struct {
	Value string
	Label string
}

// TimeOption - время суток для выбора: значение "15:04" и подпись
type TimeOption struct {
	Value string
	Label string
}

// GenerateDateOptions возвращает ленивую последовательность из 30 дней начиная
// с сегодняшнего (в зоне loc). Последовательность можно обходить повторно.
func GenerateDateOptions(now time.Time, loc *time.Location) iter.Seq[DateOption] {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	return func(yield func(DateOption) bool) {
		for i := 0; i < DateOptionsDays; i++ {
			day := today.AddDate(0, 0, i)
			opt := DateOption{
				Value: day.Format(dateLayout),
				Label: dateLabel(day, i),
			}
			if !yield(opt) {
				return
			}
		}
	}
}

func dateLabel(day time.Time, offset int) string {
	switch offset {
	case 0:
		return "Today, " + day.Format("Jan 2")
	case 1:
		return "Tomorrow, " + day.Format("Jan 2")
	}
	return day.Format("Mon, Jan 2")
}

// GenerateTimeSlots возвращает сетку времени начала занятий на день
func GenerateTimeSlots() []TimeOption {
	var opts []TimeOption
	for m := dayStartMinutes; m <= dayEndMinutes; m += int(SlotStep / time.Minute) {
		opts = append(opts, timeOption(m))
	}
	return opts
}

// GetAvailableEndTimes возвращает варианты окончания строго позже startTime
// с тем же шагом. Последний вариант - через шаг после последнего времени начала.
func GetAvailableEndTimes(startTime string) []TimeOption {
	start, err := parseClock(startTime)
	if err != nil {
		return nil
	}

	var opts []TimeOption
	last := dayEndMinutes + int(SlotStep/time.Minute)
	for m := dayStartMinutes; m <= last; m += int(SlotStep / time.Minute) {
		if m > start {
			opts = append(opts, timeOption(m))
		}
	}
	return opts
}

// CalculateDuration возвращает количество минут между двумя временами суток.
// Равные значения дают 0 - вызывающий код должен считать это ошибкой.
func CalculateDuration(startTime, endTime string) (int, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return 0, &model.ValidationError{Field: "start_time", Message: err.Error()}
	}
	end, err := parseClock(endTime)
	if err != nil {
		return 0, &model.ValidationError{Field: "end_time", Message: err.Error()}
	}
	return end - start, nil
}

// parseClock разбирает "15:04" в минуты от начала суток
func parseClock(value string) (int, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func timeOption(minutes int) TimeOption {
	t := time.Date(2000, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC)
	return TimeOption{
		Value: t.Format(timeLayout),
		Label: t.Format(clockLayout),
	}
}
