package timewindow

import (
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
)

// LocalParts - момент времени, разложенный на локальные дату и время
type LocalParts struct {
	Date string // "2006-01-02"
	Time string // "15:04"
}

// AvailabilityPayload - данные для создания или изменения свободного слота
type AvailabilityPayload struct {
	Start time.Time
	End   time.Time
	Notes string
}

// ReschedulePayload - новое время подтверждённого занятия
type ReschedulePayload struct {
	Start time.Time
	End   time.Time
}

// FromUTCToLocalParts раскладывает момент на локальные дату и время (для заполнения форм)
func FromUTCToLocalParts(t time.Time, loc *time.Location) LocalParts {
	local := t.In(loc)
	return LocalParts{
		Date: local.Format(dateLayout),
		Time: local.Format(timeLayout),
	}
}

// MakeAvailabilityPayload собирает локальные дату и время в моменты UTC.
// Обратная к FromUTCToLocalParts.
func MakeAvailabilityPayload(date, startTime, endTime, notes string, loc *time.Location) (AvailabilityPayload, error) {
	start, end, err := composeWindow(date, startTime, endTime, loc)
	if err != nil {
		return AvailabilityPayload{}, err
	}
	return AvailabilityPayload{
		Start: start,
		End:   end,
		Notes: strings.TrimSpace(notes),
	}, nil
}

// MakeReschedulePayload собирает новое окно для переноса занятия
func MakeReschedulePayload(date, startTime, endTime string, loc *time.Location) (ReschedulePayload, error) {
	start, end, err := composeWindow(date, startTime, endTime, loc)
	if err != nil {
		return ReschedulePayload{}, err
	}
	return ReschedulePayload{Start: start, End: end}, nil
}

// RequireFields проверяет что дата и оба времени заданы
func RequireFields(date, startTime, endTime string) error {
	switch {
	case strings.TrimSpace(date) == "":
		return &model.ValidationError{Field: "date", Message: "date is required"}
	case strings.TrimSpace(startTime) == "":
		return &model.ValidationError{Field: "start_time", Message: "start time is required"}
	case strings.TrimSpace(endTime) == "":
		return &model.ValidationError{Field: "end_time", Message: "end time is required"}
	}
	return nil
}

func composeWindow(date, startTime, endTime string, loc *time.Location) (time.Time, time.Time, error) {
	if err := RequireFields(date, startTime, endTime); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "start_time", Message: "invalid date or time"}
	}
	end, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "end_time", Message: "invalid date or time"}
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "end_time", Message: "end time must be after start time"}
	}

	return start.UTC(), end.UTC(), nil
}
