// Package timewindow содержит чистые функции для работы со временем слотов:
// форматирование, списки вариантов для выбора и перевод локального времени в UTC.
package timewindow

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	clockLayout = "3:04 PM"
	dateLayout  = "2006-01-02"
	timeLayout  = "15:04"
)

// FormatTimeRange форматирует диапазон времени в локальной зоне: "2:00 PM – 3:00 PM"
func FormatTimeRange(start, end time.Time, loc *time.Location) string {
	return fmt.Sprintf("%s – %s", start.In(loc).Format(clockLayout), end.In(loc).Format(clockLayout))
}

// FormatDuration форматирует длительность: "1hr, 30min". Нулевые части не выводятся.
func FormatDuration(start, end time.Time) string {
	total := int(end.Sub(start) / time.Minute)
	if total <= 0 {
		return ""
	}

	hours := total / 60
	mins := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dhr", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dmin", mins))
	}
	return strings.Join(parts, ", ")
}

var remainingUnits = []struct {
	name string
	size time.Duration
}{
	{"week", 7 * 24 * time.Hour},
	{"day", 24 * time.Hour},
	{"hour", time.Hour},
	{"minute", time.Minute},
}

// FormatTimeRemaining переводит интервал в одну наибольшую целую единицу
// (неделя > день > час > минута) с округлением вверх: 90 минут -> "2 hours".
// Для d <= 0 возвращает "now".
func FormatTimeRemaining(d time.Duration) string {
	if d <= 0 {
		return "now"
	}

	for _, unit := range remainingUnits {
		if d >= unit.size || unit.size == time.Minute {
			n := int(math.Ceil(float64(d) / float64(unit.size)))
			return pluralize(n, unit.name)
		}
	}
	return "now"
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
