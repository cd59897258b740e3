package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/google/uuid"
)

// commandArgs разбирает "/book 42 7" -> ["42", "7"]
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// commandRest возвращает всё после n-го аргумента: "/cancelslot 42 не успеваю" -> "не успеваю"
func commandRest(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) <= n+1 {
		return ""
	}
	return strings.Join(fields[n+1:], " ")
}

// parseID разбирает положительный ID
func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(value, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// slotIDArg - первый аргумент команды как ID слота
func slotIDArg(text string) (int64, error) {
	args := commandArgs(text)
	if len(args) == 0 {
		return 0, fmt.Errorf("slot id is required")
	}
	return parseID(args[0])
}

// parseNoticeID разбирает ID уведомления
func parseNoticeID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// parseRole разбирает роль из аргумента команды
func parseRole(value string) (model.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "tutor", "репетитор":
		return model.RoleTutor, true
	case "student", "студент":
		return model.RoleStudent, true
	}
	return "", false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
