package component

import (
	"strings"

	"task-notifier/entity"
)

var validStatuses = map[string]bool{
	entity.StatusTodo:       true,
	entity.StatusInProgress: true,
	entity.StatusDone:       true,
}

// NormalizeStatus lower-cases s and accepts the hyphenated "in-progress" spelling.
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "in-progress" {
		return entity.StatusInProgress
	}
	return s
}

func ValidStatus(s string) bool {
	return validStatuses[NormalizeStatus(s)]
}
