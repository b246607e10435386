package entity

import "strings"

// Priority is an open set: values outside the known four are kept as-is and
// rendered with the neutral presentation.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Normalize lower-cases and trims p.
func (p Priority) Normalize() Priority {
	return Priority(strings.ToLower(strings.TrimSpace(string(p))))
}

// Known reports whether p is one of the four recognized priorities.
func (p Priority) Known() bool {
	switch p.Normalize() {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
