package component

import "task-notifier/entity"

// Color tokens handed to the presentation layer.
const (
	ColorRed     = "red"
	ColorOrange  = "orange"
	ColorGold    = "gold"
	ColorGreen   = "green"
	ColorDefault = "gray"
)

var priorityColors = map[entity.Priority]string{
	entity.PriorityUrgent: ColorRed,
	entity.PriorityHigh:   ColorOrange,
	entity.PriorityMedium: ColorGold,
	entity.PriorityLow:    ColorGreen,
}

// PriorityColor maps a priority to its color token. Every input yields a
// non-empty token; unknown and empty priorities get ColorDefault.
func PriorityColor(p entity.Priority) string {
	if c, ok := priorityColors[p.Normalize()]; ok {
		return c
	}
	return ColorDefault
}
