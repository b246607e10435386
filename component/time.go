package component

import (
	"fmt"
	"time"
)

const dueDateLayout = "Jan 2, 2006"

// NoDueDate is shown for tasks without a due date.
const NoDueDate = "No due date"

// RelativeTime formats t against now as "3 hours ago". A zero t yields an
// empty label; times in the future clamp to "just now".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	delta := now.Sub(t)
	if delta < time.Minute {
		return "just now"
	}
	if delta < time.Hour {
		return plural(int(delta/time.Minute), "minute")
	}
	if delta < 24*time.Hour {
		return plural(int(delta/time.Hour), "hour")
	}
	days := int(delta / (24 * time.Hour))
	switch {
	case days < 30:
		return plural(days, "day")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatDueDate renders an absolute calendar date.
func FormatDueDate(d time.Time) string {
	if d.IsZero() {
		return NoDueDate
	}
	return d.Format(dueDateLayout)
}
