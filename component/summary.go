package component

import (
	"strings"
	"time"

	"task-notifier/entity"
)

// Display caps for the popup sections.
const (
	TaskSectionCap         = 3
	NotificationSectionCap = 5
)

// DefaultTitle is used when the bundle carries no welcome notification.
const DefaultTitle = "Welcome back!"

// AllCaughtUpMessage is the body of the empty-state branch.
const AllCaughtUpMessage = "You're all caught up! No overdue tasks, nothing due today and no new notifications."

type TaskItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	DueLabel string `json:"dueLabel"`
	Priority string `json:"priority"`
	Color    string `json:"color"`
}

type NotificationItem struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	CreatedLabel string `json:"createdLabel"`
	Priority     string `json:"priority"`
	Color        string `json:"color"`
}

// TaskSection is a truncated task list. More is the number of hidden items.
type TaskSection struct {
	Items []TaskItem `json:"items"`
	More  int        `json:"more"`
}

type NotificationSection struct {
	Items []NotificationItem `json:"items"`
	More  int                `json:"more"`
}

// SummaryView is the rendered login popup. Exactly one of AllCaughtUp or a
// non-empty set of sections is present.
type SummaryView struct {
	Title         string               `json:"title"`
	Summary       entity.Summary       `json:"summary"`
	AllCaughtUp   bool                 `json:"allCaughtUp"`
	EmptyMessage  string               `json:"emptyMessage,omitempty"`
	Overdue       *TaskSection         `json:"overdue,omitempty"`
	DueToday      *TaskSection         `json:"dueToday,omitempty"`
	Notifications *NotificationSection `json:"notifications,omitempty"`
}

// ShouldOpen reports whether the popup becomes visible for b. Summary counts
// are ignored; only the three lists decide.
func ShouldOpen(b *entity.NotificationBundle) bool {
	return b.HasItems()
}

// Render projects b into a SummaryView. A nil bundle renders nothing.
// b is only read.
func Render(b *entity.NotificationBundle, now time.Time) *SummaryView {
	if b == nil {
		return nil
	}
	v := &SummaryView{
		Title:   popupTitle(b.WelcomeNotification),
		Summary: b.Summary,
	}
	if !b.HasItems() {
		v.AllCaughtUp = true
		v.EmptyMessage = AllCaughtUpMessage
		return v
	}
	if len(b.OverdueTasks) > 0 {
		v.Overdue = taskSection(b.OverdueTasks)
	}
	if len(b.TasksDueToday) > 0 {
		v.DueToday = taskSection(b.TasksDueToday)
	}
	if len(b.PopupNotifications) > 0 {
		v.Notifications = notificationSection(b.PopupNotifications, now)
	}
	return v
}

func popupTitle(welcome *entity.Notification) string {
	if welcome == nil {
		return DefaultTitle
	}
	if title := strings.TrimSpace(welcome.Title); title != "" {
		return title
	}
	return DefaultTitle
}

// truncate returns how many items to show and how many are hidden.
func truncate(n, limit int) (shown, more int) {
	if n <= limit {
		return n, 0
	}
	return limit, n - limit
}

func taskSection(tasks []entity.Task) *TaskSection {
	shown, more := truncate(len(tasks), TaskSectionCap)
	items := make([]TaskItem, 0, shown)
	for _, t := range tasks[:shown] {
		items = append(items, TaskItem{
			ID:       t.ID,
			Title:    t.Title,
			DueLabel: FormatDueDate(t.DueDate),
			Priority: string(t.Priority),
			Color:    PriorityColor(t.Priority),
		})
	}
	return &TaskSection{Items: items, More: more}
}

func notificationSection(ns []entity.Notification, now time.Time) *NotificationSection {
	shown, more := truncate(len(ns), NotificationSectionCap)
	items := make([]NotificationItem, 0, shown)
	for _, n := range ns[:shown] {
		items = append(items, NotificationItem{
			ID:           n.ID,
			Title:        n.Title,
			Message:      n.Message,
			CreatedLabel: RelativeTime(n.CreatedAt, now),
			Priority:     string(n.Priority),
			Color:        PriorityColor(n.Priority),
		})
	}
	return &NotificationSection{Items: items, More: more}
}
