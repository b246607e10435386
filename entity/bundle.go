package entity

// Summary holds caller-supplied counters. They are not reconciled with the
// lengths of the lists in NotificationBundle.
type Summary struct {
	TotalUnread   int `json:"totalUnread"`
	OverdueCount  int `json:"overdueCount"`
	DueTodayCount int `json:"dueTodayCount"`
}

// NotificationBundle is the aggregate shown in the login popup.
type NotificationBundle struct {
	PopupNotifications  []Notification `json:"popupNotifications"`
	OverdueTasks        []Task         `json:"overdueTasks"`
	TasksDueToday       []Task         `json:"tasksDueToday"`
	WelcomeNotification *Notification  `json:"welcomeNotification,omitempty"`
	Summary             Summary        `json:"summary"`
}

// HasItems reports whether any of the three lists is non-empty.
func (b *NotificationBundle) HasItems() bool {
	if b == nil {
		return false
	}
	return len(b.PopupNotifications) > 0 || len(b.OverdueTasks) > 0 || len(b.TasksDueToday) > 0
}
