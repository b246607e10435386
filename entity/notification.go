package entity

import "time"

// Kinds of notification rows. Welcome notifications only supply the popup title.
const (
	KindGeneral = "general"
	KindWelcome = "welcome"
)

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id,omitempty"`
	TaskID    int       `json:"task_id,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
