package entity

import "time"

// Task statuses accepted by the task handlers.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

type Task struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  Priority  `json:"priority,omitempty"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}
