package common

import "encoding/json"

// Websocket event names.
const (
	EventLoginSummary = "login_summary"
	EventNotification = "notification"
	EventTaskCreated  = "task_created"
	EventTaskUpdated  = "task_updated"
	EventTaskDeleted  = "task_deleted"
)

type WSMessage struct {
	Event     string      `json:"event"`
	TaskID    int         `json:"task_id,omitempty"`
	Title     string      `json:"title,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// PushJob addresses a websocket message to one user.
type PushJob struct {
	UserID  int
	Message []byte
}

// NewPushJob encodes msg for userID.
func NewPushJob(userID int, msg WSMessage) (PushJob, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return PushJob{}, err
	}
	return PushJob{UserID: userID, Message: data}, nil
}
