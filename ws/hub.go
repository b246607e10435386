package ws

import (
	"sync"

	"go.uber.org/zap"

	"task-notifier/common"
)

type Client struct {
	Conn   *common.WSConn
	UserID int
	Send   chan []byte
}

// Hub routes push jobs to the connected client of each user.
type Hub struct {
	Clients    sync.Map
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan common.PushJob
	logger     *zap.Logger
	stopped    chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan common.PushJob, 64),
		logger:     logger,
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	defer close(h.stopped)
	for {
		select {
		case <-done:
			return
		case client := <-h.Register:
			if old, loaded := h.Clients.Swap(client.UserID, client); loaded {
				close(old.(*Client).Send)
			}
			h.logger.Debug("ws client registered", zap.Int("user_id", client.UserID))
		case client := <-h.Unregister:
			if h.Clients.CompareAndDelete(client.UserID, client) {
				close(client.Send)
			}
		case job := <-h.Broadcast:
			val, ok := h.Clients.Load(job.UserID)
			if !ok {
				continue
			}
			client := val.(*Client)
			select {
			case client.Send <- job.Message:
			default:
				h.logger.Warn("ws send buffer full, dropping message", zap.Int("user_id", job.UserID))
			}
		}
	}
}

// Push queues job without blocking the caller. It reports whether the job was queued.
func (h *Hub) Push(job common.PushJob) bool {
	if h == nil {
		return false
	}
	select {
	case h.Broadcast <- job:
		return true
	default:
		h.logger.Warn("ws broadcast queue full", zap.Int("user_id", job.UserID))
		return false
	}
}

// join registers c and reports false once Run has returned.
func (h *Hub) join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// leave unregisters c. It does not block after Run has returned.
func (h *Hub) leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.stopped:
	}
}
