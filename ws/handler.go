package ws

import (
	"net/http"

	"go.uber.org/zap"

	"task-notifier/common"
)

// ServeWS upgrades an authenticated request and attaches it to the hub.
// The token comes from the query string because browsers cannot set headers
// on websocket handshakes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := common.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := common.NewWSConn(w, r)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	if !h.join(client) {
		conn.Close()
		return
	}

	go h.read(client)
	go h.write(client)
}

func (h *Hub) read(c *Client) {
	defer func() {
		h.leave(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			h.logger.Debug("websocket read closed", zap.Int("user_id", c.UserID), zap.Error(err))
			return
		}
	}
}

func (h *Hub) write(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteText(msg); err != nil {
			h.logger.Warn("websocket write error", zap.Int("user_id", c.UserID), zap.Error(err))
			return
		}
	}
}
