package realtime

import (
	"encoding/json"
	"time"

	"wikihub/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{} // под hub.mu
}

type inbound struct {
	Event     string `json:"event"`
	ArticleID string `json:"articleId"`
}

func newClient(h *Hub, conn *websocket.Conn, buf int) *Client {
	return &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, buf),
		rooms: make(map[string]struct{}),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Debug("WS: соединение закрыто", zap.Error(err))
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil || msg.ArticleID == "" {
			logger.Log.Debug("WS: некорректное сообщение клиента", zap.ByteString("raw", raw))
			continue
		}

		switch msg.Event {
		case EventJoinArticle:
			c.hub.join(c, msg.ArticleID)
			c.ack(EventJoined, msg.ArticleID)
		case EventLeaveArticle:
			c.hub.leave(c, msg.ArticleID)
			c.ack(EventLeft, msg.ArticleID)
		default:
			logger.Log.Debug("WS: неизвестное событие", zap.String("event", msg.Event))
		}
	}
}

func (c *Client) ack(name, articleID string) {
	b, _ := json.Marshal(Event{Name: name, ArticleID: articleID})
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
