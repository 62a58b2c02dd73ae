package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"wikihub/internal/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub держит комнаты по id статьи. Реализует Publisher для одного инстанса.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	clients  map[*Client]struct{}
	upgrader websocket.Upgrader
	sendBuf  int
}

func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		sendBuf: 32,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := map[string]struct{}{}
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeWS — апгрейд HTTP-соединения до websocket.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("WS: не удалось выполнить upgrade", zap.Error(err))
		return
	}

	c := newClient(h, conn, h.sendBuf)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logger.Log.Debug("WS: клиент подключён", zap.String("remote", r.RemoteAddr))

	go c.writePump()
	go c.readPump()
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.Deliver(ev)
	return nil
}

// Deliver отправляет событие всем клиентам комнаты. Медленный клиент
// с полным буфером событие пропускает.
func (h *Hub) Deliver(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("WS: не удалось сериализовать событие", zap.String("event", ev.Name), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[ev.ArticleID] {
		select {
		case c.send <- msg:
		default:
			logger.Log.Warn("WS: буфер клиента переполнен, событие пропущено",
				zap.String("event", ev.Name), zap.String("article_id", ev.ArticleID))
		}
	}
}

func (h *Hub) join(c *Client, articleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[articleID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[articleID] = room
	}
	room[c] = struct{}{}
	c.rooms[articleID] = struct{}{}
}

func (h *Hub) leave(c *Client, articleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, articleID)
}

func (h *Hub) leaveLocked(c *Client, articleID string) {
	if room, ok := h.rooms[articleID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, articleID)
		}
	}
	delete(c.rooms, articleID)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for id := range c.rooms {
		h.leaveLocked(c, id)
	}
	delete(h.clients, c)
	close(c.send)
}

// RoomSize — число клиентов в комнате статьи.
func (h *Hub) RoomSize(articleID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[articleID])
}

// Close разрывает все соединения.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}
