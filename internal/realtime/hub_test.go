package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func joinRoom(t *testing.T, conn *websocket.Conn, articleID string) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{"event": EventJoinArticle, "articleId": articleID}))
	ack := readEvent(t, conn)
	require.Equal(t, EventJoined, ack.Name)
	require.Equal(t, articleID, ack.ArticleID)
}

func TestHubDeliversOnlyToJoinedRoom(t *testing.T) {
	h := NewHub([]string{"*"})
	a := dialHub(t, h)
	b := dialHub(t, h)

	joinRoom(t, a, "article-1")
	joinRoom(t, b, "article-2")

	ev, err := NewEvent(EventNotification, "article-1", map[string]string{"message": "hello"})
	require.NoError(t, err)
	require.NoError(t, h.Publish(context.Background(), ev))

	got := readEvent(t, a)
	assert.Equal(t, EventNotification, got.Name)
	assert.Equal(t, "article-1", got.ArticleID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(got.Data, &payload))
	assert.Equal(t, "hello", payload["message"])

	require.NoError(t, b.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = b.ReadMessage()
	assert.Error(t, err, "клиент другой комнаты не должен получать событие")
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)

	joinRoom(t, conn, "a1")
	assert.Equal(t, 1, h.RoomSize("a1"))

	require.NoError(t, conn.WriteJSON(map[string]string{"event": EventLeaveArticle, "articleId": "a1"}))
	ack := readEvent(t, conn)
	assert.Equal(t, EventLeft, ack.Name)
	assert.Equal(t, 0, h.RoomSize("a1"))
}

func TestHubRemovesClientOnDisconnect(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	joinRoom(t, conn, "a1")

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return h.RoomSize("a1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestDeliverSkipsFullBuffer(t *testing.T) {
	h := NewHub(nil)
	c := &Client{hub: h, send: make(chan []byte, 1), rooms: map[string]struct{}{}}
	h.clients[c] = struct{}{}
	h.join(c, "a1")

	h.Deliver(Event{Name: EventNotification, ArticleID: "a1"})
	h.Deliver(Event{Name: EventNotification, ArticleID: "a1"})

	assert.Len(t, c.send, 1)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://wiki.example.com"})

	r := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, check(r), "без Origin пропускаем")

	r.Header.Set("Origin", "https://wiki.example.com")
	assert.True(t, check(r))

	r.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(r))
}
