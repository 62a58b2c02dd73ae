// Package realtime рассылает события статей подписанным клиентам по websocket.
package realtime

import (
	"context"
	"encoding/json"
)

const (
	EventArticleUpdated = "article-updated"
	EventNotification   = "notification"

	// от клиента
	EventJoinArticle  = "join-article"
	EventLeaveArticle = "leave-article"

	// подтверждения клиенту
	EventJoined = "joined-article"
	EventLeft   = "left-article"
)

// Event — сообщение в комнату статьи. Доставка best-effort, не более одного раза.
type Event struct {
	Name      string          `json:"event"`
	ArticleID string          `json:"articleId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func NewEvent(name, articleID string, data any) (Event, error) {
	ev := Event{Name: name, ArticleID: articleID}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, err
		}
		ev.Data = raw
	}
	return ev, nil
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Sink принимает события для локальной доставки.
type Sink interface {
	Deliver(ev Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
