// internal/services/notifier.go
package services

import (
	"context"
	"fmt"
	"time"

	"wikihub/internal/logger"
	"wikihub/internal/models"
	"wikihub/internal/realtime"

	"go.uber.org/zap"
)

// Notifier шлёт события в комнату статьи. Ошибки доставки только логируются.
type Notifier struct {
	pub realtime.Publisher
	now func() time.Time
}

func NewNotifier(pub realtime.Publisher) *Notifier {
	if pub == nil {
		pub = realtime.NopPublisher{}
	}
	return &Notifier{pub: pub, now: time.Now}
}

type notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (n *Notifier) ArticleUpdated(ctx context.Context, a *models.Article, by string) {
	n.articleChanged(ctx, a, fmt.Sprintf("Article %q was updated by %s", a.Title, by))
}

func (n *Notifier) ArticleRestored(ctx context.Context, a *models.Article, version int, by string) {
	n.articleChanged(ctx, a, fmt.Sprintf("Article %q was restored to version %d by %s", a.Title, version, by))
}

func (n *Notifier) AttachmentsAdded(ctx context.Context, a *models.Article, by string, names []string) {
	var msg string
	if len(names) == 1 {
		msg = fmt.Sprintf("File attached by %s: %s", by, names[0])
	} else {
		msg = fmt.Sprintf("%d files attached by %s", len(names), by)
	}
	n.articleChanged(ctx, a, msg)
}

func (n *Notifier) AttachmentRemoved(ctx context.Context, a *models.Article, by, name string) {
	n.articleChanged(ctx, a, fmt.Sprintf("File removed by %s: %s", by, name))
}

func (n *Notifier) CommentAdded(ctx context.Context, articleID, by string) {
	n.notify(ctx, articleID, fmt.Sprintf("New comment by %s", by))
}

func (n *Notifier) CommentUpdated(ctx context.Context, articleID, by string) {
	n.notify(ctx, articleID, fmt.Sprintf("Comment edited by %s", by))
}

func (n *Notifier) CommentDeleted(ctx context.Context, articleID, by string) {
	n.notify(ctx, articleID, fmt.Sprintf("Comment deleted by %s", by))
}

func (n *Notifier) articleChanged(ctx context.Context, a *models.Article, message string) {
	n.publish(ctx, realtime.EventArticleUpdated, a.ID, a)
	n.notify(ctx, a.ID, message)
}

func (n *Notifier) notify(ctx context.Context, articleID, message string) {
	n.publish(ctx, realtime.EventNotification, articleID, notification{Message: message, Timestamp: n.now()})
}

func (n *Notifier) publish(ctx context.Context, name, articleID string, data any) {
	// важное: не завязываемся на HTTP-контекст
	ctx = context.WithoutCancel(ctx)

	ev, err := realtime.NewEvent(name, articleID, data)
	if err == nil {
		err = n.pub.Publish(ctx, ev)
	}
	if err != nil {
		logger.WithCtx(ctx).Warn("Не удалось отправить событие",
			zap.String("event", name), zap.String("article_id", articleID), zap.Error(err))
	}
}
