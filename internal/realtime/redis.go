package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wikihub/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "wikihub:article-events"

// RedisBroker разносит события между инстансами API через Redis pub/sub.
// Публикация идёт только в Redis, локальная доставка — из подписки.
type RedisBroker struct {
	client  *redis.Client
	channel string
	sink    Sink
	sub     *redis.PubSub
	done    chan struct{}
}

func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisBroker(client *redis.Client, channel string, sink Sink) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{
		client:  client,
		channel: channel,
		sink:    sink,
		done:    make(chan struct{}),
	}
}

// Start подписывается на канал и ждёт подтверждения подписки.
func (b *RedisBroker) Start(ctx context.Context) error {
	b.sub = b.client.Subscribe(ctx, b.channel)
	if _, err := b.sub.Receive(ctx); err != nil {
		_ = b.sub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	go b.loop(b.sub.Channel())
	logger.Log.Info("Redis: подписка на события статей", zap.String("channel", b.channel))
	return nil
}

func (b *RedisBroker) loop(ch <-chan *redis.Message) {
	defer close(b.done)
	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logger.Log.Warn("Redis: некорректное событие", zap.Error(err))
			continue
		}
		b.sink.Deliver(ev)
	}
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Close() error {
	if b.sub == nil {
		return nil
	}
	err := b.sub.Close()
	<-b.done
	return err
}
