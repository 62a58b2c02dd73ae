package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Deliver(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestRedisBrokerFanOut(t *testing.T) {
	mr := miniredis.RunT(t)

	c1, err := NewRedisClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer c1.Close()
	c2, err := NewRedisClient("redis://" + mr.Addr())
	require.NoError(t, err)
	defer c2.Close()

	sink1, sink2 := &recordingSink{}, &recordingSink{}
	b1 := NewRedisBroker(c1, "test-events", sink1)
	b2 := NewRedisBroker(c2, "test-events", sink2)

	ctx := context.Background()
	require.NoError(t, b1.Start(ctx))
	require.NoError(t, b2.Start(ctx))
	defer b1.Close()
	defer b2.Close()

	ev, err := NewEvent(EventArticleUpdated, "a1", map[string]string{"title": "T"})
	require.NoError(t, err)
	require.NoError(t, b1.Publish(ctx, ev))

	for _, sink := range []*recordingSink{sink1, sink2} {
		sink := sink
		assert.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
		got := sink.snapshot()[0]
		assert.Equal(t, EventArticleUpdated, got.Name)
		assert.Equal(t, "a1", got.ArticleID)
		assert.JSONEq(t, `{"title":"T"}`, string(got.Data))
	}
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient("://nope")
	assert.Error(t, err)
}
