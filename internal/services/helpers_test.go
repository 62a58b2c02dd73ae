package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"wikihub/internal/models"
	"wikihub/internal/realtime"
	"wikihub/internal/repository/inmem"
	"wikihub/internal/storage"

	"github.com/stretchr/testify/require"
)

var (
	alice = &Actor{UserID: "u-alice", Name: "Alice", Role: models.RoleUser}
	bob   = &Actor{UserID: "u-bob", Name: "Bob", Role: models.RoleUser}
	root  = &Actor{UserID: "u-root", Name: "Root", Role: models.RoleAdmin}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Name)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

// flakyBlobs падает на Save с номером failOn (с единицы).
type flakyBlobs struct {
	storage.Blobs
	mu     sync.Mutex
	saves  int
	failOn int
}

func (f *flakyBlobs) Save(ctx context.Context, name string, r io.Reader, size int64, ct string) error {
	f.mu.Lock()
	f.saves++
	n := f.saves
	f.mu.Unlock()
	if n == f.failOn {
		return errors.New("disk full")
	}
	return f.Blobs.Save(ctx, name, r, size, ct)
}

type testEnv struct {
	store *inmem.Store
	blobs storage.Blobs
	pub   *recordingPublisher
	svc   ArticleService
}

func newTestEnv(t *testing.T, opts ...func(*ArticleDeps)) *testEnv {
	t.Helper()
	disk, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	store := inmem.NewStore()
	pub := &recordingPublisher{}
	deps := ArticleDeps{
		Articles:   store.Articles(),
		Workspaces: store.Workspaces(),
		Comments:   store.Comments(),
		Blobs:      disk,
		Notifier:   NewNotifier(pub),
		Retry:      RetryPolicy{Attempts: 3},
	}
	for _, o := range opts {
		o(&deps)
	}
	return &testEnv{store: store, blobs: deps.Blobs, pub: pub, svc: NewArticleService(deps)}
}

func (e *testEnv) create(t *testing.T, actor *Actor, title string) *models.Article {
	t.Helper()
	a, err := e.svc.CreateArticle(context.Background(), actor, models.CreateArticleRequest{
		Title:   title,
		Content: "<p>" + title + " body</p>",
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) blobNames(t *testing.T) []string {
	t.Helper()
	list, err := e.blobs.List(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, b := range list {
		names = append(names, b.Name)
	}
	return names
}

func strPtr(s string) *string { return &s }
