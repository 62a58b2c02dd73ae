package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wikihub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreArticleVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Original")
	_, err := env.svc.UpdateArticle(ctx, alice, a.ID, models.UpdateArticleRequest{Title: "Changed", Content: "<p>new</p>"})
	require.NoError(t, err)
	env.pub.reset()

	res, err := env.svc.RestoreArticleVersion(ctx, alice, a.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.RestoredFromVersion)
	assert.Equal(t, 3, res.Article.CurrentVersion)
	assert.Equal(t, "Original", res.Article.Title)

	v3, err := env.svc.GetArticleVersion(ctx, a.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, v3.ChangeReason)
	assert.Equal(t, "Restored from version 1", *v3.ChangeReason)

	history, err := env.svc.GetArticleVersions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{history[0].Version, history[1].Version, history[2].Version})

	assert.Equal(t, []string{"article-updated", "notification"}, env.pub.names())
}

func TestRestoreArticleVersion_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Original")

	_, err := env.svc.RestoreArticleVersion(ctx, bob, a.ID, 1)
	assert.ErrorIs(t, err, ErrNotArticleOwner)

	_, err = env.svc.RestoreArticleVersion(ctx, alice, a.ID, 7)
	assert.ErrorIs(t, err, ErrVersionNotFound)

	_, err = env.svc.RestoreArticleVersion(ctx, alice, "missing", 1)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestGetArticleVersion_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "A")

	_, err := env.svc.GetArticleVersion(ctx, a.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidVersion)
	_, err = env.svc.GetArticleVersion(ctx, a.ID, 2)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	_, err = env.svc.GetArticleVersions(ctx, "missing")
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestCreateArticleVersion_Defaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Keep me")

	updated, err := env.svc.CreateArticleVersion(ctx, a.ID, VersionInput{Content: "<p>only content</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Keep me", updated.Title)
	assert.Equal(t, 2, updated.CurrentVersion)

	v, err := env.svc.GetArticleVersion(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "system", v.CreatedBy)
}

// conflictOnce вставляет конкурирующую версию перед первой записью.
func conflictOnce(env *testEnv) {
	fired := false
	repo := env.store.Articles()
	env.store.BeforeAppend = func(v *models.ArticleVersion) {
		if fired {
			return
		}
		fired = true
		rival := *v
		rival.ID = uuid.NewString()
		rival.Title = "rival"
		rival.CreatedBy = "Rival"
		_, _ = repo.AppendVersion(context.Background(), &rival)
	}
}

func TestCreateArticleVersion_RetriesOnConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Contested")
	conflictOnce(env)

	updated, err := env.svc.UpdateArticle(ctx, alice, a.ID, models.UpdateArticleRequest{Title: "Mine", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentVersion)
	assert.Equal(t, "Mine", updated.Title)

	v2, err := env.svc.GetArticleVersion(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "rival", v2.Title)
}

func TestCreateArticleVersion_GivesUpAfterAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Hot")

	repo := env.store.Articles()
	calls := 0
	inRival := false
	env.store.BeforeAppend = func(v *models.ArticleVersion) {
		if inRival {
			return
		}
		calls++
		inRival = true
		rival := *v
		rival.ID = uuid.NewString()
		_, _ = repo.AppendVersion(context.Background(), &rival)
		inRival = false
	}

	_, err := env.svc.UpdateArticle(ctx, alice, a.ID, models.UpdateArticleRequest{Title: "Mine", Content: "c"})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 3, calls)
}

func TestCreateArticleVersion_ConcurrentUpdatesKeepHistoryContiguous(t *testing.T) {
	env := newTestEnv(t, func(d *ArticleDeps) { d.Retry = RetryPolicy{Attempts: 50} })
	ctx := context.Background()
	a := env.create(t, alice, "Busy")

	const writers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.UpdateArticle(ctx, alice, a.ID, models.UpdateArticleRequest{Title: "t", Content: "c"})
			if err != nil && !errors.Is(err, ErrVersionConflict) {
				t.Errorf("неожиданная ошибка: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	history, err := env.svc.GetArticleVersions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, ok+1)
	for i, v := range history {
		assert.Equal(t, len(history)-i, v.Version, "номера версий без пропусков и повторов")
	}

	final, err := env.svc.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ok+1, final.CurrentVersion)
}
