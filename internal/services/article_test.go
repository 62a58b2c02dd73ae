package services

import (
	"context"
	"testing"

	"wikihub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticle_FirstVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.create(t, alice, "Photosynthesis")
	assert.Equal(t, 1, a.CurrentVersion)
	require.NotNil(t, a.WorkspaceID)
	assert.Equal(t, models.DefaultWorkspaceID, *a.WorkspaceID)
	require.NotNil(t, a.UserID)
	assert.Equal(t, alice.UserID, *a.UserID)
	assert.Empty(t, a.Attachments)

	versions, err := env.svc.GetArticleVersions(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, "Alice", versions[0].CreatedBy)
	require.NotNil(t, versions[0].ChangeReason)
	assert.Equal(t, "Initial version", *versions[0].ChangeReason)
	assert.Equal(t, *a.LatestVersionID, versions[0].ID)
}

func TestCreateArticle_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.CreateArticleRequest
		want error
	}{
		{"пустой заголовок", models.CreateArticleRequest{Title: "  ", Content: "x"}, ErrTitleRequired},
		{"пустой контент", models.CreateArticleRequest{Title: "T", Content: ""}, ErrContentRequired},
		{"только скрипт", models.CreateArticleRequest{Title: "T", Content: "<script>alert(1)</script>"}, ErrContentRequired},
		{"неизвестное пространство", models.CreateArticleRequest{Title: "T", Content: "x", WorkspaceID: strPtr("nope")}, ErrWorkspaceNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.CreateArticle(ctx, alice, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := env.svc.CreateArticle(ctx, nil, models.CreateArticleRequest{Title: "T", Content: "x"})
	assert.ErrorIs(t, err, ErrTokenRequired)

	list, err := env.svc.ListArticles(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, list, "после ошибок не должно остаться статей")
}

func TestCreateArticle_SanitizesContent(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.svc.CreateArticle(context.Background(), alice, models.CreateArticleRequest{
		Title:   " Title ",
		Content: `<p onclick="x()">Hi<script>alert(1)</script></p><img src="/uploads/a.png" alt="a">`,
	})
	require.NoError(t, err)
	assert.Equal(t, "Title", a.Title)
	assert.NotContains(t, a.Content, "script")
	assert.NotContains(t, a.Content, "onclick")
	assert.Contains(t, a.Content, `src="/uploads/a.png"`)
}

func TestUpdateArticle_CreatesVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Draft")
	env.pub.reset()

	updated, err := env.svc.UpdateArticle(ctx, alice, a.ID, models.UpdateArticleRequest{
		Title:        "Final",
		Content:      "<p>done</p>",
		WorkspaceID:  strPtr("culture"),
		ChangeReason: "Fixed typos",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, "culture", *updated.WorkspaceID)

	v2, err := env.svc.GetArticleVersion(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "Alice", v2.CreatedBy)
	require.NotNil(t, v2.ChangeReason)
	assert.Equal(t, "Fixed typos", *v2.ChangeReason)

	v1, err := env.svc.GetArticleVersion(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Draft", v1.Title, "старая версия не должна меняться")

	assert.Equal(t, []string{"article-updated", "notification"}, env.pub.names())
}

func TestUpdateArticle_KeepsWorkspaceWhenOmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, err := env.svc.CreateArticle(ctx, alice, models.CreateArticleRequest{
		Title: "T", Content: "c", WorkspaceID: strPtr("nature"),
	})
	require.NoError(t, err)

	updated, err := env.svc.UpdateArticle(ctx, alice, a.ID, models.UpdateArticleRequest{Title: "T2", Content: "c2"})
	require.NoError(t, err)
	assert.Equal(t, "nature", *updated.WorkspaceID)

	v2, err := env.svc.GetArticleVersion(ctx, a.ID, 2)
	require.NoError(t, err)
	assert.Nil(t, v2.ChangeReason)
}

func TestUpdateArticle_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Mine")
	req := models.UpdateArticleRequest{Title: "Hijack", Content: "x"}

	_, err := env.svc.UpdateArticle(ctx, bob, a.ID, req)
	assert.ErrorIs(t, err, ErrNotArticleOwner)

	updated, err := env.svc.UpdateArticle(ctx, root, a.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)

	_, err = env.svc.UpdateArticle(ctx, alice, "missing", req)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestDeleteArticle_RemovesBlobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "With files")

	_, err := env.svc.AddAttachments(ctx, alice, a.ID, []models.Upload{pngUpload("a.png")})
	require.NoError(t, err)
	require.Len(t, env.blobNames(t), 1)

	assert.ErrorIs(t, env.svc.DeleteArticle(ctx, bob, a.ID), ErrNotArticleOwner)
	require.NoError(t, env.svc.DeleteArticle(ctx, alice, a.ID))

	assert.Empty(t, env.blobNames(t))
	_, err = env.svc.GetArticle(ctx, a.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.ErrorIs(t, env.svc.DeleteArticle(ctx, alice, a.ID), ErrArticleNotFound)
}

func TestListArticles_FilterAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, alice, "Go concurrency")
	_, err := env.svc.CreateArticle(ctx, alice, models.CreateArticleRequest{
		Title: "Rust ownership", Content: "borrow", WorkspaceID: strPtr("tech"),
	})
	require.NoError(t, err)

	all, err := env.svc.ListArticles(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Rust ownership", all[0].Title, "новые статьи первыми")

	tech, err := env.svc.ListArticles(ctx, "tech", "")
	require.NoError(t, err)
	require.Len(t, tech, 1)
	assert.Equal(t, "Rust ownership", tech[0].Title)

	found, err := env.svc.ListArticles(ctx, "", "CONCURRENCY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Go concurrency", found[0].Title)
}

type fakeIndex struct {
	healthy bool
	ids     []string
	err     error
	indexed []string
}

func (f *fakeIndex) Healthy() bool { return f.healthy }
func (f *fakeIndex) IndexArticle(_ context.Context, a *models.Article) error {
	f.indexed = append(f.indexed, a.ID)
	return nil
}
func (f *fakeIndex) RemoveArticle(context.Context, string) error { return nil }
func (f *fakeIndex) SearchArticleIDs(context.Context, string, string, int) ([]string, error) {
	return f.ids, f.err
}

func TestListArticles_UsesIndexOrder(t *testing.T) {
	idx := &fakeIndex{healthy: true}
	env := newTestEnv(t, func(d *ArticleDeps) { d.Index = idx })
	ctx := context.Background()
	a := env.create(t, alice, "First")
	b := env.create(t, alice, "Second")
	assert.Equal(t, []string{a.ID, b.ID}, idx.indexed)

	idx.ids = []string{a.ID, "gone", b.ID}
	list, err := env.svc.ListArticles(ctx, "", "anything")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	idx.healthy = false
	list, err = env.svc.ListArticles(ctx, "", "second")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestGetArticleWithComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Discussed")

	comments := NewCommentService(env.store.Comments(), env.store.Articles(), nil)
	_, err := comments.Create(ctx, bob, a.ID, "first")
	require.NoError(t, err)

	full, err := env.svc.GetArticleWithComments(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, full.ID)
	require.Len(t, full.Comments, 1)
	assert.Equal(t, "Bob", full.Comments[0].Author)
}
