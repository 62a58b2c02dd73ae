package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Talk")
	env.pub.reset()
	svc := NewCommentService(env.store.Comments(), env.store.Articles(), NewNotifier(env.pub))

	c, err := svc.Create(ctx, bob, a.ID, `<b>nice</b><script>x</script>`)
	require.NoError(t, err)
	assert.Equal(t, "Bob", c.Author)
	require.NotNil(t, c.UserID)
	assert.Equal(t, bob.UserID, *c.UserID)
	assert.Equal(t, "<b>nice</b>", c.Content)

	_, err = svc.Update(ctx, alice, c.ID, "edited by alice")
	assert.ErrorIs(t, err, ErrNotCommentOwner)

	edited, err := svc.Update(ctx, bob, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)

	assert.ErrorIs(t, svc.Delete(ctx, alice, c.ID), ErrNotCommentOwner)
	require.NoError(t, svc.Delete(ctx, root, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, root, c.ID), ErrCommentNotFound)

	assert.Equal(t, []string{"notification", "notification", "notification"}, env.pub.names())
}

func TestCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Talk")
	svc := NewCommentService(env.store.Comments(), env.store.Articles(), nil)

	_, err := svc.Create(ctx, bob, a.ID, "   ")
	assert.ErrorIs(t, err, ErrCommentContentRequired)
	_, err = svc.Create(ctx, bob, a.ID, "<script>only</script>")
	assert.ErrorIs(t, err, ErrCommentContentRequired)
	_, err = svc.Create(ctx, bob, "missing", "hi")
	assert.ErrorIs(t, err, ErrArticleNotFound)
	_, err = svc.Create(ctx, nil, a.ID, "hi")
	assert.ErrorIs(t, err, ErrTokenRequired)

	_, err = svc.List(ctx, "missing")
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestCommentsGoneWithArticle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.create(t, alice, "Talk")
	svc := NewCommentService(env.store.Comments(), env.store.Articles(), nil)

	c, err := svc.Create(ctx, bob, a.ID, "hi")
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteArticle(ctx, alice, a.ID))

	_, err = svc.Update(ctx, bob, c.ID, "late")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
