package storage

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "a.png", strings.NewReader("png-bytes"), 9, "image/png"))

	rc, info, err := s.Open(ctx, "a.png")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "image/png", info.ContentType)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a.png", list[0].Name)

	require.NoError(t, s.Delete(ctx, "a.png"))
	require.NoError(t, s.Delete(ctx, "a.png"), "повторное удаление не ошибка")

	_, _, err = s.Open(ctx, "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "a/b.png", "", "..", `a\b.png`} {
		assert.ErrorIs(t, s.Save(ctx, name, strings.NewReader("x"), 1, ""), ErrInvalidName, name)
		_, _, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestNewName(t *testing.T) {
	re := regexp.MustCompile(`^\d+-[0-9a-f]{12}\.pdf$`)
	a := NewName(".pdf")
	b := NewName(".pdf")

	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)
	bare := regexp.MustCompile(`^\d+-[0-9a-f]{12}$`)
	for _, ext := range []string{"", "pdf", ".PDF", "./../x", ".verylongext"} {
		assert.Regexp(t, bare, NewName(ext), ext)
	}
	assert.Equal(t, "/uploads/x.png", PublicPath("x.png"))
}
