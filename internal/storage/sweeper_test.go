package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRefs map[string]struct{}

func (r staticRefs) ReferencedFilenames(context.Context) (map[string]struct{}, error) {
	return r, nil
}

func TestSweeperRemovesOnlyOldOrphans(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewDiskStore(dir)
	require.NoError(t, err)

	for _, name := range []string{"kept.png", "orphan.png", "fresh.png"} {
		require.NoError(t, s.Save(ctx, name, strings.NewReader(name), int64(len(name)), ""))
	}

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "kept.png"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "orphan.png"), old, old))

	sw := NewSweeper(s, staticRefs{"kept.png": {}}, time.Hour)
	removed, err := sw.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err := s.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, b := range list {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{"kept.png", "fresh.png"}, names)
}
