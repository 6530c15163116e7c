package testutils

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo initializes a Loam repository in a fresh temp dir.
// It returns the absolute path and the repository, failing the test on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// SaveDocs stores raw documents (frontmatter + body) keyed by document ID, in ID order.
func SaveDocs(t *testing.T, repo core.Repository, docs map[string]string) {
	t.Helper()

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ctx := context.Background()
	for _, id := range ids {
		require.NoError(t, repo.Save(ctx, core.Document{ID: id, Content: docs[id]}), "Failed to save %s", id)
	}
}
