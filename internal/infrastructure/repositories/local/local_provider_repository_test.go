//go:build unit

package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/local"
)

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

// newCheckout commits a policy and a manifest on "main", creates "release"
// from it, then edits the working tree without committing.
func newCheckout(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	repository, err := git.PlainInit(root, false)
	require.NoError(t, err)
	worktree, err := repository.Worktree()
	require.NoError(t, err)

	writeFile(t, root, ".github/dependabot.yml", "version: 2\n")
	writeFile(t, root, "app/go.mod", "module example.com/app\n")
	_, err = worktree.Add(".")
	require.NoError(t, err)
	commit, err := worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	require.NoError(t, repository.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("release"), commit),
	))

	writeFile(t, root, "app/go.mod", "module example.com/app\n\ngo 1.22\n")
	return root
}

func TestLocalProviderRepository(t *testing.T) {
	t.Parallel()

	t.Run("should read the working tree without a branch", func(t *testing.T) {
		t.Parallel()

		// given
		root := newCheckout(t)
		repo := entities.Repository{Provider: "local", Name: root, Path: root}

		// when
		files, err := local.NewLocalProviderRepository("", "").
			FetchFiles(context.Background(), repo, "/app", "", []string{"go.mod", "go.sum"})

		// then
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Contains(t, files[0].Content, "go 1.22")
	})

	t.Run("should read committed content of a branch", func(t *testing.T) {
		t.Parallel()

		// given
		root := newCheckout(t)
		repo := entities.Repository{Provider: "local", Name: root, Path: root}
		provider := local.NewLocalProviderRepository("", "")

		// when
		policy, err := provider.FetchPolicyFile(context.Background(), repo, "release")
		require.NoError(t, err)
		files, err := provider.FetchFiles(context.Background(), repo, "/app", "release", []string{"go.mod"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "version: 2\n", policy.Content)
		require.Len(t, files, 1)
		assert.Equal(t, "module example.com/app\n", files[0].Content)
	})

	t.Run("should fail for an unknown branch", func(t *testing.T) {
		t.Parallel()

		// given
		root := newCheckout(t)
		repo := entities.Repository{Provider: "local", Name: root, Path: root}

		// when
		_, err := local.NewLocalProviderRepository("", "").FetchPolicyFile(context.Background(), repo, "missing")

		// then
		require.Error(t, err)
	})

	t.Run("should report a missing policy file", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		repo := entities.Repository{Provider: "local", Name: root, Path: root}

		// when
		_, err := local.NewLocalProviderRepository("", "").FetchPolicyFile(context.Background(), repo, "")

		// then
		require.ErrorIs(t, err, entities.ErrPolicyFileNotFound)
	})

	t.Run("should skip directories named like a candidate", func(t *testing.T) {
		t.Parallel()

		// given
		root := newCheckout(t)
		require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "go.sum"), 0o755))
		repo := entities.Repository{Provider: "local", Name: root, Path: root}

		// when
		files, err := local.NewLocalProviderRepository("", "").
			FetchFiles(context.Background(), repo, "/app", "", []string{"go.sum", "go.mod"})

		// then
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "go.mod", files[0].Name)
	})

	t.Run("should return no files for a missing directory", func(t *testing.T) {
		t.Parallel()

		// given
		root := newCheckout(t)
		repo := entities.Repository{Provider: "local", Name: root, Path: root}
		provider := local.NewLocalProviderRepository("", "")

		// when
		fromTree, treeErr := provider.FetchFiles(context.Background(), repo, "/missing", "", []string{"go.mod"})
		fromBranch, branchErr := provider.FetchFiles(context.Background(), repo, "/missing", "release", []string{"go.mod"})

		// then
		require.NoError(t, treeErr)
		require.NoError(t, branchErr)
		assert.Empty(t, fromTree)
		assert.Empty(t, fromBranch)
	})

	t.Run("should only list files committed on the branch", func(t *testing.T) {
		t.Parallel()

		// given
		root := newCheckout(t)
		writeFile(t, root, "package.json", "{}")
		repo := entities.Repository{Provider: "local", Name: root, Path: root}

		// when
		committed, err := local.NewLocalProviderRepository("", "").
			FetchFiles(context.Background(), repo, "/", "release", []string{"package.json", ".github"})

		// then
		require.NoError(t, err)
		assert.Empty(t, committed)
	})
}
