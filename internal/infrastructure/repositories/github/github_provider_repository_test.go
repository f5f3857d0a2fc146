//go:build unit

package github_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/github"
)

func newContentsServer(t *testing.T, files map[string]string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message": "boom"}`))
			return
		}
		content, ok := files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Not Found"}`))
			return
		}
		assert.Equal(t, "develop", r.URL.Query().Get("ref"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"type": "file", "encoding": "base64", "content": %q}`,
			base64.StdEncoding.EncodeToString([]byte(content)))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGitHubProviderRepository(t *testing.T) {
	t.Parallel()

	repo := entities.Repository{Provider: "github", Owner: "acme", Name: "shop"}

	t.Run("should fall back to the second policy file name", func(t *testing.T) {
		t.Parallel()

		// given
		server := newContentsServer(t, map[string]string{
			"/api/v3/repos/acme/shop/contents/.github/dependabot.yaml": "version: 2\n",
		}, 0)
		provider := github.NewGitHubProviderRepository("token", server.URL+"/")

		// when
		file, err := provider.FetchPolicyFile(context.Background(), repo, "develop")

		// then
		require.NoError(t, err)
		assert.Equal(t, ".github/dependabot.yaml", file.Name)
		assert.Equal(t, "version: 2\n", file.Content)
	})

	t.Run("should report a missing policy file", func(t *testing.T) {
		t.Parallel()

		// given
		provider := github.NewGitHubProviderRepository("", newContentsServer(t, nil, 0).URL+"/")

		// when
		_, err := provider.FetchPolicyFile(context.Background(), repo, "develop")

		// then
		require.ErrorIs(t, err, entities.ErrPolicyFileNotFound)
	})

	t.Run("should skip missing candidates under the directory", func(t *testing.T) {
		t.Parallel()

		// given
		server := newContentsServer(t, map[string]string{
			"/api/v3/repos/acme/shop/contents/web/package.json": "{}",
		}, 0)
		provider := github.NewGitHubProviderRepository("token", server.URL+"/")

		// when
		files, err := provider.FetchFiles(context.Background(), repo, "/web", "develop",
			[]string{"package.json", "package-lock.json"})

		// then
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "package.json", files[0].Name)
		assert.Equal(t, "/web", files[0].Directory)
	})

	t.Run("should return other API errors", func(t *testing.T) {
		t.Parallel()

		// given
		provider := github.NewGitHubProviderRepository("token", newContentsServer(t, nil, http.StatusForbidden).URL+"/")

		// when
		_, err := provider.FetchFiles(context.Background(), repo, "/", "develop", []string{"go.mod"})

		// then
		require.Error(t, err)
		assert.NotErrorIs(t, err, entities.ErrPolicyFileNotFound)
	})
}

func TestGitHubProviderRepositoryRetries(t *testing.T) {
	t.Parallel()

	t.Run("should retry a server error", func(t *testing.T) {
		t.Parallel()

		// given
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`{"message": "bad gateway"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"type": "file", "encoding": "base64", "content": %q}`,
				base64.StdEncoding.EncodeToString([]byte("version: 2\n")))
		}))
		t.Cleanup(server.Close)
		provider := github.NewGitHubProviderRepository("", server.URL+"/")
		repo := entities.Repository{Provider: "github", Owner: "acme", Name: "shop"}

		// when
		file, err := provider.FetchPolicyFile(context.Background(), repo, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, "version: 2\n", file.Content)
		assert.Equal(t, int32(2), calls.Load())
	})
}
