//go:build unit

package golang_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/golang"
)

const goMod = `module example.com/shop

go 1.22

require (
	github.com/BurntSushi/toml v1.2.0
	github.com/sirupsen/logrus v1.9.0
	golang.org/x/sys v0.10.0 // indirect
)

require example.com/internal/tools v0.1.0

replace example.com/internal/tools => ../tools
`

func goFiles() []entities.DependencyFile {
	return []entities.DependencyFile{{Name: "go.mod", Directory: "/", Content: goMod}}
}

func newProxy(t *testing.T) *httptest.Server {
	t.Helper()
	lists := map[string]string{
		"/github.com/!burnt!sushi/toml/@v/list": "v1.2.0\nv1.3.2\nv1.4.0-rc.1\n",
		"/github.com/sirupsen/logrus/@v/list":   "v1.9.0\n",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := lists[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newBundle(proxyURL string) repositories.EcosystemRepository {
	return golang.NewGoModulesEcosystemRepository(&entities.Settings{
		Registries: map[string]string{entities.EcosystemGoModules: proxyURL},
	})
}

func TestGoModulesEcosystemRepositoryParse(t *testing.T) {
	t.Parallel()

	t.Run("should read direct and indirect requirements and skip local replacements", func(t *testing.T) {
		t.Parallel()

		// given
		bundle := newBundle("http://unused")

		// when
		dependencies, err := bundle.Parse(context.Background(), goFiles(), entities.PolicyConfig{})

		// then
		require.NoError(t, err)
		require.Len(t, dependencies, 3)
		assert.Equal(t, "github.com/BurntSushi/toml", dependencies[0].Name)
		assert.Equal(t, "v1.2.0", dependencies[0].Requirements[0].Requirement)
		assert.True(t, dependencies[1].TopLevel())
		assert.Equal(t, "golang.org/x/sys", dependencies[2].Name)
		assert.False(t, dependencies[2].TopLevel())
	})

	t.Run("should fail on a malformed go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		files := []entities.DependencyFile{{Name: "go.mod", Content: "require (("}}

		// when
		_, err := newBundle("http://unused").Parse(context.Background(), files, entities.PolicyConfig{})

		// then
		require.Error(t, err)
	})
}

func TestGoModulesEcosystemRepositoryUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should bump a module through the escaped proxy path", func(t *testing.T) {
		t.Parallel()

		// given
		bundle := newBundle(newProxy(t).URL)
		dependencies, err := bundle.Parse(context.Background(), goFiles(), entities.PolicyConfig{})
		require.NoError(t, err)
		checker := bundle.NewChecker(repositories.CheckerInput{Dependency: dependencies[0], Files: goFiles()})

		// when
		latest, err := checker.LatestVersion(context.Background())
		require.NoError(t, err)
		updated, err := checker.UpdatedDependencies(context.Background(), entities.LevelOwn)
		require.NoError(t, err)
		files, err := bundle.UpdatedDependencyFiles(updated, goFiles())

		// then
		require.NoError(t, err)
		assert.Equal(t, "v1.3.2", latest)
		assert.Equal(t, "v1.3.2", updated[0].Requirements[0].Requirement)
		require.Len(t, files, 1)
		assert.Contains(t, files[0].Content, "github.com/BurntSushi/toml v1.3.2")
		assert.Contains(t, files[0].Content, "golang.org/x/sys v0.10.0 // indirect")
	})

	t.Run("should report a module already on its latest version as up to date", func(t *testing.T) {
		t.Parallel()

		// given
		bundle := newBundle(newProxy(t).URL)
		dependencies, err := bundle.Parse(context.Background(), goFiles(), entities.PolicyConfig{})
		require.NoError(t, err)
		checker := bundle.NewChecker(repositories.CheckerInput{Dependency: dependencies[1], Files: goFiles()})

		// when
		upToDate, err := checker.UpToDate(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, upToDate)
	})

	t.Run("should write nothing when no version moved", func(t *testing.T) {
		t.Parallel()

		// given
		unchanged := entities.Dependency{Name: "github.com/sirupsen/logrus", Version: "v1.9.0", PreviousVersion: "v1.9.0"}

		// when
		files, err := newBundle("http://unused").UpdatedDependencyFiles([]entities.Dependency{unchanged}, goFiles())

		// then
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
