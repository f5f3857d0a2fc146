//go:build unit

package python_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/python"
)

const requirementsTxt = `# production pins
-r base.txt
--index-url https://pypi.org/simple
requests==2.25.0  # http
Django>=3.2 ; python_version >= "3.8"
celery[redis]==5.0.0
git+https://example.com/private.git#egg=private
`

const pyprojectToml = `[project]
name = "shop"
dependencies = [
  "attrs>=21.0",
]

[project.optional-dependencies]
test = ["pytest==7.0.0"]

[tool.poetry.dependencies]
python = "^3.10"
rich = "^12.0"
local = { path = "../local" }

[tool.poetry.dev-dependencies]
black = { version = "22.1.0", extras = ["jupyter"] }
`

const setupPy = `from setuptools import setup

setup(
    name="shop",
    install_requires=[
        "flask>=2.0,<3",
        'six==1.4.0',
        "requests>=2.0",
    ],
)
`

func pipFiles() []entities.DependencyFile {
	return []entities.DependencyFile{
		{Name: "requirements.txt", Content: requirementsTxt},
		{Name: "pyproject.toml", Content: pyprojectToml},
	}
}

func newIndex(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pypi/requests/json":
			_, _ = w.Write([]byte(`{"releases": {
				"2.25.0": [{"yanked": false}],
				"2.31.0": [{"yanked": false}, {"yanked": true}],
				"2.32.0": [{"yanked": true}],
				"2.33.0": []
			}}`))
		case "/pypi/django/json":
			_, _ = w.Write([]byte(`{"releases": {"3.2.0": [{}], "4.2.0": [{}]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newBundle(serverURL string) repositories.EcosystemRepository {
	return python.NewPipEcosystemRepository(&entities.Settings{
		Registries: map[string]string{entities.EcosystemPip: serverURL},
	})
}

func find(t *testing.T, dependencies []entities.Dependency, name string) entities.Dependency {
	t.Helper()
	for _, dependency := range dependencies {
		if dependency.Name == name {
			return dependency
		}
	}
	t.Fatalf("dependency %s not parsed", name)
	return entities.Dependency{}
}

func TestPipEcosystemRepositoryParse(t *testing.T) {
	t.Parallel()

	t.Run("should read requirement lines and pyproject tables", func(t *testing.T) {
		t.Parallel()

		// when
		dependencies, err := newBundle("http://unused").Parse(context.Background(), pipFiles(), entities.PolicyConfig{})

		// then
		require.NoError(t, err)
		assert.Len(t, dependencies, 7)

		requests := find(t, dependencies, "requests")
		assert.Equal(t, "2.25.0", requests.Version)
		assert.Equal(t, "==2.25.0", requests.Requirements[0].Requirement)

		django := find(t, dependencies, "Django")
		assert.False(t, django.HasVersion())
		assert.Equal(t, ">=3.2", django.Requirements[0].Requirement)

		assert.Equal(t, "5.0.0", find(t, dependencies, "celery").Version)
		assert.Equal(t, []string{"test"}, find(t, dependencies, "pytest").Requirements[0].Groups)
		assert.Equal(t, "^12.0", find(t, dependencies, "rich").Requirements[0].Requirement)
		assert.False(t, find(t, dependencies, "black").Production)
		assert.Equal(t, "22.1.0", find(t, dependencies, "black").Requirements[0].Requirement)
	})

	t.Run("should read setup.py only when the policy allows external code", func(t *testing.T) {
		t.Parallel()

		// given
		files := append(pipFiles(), entities.DependencyFile{Name: "setup.py", Content: setupPy})
		allowed := entities.PolicyConfig{InsecureExternalCodeExecution: "allow"}

		// when
		withCode, allowErr := newBundle("http://unused").Parse(context.Background(), files, allowed)
		withoutCode, denyErr := newBundle("http://unused").Parse(context.Background(), files, entities.PolicyConfig{})

		// then
		require.NoError(t, allowErr)
		require.NoError(t, denyErr)
		assert.Len(t, withoutCode, 7)
		assert.Len(t, withCode, 9)
		flask := find(t, withCode, "flask")
		assert.Equal(t, ">=2.0,<3", flask.Requirements[0].Requirement)
		assert.Equal(t, "setup.py", flask.Requirements[0].File)
		assert.Equal(t, "1.4.0", find(t, withCode, "six").Version)
		assert.Len(t, find(t, withCode, "requests").Requirements, 2)
	})

	t.Run("should refuse a directory whose only manifest is setup.py", func(t *testing.T) {
		t.Parallel()

		// given
		files := []entities.DependencyFile{{Name: "setup.py", Content: setupPy}}
		denied := entities.PolicyConfig{InsecureExternalCodeExecution: "deny"}

		// when
		_, err := newBundle("http://unused").Parse(context.Background(), files, denied)

		// then
		var external *entities.ExternalCodeError
		require.ErrorAs(t, err, &external)
		assert.Equal(t, "setup.py", external.File)
		assert.Equal(t, entities.EcosystemPip, external.Ecosystem)
	})

	t.Run("should fail without any manifest", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := newBundle("http://unused").Parse(context.Background(), nil, entities.PolicyConfig{})

		// then
		require.Error(t, err)
	})
}

func TestPipEcosystemRepositoryUpdate(t *testing.T) {
	t.Parallel()

	t.Run("should move a pin to the newest release with an installable file", func(t *testing.T) {
		t.Parallel()

		// given
		bundle := newBundle(newIndex(t).URL)
		dependencies, err := bundle.Parse(context.Background(), pipFiles(), entities.PolicyConfig{})
		require.NoError(t, err)
		checker := bundle.NewChecker(repositories.CheckerInput{
			Dependency: find(t, dependencies, "requests"),
			Files:      pipFiles(),
		})

		// when
		updated, err := checker.UpdatedDependencies(context.Background(), entities.LevelOwn)
		require.NoError(t, err)
		files, err := bundle.UpdatedDependencyFiles(updated, pipFiles())

		// then
		require.NoError(t, err)
		assert.Equal(t, "2.31.0", updated[0].Version)
		require.Len(t, files, 1)
		assert.Equal(t, "requirements.txt", files[0].Name)
		assert.Contains(t, files[0].Content, "requests==2.31.0  # http")
	})

	t.Run("should consider a satisfied range up to date", func(t *testing.T) {
		t.Parallel()

		// given
		bundle := newBundle(newIndex(t).URL)
		dependencies, err := bundle.Parse(context.Background(), pipFiles(), entities.PolicyConfig{})
		require.NoError(t, err)
		checker := bundle.NewChecker(repositories.CheckerInput{
			Dependency: find(t, dependencies, "Django"),
			Files:      pipFiles(),
		})

		// when
		upToDate, err := checker.UpToDate(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, upToDate)
	})

	t.Run("should rewrite a Poetry table entry", func(t *testing.T) {
		t.Parallel()

		// given
		black := entities.Dependency{
			Name:                 "black",
			Version:              "23.1.0",
			PreviousVersion:      "22.1.0",
			Requirements:         []entities.Requirement{{Requirement: "23.1.0", File: "pyproject.toml"}},
			PreviousRequirements: []entities.Requirement{{Requirement: "22.1.0", File: "pyproject.toml"}},
		}

		// when
		files, err := newBundle("http://unused").UpdatedDependencyFiles([]entities.Dependency{black}, pipFiles())

		// then
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Contains(t, files[0].Content, `black = { version = "23.1.0", extras = ["jupyter"] }`)
	})
}
