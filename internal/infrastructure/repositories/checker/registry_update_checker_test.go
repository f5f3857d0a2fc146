//go:build unit

package checker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
	builders "github.com/rios0rios0/updatewarden/test/domain/entitybuilders"
)

type fakeRegistry map[string][]checker.Release

func (r fakeRegistry) Releases(_ context.Context, name string) ([]checker.Release, error) {
	return r[name], nil
}

func releases(versions ...string) []checker.Release {
	result := make([]checker.Release, 0, len(versions))
	for _, version := range versions {
		result = append(result, checker.Release{Version: version})
	}
	return result
}

func newChecker(
	registry fakeRegistry,
	dependency entities.Dependency,
	configure func(*repositories.CheckerInput, *checker.Options),
) *checker.RegistryUpdateChecker {
	input := repositories.CheckerInput{Dependency: dependency}
	options := checker.Options{
		Scheme:          versioning.NewSemverScheme(entities.EcosystemNpmAndYarn),
		Registry:        registry,
		Installed:       []entities.Dependency{dependency},
		DefaultStrategy: entities.StrategyBumpVersions,
		Rewritable:      true,
	}
	if configure != nil {
		configure(&input, &options)
	}
	return checker.NewRegistryUpdateChecker(input, options)
}

func lodash() entities.Dependency {
	return builders.NewDependencyBuilder().
		WithName("lodash").
		WithVersion("3.0.0").
		WithRequirement("^3.0.0", "package.json").
		BuildDependency()
}

func TestRegistryUpdateCheckerVersions(t *testing.T) {
	t.Parallel()

	registry := fakeRegistry{"lodash": {
		{Version: "3.0.0"},
		{Version: "3.10.1"},
		{Version: "4.17.21"},
		{Version: "5.0.0-beta.1"},
		{Version: "4.18.0", Yanked: true},
	}}

	t.Run("should skip pre-releases and yanked versions for the latest version", func(t *testing.T) {
		t.Parallel()

		// given
		subject := newChecker(registry, lodash(), nil)

		// when
		latest, err := subject.LatestVersion(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "4.17.21", latest)
	})

	t.Run("should exclude ignored versions", func(t *testing.T) {
		t.Parallel()

		// given
		subject := newChecker(registry, lodash(), func(input *repositories.CheckerInput, _ *checker.Options) {
			input.IgnoredVersions = []string{">= 4.0.0"}
		})

		// when
		latest, err := subject.LatestVersion(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, "3.10.1", latest)
	})

	t.Run("should find the lowest version leaving every advisory", func(t *testing.T) {
		t.Parallel()

		// given
		subject := newChecker(registry, lodash(), func(input *repositories.CheckerInput, _ *checker.Options) {
			input.Advisories = []entities.SecurityAdvisory{{
				DependencyName:     "lodash",
				VulnerableVersions: []string{"< 3.10.0"},
			}}
		})

		// when
		fix, err := subject.LowestSecurityFixVersion(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, subject.Vulnerable())
		assert.Equal(t, "3.10.1", fix)
	})

	t.Run("should report a dependency on the latest version as up to date", func(t *testing.T) {
		t.Parallel()

		// given
		current := lodash()
		current.Version = "4.17.21"
		subject := newChecker(registry, current, nil)

		// when
		upToDate, err := subject.UpToDate(context.Background())

		// then
		require.NoError(t, err)
		assert.True(t, upToDate)
	})
}

func TestRegistryUpdateCheckerUnlock(t *testing.T) {
	t.Parallel()

	t.Run("should update in place when the requirement already admits the target", func(t *testing.T) {
		t.Parallel()

		// given
		registry := fakeRegistry{"lodash": releases("3.0.0", "3.10.1")}
		subject := newChecker(registry, lodash(), nil)

		// when
		feasible, err := subject.CanUpdate(context.Background(), entities.LevelNone)
		require.NoError(t, err)
		updated, err := subject.UpdatedDependencies(context.Background(), entities.LevelNone)

		// then
		require.NoError(t, err)
		assert.True(t, feasible)
		require.Len(t, updated, 1)
		assert.Equal(t, "3.10.1", updated[0].Version)
		assert.Equal(t, "3.0.0", updated[0].PreviousVersion)
		assert.Equal(t, "^3.0.0", updated[0].Requirements[0].Requirement)
		assert.False(t, updated[0].RequirementsChanged())
	})

	t.Run("should bump its own requirement at OWN", func(t *testing.T) {
		t.Parallel()

		// given
		registry := fakeRegistry{"lodash": releases("3.0.0", "4.17.21")}
		subject := newChecker(registry, lodash(), nil)

		// when
		none, err := subject.CanUpdate(context.Background(), entities.LevelNone)
		require.NoError(t, err)
		own, err := subject.CanUpdate(context.Background(), entities.LevelOwn)
		require.NoError(t, err)
		updated, err := subject.UpdatedDependencies(context.Background(), entities.LevelOwn)

		// then
		require.NoError(t, err)
		assert.False(t, none)
		assert.True(t, own)
		require.Len(t, updated, 1)
		assert.Equal(t, "^4.17.21", updated[0].Requirements[0].Requirement)
		assert.True(t, updated[0].RequirementsChanged())
	})

	t.Run("should move a conflicting peer at ALL", func(t *testing.T) {
		t.Parallel()

		// given
		react := builders.NewDependencyBuilder().WithName("react").WithVersion("16.14.0").
			WithRequirement("^16.14.0", "package.json").BuildDependency()
		reactDOM := builders.NewDependencyBuilder().WithName("react-dom").WithVersion("16.14.0").
			WithRequirement("^16.14.0", "package.json").BuildDependency()
		registry := fakeRegistry{
			"react": releases("16.14.0", "17.0.2"),
			"react-dom": {
				{Version: "16.14.0", PeerRequirements: map[string]string{"react": "^16.14.0"}},
				{Version: "17.0.2", PeerRequirements: map[string]string{"react": "17.0.2"}},
			},
		}
		subject := newChecker(registry, react, func(_ *repositories.CheckerInput, options *checker.Options) {
			options.Installed = []entities.Dependency{react, reactDOM}
			options.Dependents = map[string]map[string]string{"react-dom": {"react": "^16.14.0"}}
		})

		// when
		own, err := subject.CanUpdate(context.Background(), entities.LevelOwn)
		require.NoError(t, err)
		all, err := subject.CanUpdate(context.Background(), entities.LevelAll)
		require.NoError(t, err)
		updated, err := subject.UpdatedDependencies(context.Background(), entities.LevelAll)
		require.NoError(t, err)
		conflicts, err := subject.ConflictingDependencies(context.Background())

		// then
		require.NoError(t, err)
		assert.False(t, own)
		assert.True(t, all)
		require.Len(t, updated, 2)
		assert.Equal(t, "17.0.2", updated[0].Version)
		assert.Equal(t, "react-dom", updated[1].Name)
		assert.Equal(t, "17.0.2", updated[1].Version)
		assert.Equal(t, "^17.0.2", updated[1].Requirements[0].Requirement)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "react-dom@16.14.0 requires react@^16.14.0", conflicts[0].Explanation)
	})

	t.Run("should only allow lockfile updates when requirements are locked", func(t *testing.T) {
		t.Parallel()

		// given
		subject := newChecker(fakeRegistry{}, lodash(), func(_ *repositories.CheckerInput, options *checker.Options) {
			options.Rewritable = false
		})

		// when
		unlocked := subject.RequirementsUnlockedOrCanBe()

		// then
		assert.False(t, unlocked)
	})
}

func TestRewriteRequirement(t *testing.T) {
	t.Parallel()

	scheme := versioning.NewSemverScheme(entities.EcosystemNpmAndYarn)
	tests := []struct {
		name        string
		requirement string
		version     string
		strategy    string
		expected    string
	}{
		{"should bump a caret range", "^1.2.0", "2.1.0", entities.StrategyBumpVersions, "^2.1.0"},
		{"should keep the precision of a pessimistic range", "~> 1.0", "2.3.4", entities.StrategyBumpVersions, "~> 2.3"},
		{"should keep the v prefix", "v1.2.3", "v1.4.0", entities.StrategyBumpVersions, "v1.4.0"},
		{"should widen an unsatisfied range", "^1.0.0", "2.0.0", entities.StrategyWidenRanges, "^1.0.0 || ^2.0.0"},
		{"should keep a satisfied range when widening", "^1.0.0", "1.5.0", entities.StrategyWidenRanges, "^1.0.0"},
		{
			"should keep a satisfied range when bumping only if necessary",
			">= 1.0.0", "1.5.0", entities.StrategyBumpVersionsIfNecessary, ">= 1.0.0",
		},
		{"should leave unconstrained requirements alone", "*", "9.0.0", entities.StrategyBumpVersions, "*"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			// given
			requirement := test.requirement

			// when
			rewritten, err := checker.RewriteRequirement(scheme, requirement, test.version, test.strategy)

			// then
			require.NoError(t, err)
			assert.Equal(t, test.expected, rewritten)
		})
	}

	t.Run("should reject a complex range it cannot rewrite", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := checker.RewriteRequirement(scheme, ">= 1.0.0 < 2.0.0", "3.0.0", entities.StrategyBumpVersions)

		// then
		require.Error(t, err)
	})
}
