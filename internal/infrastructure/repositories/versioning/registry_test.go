//go:build unit

package versioning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

func TestRegistrySchemeFor(t *testing.T) {
	t.Parallel()

	t.Run("should resolve a scheme for every canonical ecosystem", func(t *testing.T) {
		t.Parallel()

		// given
		registry := versioning.NewRegistry()

		for _, alias := range entities.EcosystemAliases() {
			token, ok := entities.CanonicalEcosystem(alias)
			require.True(t, ok)

			// when
			scheme, err := registry.SchemeFor(token)

			// then
			require.NoError(t, err, token)
			assert.NotNil(t, scheme, token)
		}
	})

	t.Run("should return UnknownEcosystemError for an unregistered token", func(t *testing.T) {
		t.Parallel()

		// given
		registry := versioning.NewRegistry()

		// when
		_, err := registry.SchemeFor("swift")

		// then
		var unknown *entities.UnknownEcosystemError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "swift", unknown.Ecosystem)
	})
}

func TestSemverScheme(t *testing.T) {
	t.Parallel()

	t.Run("should match npm ranges", func(t *testing.T) {
		t.Parallel()

		// given
		scheme := versioning.NewSemverScheme(entities.EcosystemNpmAndYarn)

		// when
		requirement, err := scheme.ParseRequirement("^4.0.0")

		// then
		require.NoError(t, err)
		assert.True(t, requirement.SatisfiedBy("4.17.21"))
		assert.False(t, requirement.SatisfiedBy("3.10.1"))
		assert.Equal(t, "^4.0.0", requirement.String())
	})

	t.Run("should reject a malformed range with RequirementParseError", func(t *testing.T) {
		t.Parallel()

		// given
		scheme := versioning.NewSemverScheme(entities.EcosystemNpmAndYarn)

		// when
		_, err := scheme.ParseRequirement(">= not-a-version")

		// then
		var parseErr *entities.RequirementParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, entities.EcosystemNpmAndYarn, parseErr.Ecosystem)
	})

	t.Run("should reject an empty requirement", func(t *testing.T) {
		t.Parallel()

		// given
		scheme := versioning.NewSemverScheme(entities.EcosystemCargo)

		// when
		_, err := scheme.ParseRequirement("  ")

		// then
		require.Error(t, err)
	})

	t.Run("should compare and detect pre-releases", func(t *testing.T) {
		t.Parallel()

		// given
		scheme := versioning.NewSemverScheme(entities.EcosystemCargo)

		// when / then
		assert.Equal(t, -1, scheme.Compare("1.2.3", "1.10.0"))
		assert.Equal(t, 0, scheme.Compare("1.2.3", "1.2.3"))
		assert.True(t, scheme.Prerelease("2.0.0-beta.1"))
		assert.False(t, scheme.Prerelease("2.0.0"))
		assert.False(t, scheme.Correct("latest"))
	})
}

func TestTranslatedSchemes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		scheme      entities.VersionScheme
		requirement string
		satisfied   []string
		unsatisfied []string
	}{
		{
			name:        "bundler pessimistic patch",
			scheme:      versioning.NewBundlerScheme(entities.EcosystemBundler),
			requirement: "~> 1.2.3",
			satisfied:   []string{"1.2.3", "1.2.9"},
			unsatisfied: []string{"1.3.0", "1.2.2"},
		},
		{
			name:        "bundler pessimistic major",
			scheme:      versioning.NewBundlerScheme(entities.EcosystemBundler),
			requirement: "~> 2",
			satisfied:   []string{"2.0.0", "2.9.1"},
			unsatisfied: []string{"3.0.0"},
		},
		{
			name:        "bundler compound",
			scheme:      versioning.NewBundlerScheme(entities.EcosystemBundler),
			requirement: ">= 1.0, < 1.5",
			satisfied:   []string{"1.4.9"},
			unsatisfied: []string{"1.5.0"},
		},
		{
			name:        "pip compatible release",
			scheme:      versioning.NewPipScheme(entities.EcosystemPip),
			requirement: "~=2.2",
			satisfied:   []string{"2.2.0", "2.9.0"},
			unsatisfied: []string{"3.0.0"},
		},
		{
			name:        "pip wildcard equality",
			scheme:      versioning.NewPipScheme(entities.EcosystemPip),
			requirement: "==1.4.*",
			satisfied:   []string{"1.4.0", "1.4.7"},
			unsatisfied: []string{"1.5.0"},
		},
		{
			name:        "pip exact",
			scheme:      versioning.NewPipScheme(entities.EcosystemPip),
			requirement: "==2.31.0",
			satisfied:   []string{"2.31.0"},
			unsatisfied: []string{"2.31.1"},
		},
		{
			name:        "cargo bare caret",
			scheme:      versioning.NewCargoScheme(entities.EcosystemCargo),
			requirement: "0.4.2",
			satisfied:   []string{"0.4.2", "0.4.9"},
			unsatisfied: []string{"0.5.0", "0.4.1"},
		},
		{
			name:        "cargo compound",
			scheme:      versioning.NewCargoScheme(entities.EcosystemCargo),
			requirement: ">=1.2, <1.5",
			satisfied:   []string{"1.2.0", "1.4.9"},
			unsatisfied: []string{"1.5.0"},
		},
		{
			name:        "maven half-open interval",
			scheme:      versioning.NewMavenScheme(entities.EcosystemMaven),
			requirement: "[1.0,2.0)",
			satisfied:   []string{"1.0.0", "1.9.9"},
			unsatisfied: []string{"2.0.0"},
		},
		{
			name:        "maven alternatives",
			scheme:      versioning.NewMavenScheme(entities.EcosystemMaven),
			requirement: "(,1.0],[1.2,)",
			satisfied:   []string{"0.9.0", "1.2.0", "5.0.0"},
			unsatisfied: []string{"1.1.0"},
		},
		{
			name:        "go modules prefixed range",
			scheme:      versioning.NewGoModScheme(entities.EcosystemGoModules),
			requirement: ">= v1.2.0, < v2.0.0",
			satisfied:   []string{"v1.5.0", "1.2.0"},
			unsatisfied: []string{"v2.0.0"},
		},
	}

	for _, tc := range cases {
		t.Run("should translate "+tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			requirement, err := tc.scheme.ParseRequirement(tc.requirement)

			// then
			require.NoError(t, err)
			for _, version := range tc.satisfied {
				assert.True(t, requirement.SatisfiedBy(version), version)
			}
			for _, version := range tc.unsatisfied {
				assert.False(t, requirement.SatisfiedBy(version), version)
			}
		})
	}

	t.Run("should reject a single-segment compatible release for pip", func(t *testing.T) {
		t.Parallel()

		// given
		scheme := versioning.NewPipScheme(entities.EcosystemPip)

		// when
		_, err := scheme.ParseRequirement("~=1")

		// then
		var parseErr *entities.RequirementParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, "~=1", parseErr.Requirement)
	})
}

func TestGoModScheme(t *testing.T) {
	t.Parallel()

	t.Run("should treat pseudo-versions as pre-releases", func(t *testing.T) {
		t.Parallel()

		// given
		scheme := versioning.NewGoModScheme(entities.EcosystemGoModules)

		// when / then
		assert.True(t, scheme.Correct("v0.0.0-20240101000000-abcdefabcdef"))
		assert.True(t, scheme.Prerelease("v0.0.0-20240101000000-abcdefabcdef"))
		assert.Equal(t, 1, scheme.Compare("v1.10.0", "1.9.0"))
		assert.False(t, scheme.Correct("master"))
	})
}
