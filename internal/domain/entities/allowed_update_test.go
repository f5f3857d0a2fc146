//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
	builders "github.com/rios0rios0/updatewarden/test/domain/entitybuilders"
)

func TestIsAllowedUpdate(t *testing.T) {
	t.Parallel()

	scheme := versioning.NewSemverScheme(entities.EcosystemNpmAndYarn)
	direct := builders.NewDependencyBuilder().WithName("express").BuildDependency()
	indirect := builders.NewDependencyBuilder().WithName("qs").AsIndirect().BuildDependency()
	development := builders.NewDependencyBuilder().WithName("jest").AsDevelopment().BuildDependency()

	cases := []struct {
		name       string
		rule       entities.AllowedUpdate
		dependency entities.Dependency
		expected   bool
	}{
		{"default rule allows direct", entities.AllowedUpdate{DependencyType: "direct", UpdateType: "all"}, direct, true},
		{"direct rejects indirect", entities.AllowedUpdate{DependencyType: "direct"}, indirect, false},
		{"indirect allows indirect", entities.AllowedUpdate{DependencyType: "indirect"}, indirect, true},
		{"indirect rejects direct", entities.AllowedUpdate{DependencyType: "indirect"}, direct, false},
		{"production rejects development", entities.AllowedUpdate{DependencyType: "production"}, development, false},
		{"development allows development", entities.AllowedUpdate{DependencyType: "development"}, development, true},
		{"development rejects production", entities.AllowedUpdate{DependencyType: "development"}, direct, false},
		{"production rejects indirect", entities.AllowedUpdate{DependencyType: "production"}, indirect, false},
		{"all allows indirect", entities.AllowedUpdate{DependencyType: "all"}, indirect, true},
		{"empty rule allows everything", entities.AllowedUpdate{}, indirect, true},
		{"name glob matches", entities.AllowedUpdate{DependencyName: "exp*"}, direct, true},
		{"name glob rejects", entities.AllowedUpdate{DependencyName: "react*"}, direct, false},
		{"security rule rejects a safe dependency", entities.AllowedUpdate{UpdateType: "security"}, direct, false},
	}

	for _, tc := range cases {
		t.Run("should apply "+tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			result := entities.IsAllowedUpdate([]entities.AllowedUpdate{tc.rule}, nil, tc.dependency, scheme)

			// then
			assert.Equal(t, tc.expected, result)
		})
	}

	t.Run("should allow a vulnerable dependency under a security rule", func(t *testing.T) {
		t.Parallel()

		// given
		dependency := builders.NewDependencyBuilder().WithName("lodash").WithVersion("3.0.0").BuildDependency()
		advisories := []entities.SecurityAdvisory{{DependencyName: "lodash", VulnerableVersions: []string{"< 4.17.12"}}}
		rules := []entities.AllowedUpdate{{UpdateType: entities.UpdateTypeSecurity}}

		// when
		result := entities.IsAllowedUpdate(rules, advisories, dependency, scheme)

		// then
		assert.True(t, result)
	})

	t.Run("should allow when any rule matches", func(t *testing.T) {
		t.Parallel()

		// given
		rules := []entities.AllowedUpdate{
			{DependencyName: "react*"},
			{DependencyType: entities.DependencyTypeIndirect},
		}

		// when
		result := entities.IsAllowedUpdate(rules, nil, indirect, scheme)

		// then
		assert.True(t, result)
	})

	t.Run("should reject when no rule is given", func(t *testing.T) {
		t.Parallel()

		// when
		result := entities.IsAllowedUpdate(nil, nil, direct, scheme)

		// then
		assert.False(t, result)
	})
}
