//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/commands"
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	builders "github.com/rios0rios0/updatewarden/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/updatewarden/test/infrastructure/repositorydoubles"
)

func TestUnlockStrategyResolverResolve(t *testing.T) {
	t.Parallel()

	t.Run("should resolve NONE for a lockfile-only update that resolves in place", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.StubUpdateChecker{
			Dep:      builders.NewDependencyBuilder().BuildDependency(),
			Feasible: map[entities.UnlockLevel]bool{entities.LevelNone: true},
		}

		// when
		strategy, conflicts, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, true)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.UnlockNone, strategy)
		assert.Empty(t, conflicts)
		assert.Equal(t, []entities.UnlockLevel{entities.LevelNone}, checker.Calls())
	})

	t.Run("should resolve IMPOSSIBLE with the checker's conflicts verbatim", func(t *testing.T) {
		t.Parallel()

		// given
		conflicts := []entities.ConflictingDependency{
			{Name: "react-dom", Explanation: "react-dom@16.14.0 requires react@^16.14.0"},
		}
		checker := &doubles.StubUpdateChecker{
			Dep:       builders.NewDependencyBuilder().WithName("react").BuildDependency(),
			Conflicts: conflicts,
		}

		// when
		strategy, found, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, true)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.UnlockImpossible, strategy)
		assert.Equal(t, conflicts, found)
	})

	t.Run("should only try NONE when requirements cannot be unlocked", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.StubUpdateChecker{
			Dep:      builders.NewDependencyBuilder().BuildDependency(),
			Locked:   true,
			Feasible: map[entities.UnlockLevel]bool{entities.LevelOwn: true, entities.LevelAll: true},
		}

		// when
		strategy, _, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.UnlockImpossible, strategy)
		assert.Equal(t, []entities.UnlockLevel{entities.LevelNone}, checker.Calls())
	})

	t.Run("should resolve OWN without asking about ALL", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.StubUpdateChecker{
			Dep:      builders.NewDependencyBuilder().BuildDependency(),
			Feasible: map[entities.UnlockLevel]bool{entities.LevelOwn: true, entities.LevelAll: true},
		}

		// when
		strategy, _, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.UnlockOwn, strategy)
		assert.Equal(t, []entities.UnlockLevel{entities.LevelOwn}, checker.Calls())
	})

	t.Run("should fall back to ALL when OWN is infeasible", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.StubUpdateChecker{
			Dep:      builders.NewDependencyBuilder().BuildDependency(),
			Feasible: map[entities.UnlockLevel]bool{entities.LevelAll: true},
		}

		// when
		strategy, conflicts, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.UnlockAll, strategy)
		assert.Nil(t, conflicts)
		assert.Equal(t, []entities.UnlockLevel{entities.LevelOwn, entities.LevelAll}, checker.Calls())
	})

	t.Run("should resolve IMPOSSIBLE when neither OWN nor ALL is feasible", func(t *testing.T) {
		t.Parallel()

		// given
		checker := &doubles.StubUpdateChecker{
			Dep:       builders.NewDependencyBuilder().BuildDependency(),
			Conflicts: []entities.ConflictingDependency{{Name: "peer", Explanation: "peer pins it"}},
		}

		// when
		strategy, conflicts, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.UnlockImpossible, strategy)
		assert.Len(t, conflicts, 1)
		assert.Equal(t, []entities.UnlockLevel{entities.LevelOwn, entities.LevelAll}, checker.Calls())
	})

	t.Run("should return the checker error", func(t *testing.T) {
		t.Parallel()

		// given
		boom := errors.New("registry unavailable")
		checker := &doubles.StubUpdateChecker{
			Dep:          builders.NewDependencyBuilder().BuildDependency(),
			CanUpdateErr: boom,
		}

		// when
		_, _, err := commands.NewUnlockStrategyResolver().Resolve(context.Background(), checker, false)

		// then
		require.ErrorIs(t, err, boom)
	})
}

func TestUnlockStrategyResolverVetoedByPeer(t *testing.T) {
	t.Parallel()

	updatedPeer := func(name string) entities.Dependency {
		dependency := builders.NewDependencyBuilder().WithName(name).WithVersion("2.0.0").BuildDependency()
		dependency.PreviousVersion = "1.0.0"
		dependency.PreviousRequirements = dependency.Requirements
		return dependency
	}

	t.Run("should veto when a peer can update on its own", func(t *testing.T) {
		t.Parallel()

		// given
		target := builders.NewDependencyBuilder().WithName("react").BuildDependency()
		peer := updatedPeer("react-dom")
		var seen []entities.Dependency
		newChecker := func(dependency entities.Dependency) repositories.UpdateChecker {
			seen = append(seen, dependency)
			return &doubles.StubUpdateChecker{
				Dep:      dependency,
				Feasible: map[entities.UnlockLevel]bool{entities.LevelOwn: true},
			}
		}

		// when
		vetoed, err := commands.NewUnlockStrategyResolver().VetoedByPeer(
			context.Background(), target, []entities.Dependency{updatedPeer("react"), peer}, newChecker,
		)

		// then
		require.NoError(t, err)
		assert.True(t, vetoed)
		require.Len(t, seen, 1)
		assert.Equal(t, "react-dom", seen[0].Name)
		assert.Equal(t, "1.0.0", seen[0].Version)
	})

	t.Run("should not veto when every peer is stuck", func(t *testing.T) {
		t.Parallel()

		// given
		target := builders.NewDependencyBuilder().WithName("react").BuildDependency()
		newChecker := func(dependency entities.Dependency) repositories.UpdateChecker {
			return &doubles.StubUpdateChecker{Dep: dependency}
		}

		// when
		vetoed, err := commands.NewUnlockStrategyResolver().VetoedByPeer(
			context.Background(), target, []entities.Dependency{updatedPeer("react-dom")}, newChecker,
		)

		// then
		require.NoError(t, err)
		assert.False(t, vetoed)
	})

	t.Run("should not veto a lone update", func(t *testing.T) {
		t.Parallel()

		// given
		target := builders.NewDependencyBuilder().WithName("lodash").BuildDependency()
		newChecker := func(_ entities.Dependency) repositories.UpdateChecker {
			t.Fatal("no checker expected for the target itself")
			return nil
		}

		// when
		vetoed, err := commands.NewUnlockStrategyResolver().VetoedByPeer(
			context.Background(), target, []entities.Dependency{updatedPeer("lodash")}, newChecker,
		)

		// then
		require.NoError(t, err)
		assert.False(t, vetoed)
	})
}
