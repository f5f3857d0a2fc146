//go:build unit

package entities_test

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	builders "github.com/rios0rios0/updatewarden/test/domain/entitybuilders"
)

func dependenciesNamed(prefix string, count int) []entities.Dependency {
	dependencies := make([]entities.Dependency, 0, count)
	for i := range count {
		dependencies = append(dependencies,
			builders.NewDependencyBuilder().WithName(fmt.Sprintf("%s-%d", prefix, i)).BuildDependency())
	}
	return dependencies
}

func namesOf(dependencies []entities.Dependency) []string {
	names := make([]string, 0, len(dependencies))
	for _, dependency := range dependencies {
		names = append(names, dependency.Name)
	}
	return names
}

func isVulnerableByName(dependency entities.Dependency) bool {
	return strings.HasPrefix(dependency.Name, "vuln-")
}

func TestUpdateSchedulerOrder(t *testing.T) {
	t.Parallel()

	t.Run("should put every vulnerable dependency first when there are at most ten", func(t *testing.T) {
		t.Parallel()

		// given
		vulnerable := dependenciesNamed("vuln", 4)
		safe := dependenciesNamed("safe", 7)
		input := append(append([]entities.Dependency{}, safe...), vulnerable...)
		scheduler := entities.NewUpdateScheduler(rand.NewPCG(1, 2))

		// when
		ordered := scheduler.Order(input, isVulnerableByName)

		// then
		require.Len(t, ordered, len(input))
		assert.ElementsMatch(t, namesOf(vulnerable), namesOf(ordered[:4]))
		assert.ElementsMatch(t, namesOf(safe), namesOf(ordered[4:]))
		assert.ElementsMatch(t, namesOf(input), namesOf(ordered))
	})

	t.Run("should bound the vulnerable prefix to ten", func(t *testing.T) {
		t.Parallel()

		// given
		vulnerable := dependenciesNamed("vuln", 15)
		safe := dependenciesNamed("safe", 5)
		input := append(append([]entities.Dependency{}, vulnerable...), safe...)
		scheduler := entities.NewUpdateScheduler(rand.NewPCG(3, 4))

		// when
		ordered := scheduler.Order(input, isVulnerableByName)

		// then
		require.Len(t, ordered, entities.MaxVulnerableFirst+len(safe))
		for _, dependency := range ordered[:entities.MaxVulnerableFirst] {
			assert.True(t, isVulnerableByName(dependency))
		}
		assert.Subset(t, namesOf(vulnerable), namesOf(ordered[:entities.MaxVulnerableFirst]))
		assert.ElementsMatch(t, namesOf(safe), namesOf(ordered[entities.MaxVulnerableFirst:]))
	})

	t.Run("should not mutate the input slice", func(t *testing.T) {
		t.Parallel()

		// given
		input := dependenciesNamed("safe", 20)
		before := namesOf(input)
		scheduler := entities.NewUpdateScheduler(rand.NewPCG(5, 6))

		// when
		_ = scheduler.Order(input, isVulnerableByName)

		// then
		assert.Equal(t, before, namesOf(input))
	})

	t.Run("should produce the same order for the same seed", func(t *testing.T) {
		t.Parallel()

		// given
		input := append(dependenciesNamed("vuln", 12), dependenciesNamed("safe", 12)...)

		// when
		first := entities.NewUpdateScheduler(rand.NewPCG(7, 8)).Order(input, isVulnerableByName)
		second := entities.NewUpdateScheduler(rand.NewPCG(7, 8)).Order(input, isVulnerableByName)

		// then
		assert.Equal(t, namesOf(first), namesOf(second))
	})

	t.Run("should return an empty schedule for no dependencies", func(t *testing.T) {
		t.Parallel()

		// given
		scheduler := entities.NewUpdateScheduler(rand.NewPCG(9, 10))

		// when
		ordered := scheduler.Order(nil, isVulnerableByName)

		// then
		assert.Empty(t, ordered)
	})

	t.Run("should order schedules from concurrent policy entries", func(t *testing.T) {
		t.Parallel()

		// given
		scheduler := entities.NewUpdateScheduler(rand.NewPCG(7, 3))
		input := append(dependenciesNamed("vuln", 12), dependenciesNamed("safe", 20)...)
		const workers = 8
		results := make([][]entities.Dependency, workers)

		// when
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = scheduler.Order(input, isVulnerableByName)
			}()
		}
		wg.Wait()

		// then
		for _, ordered := range results {
			require.Len(t, ordered, entities.MaxVulnerableFirst+20)
			for _, dependency := range ordered[:entities.MaxVulnerableFirst] {
				assert.True(t, isVulnerableByName(dependency))
			}
			assert.ElementsMatch(t, namesOf(dependenciesNamed("safe", 20)), namesOf(ordered[entities.MaxVulnerableFirst:]))
		}
	})
}
