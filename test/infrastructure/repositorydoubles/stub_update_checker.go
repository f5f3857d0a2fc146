//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// StubUpdateChecker implements repositories.UpdateChecker with canned answers.
// Levels missing from Feasible are infeasible.
type StubUpdateChecker struct {
	Dep entities.Dependency

	Latest              string
	LatestResolvable    string
	LowestFix           string
	LowestResolvableFix string
	LatestErr           error

	IsVulnerable bool
	IsUpToDate   bool
	UpToDateErr  error

	// Locked makes RequirementsUnlockedOrCanBe return false.
	Locked bool

	Feasible     map[entities.UnlockLevel]bool
	CanUpdateErr error
	Conflicts    []entities.ConflictingDependency

	Updated    map[entities.UnlockLevel][]entities.Dependency
	UpdatedErr error

	Strategy string

	// spy
	mu             sync.Mutex
	CanUpdateCalls []entities.UnlockLevel
}

var _ repositories.UpdateChecker = (*StubUpdateChecker)(nil)

func (c *StubUpdateChecker) Dependency() entities.Dependency { return c.Dep }

func (c *StubUpdateChecker) LatestVersion(_ context.Context) (string, error) {
	return c.Latest, c.LatestErr
}

func (c *StubUpdateChecker) LatestResolvableVersion(_ context.Context) (string, error) {
	return c.LatestResolvable, nil
}

func (c *StubUpdateChecker) LowestSecurityFixVersion(_ context.Context) (string, error) {
	return c.LowestFix, nil
}

func (c *StubUpdateChecker) LowestResolvableSecurityFixVersion(_ context.Context) (string, error) {
	return c.LowestResolvableFix, nil
}

func (c *StubUpdateChecker) Vulnerable() bool { return c.IsVulnerable }

func (c *StubUpdateChecker) UpToDate(_ context.Context) (bool, error) {
	return c.IsUpToDate, c.UpToDateErr
}

func (c *StubUpdateChecker) RequirementsUnlockedOrCanBe() bool { return !c.Locked }

func (c *StubUpdateChecker) CanUpdate(_ context.Context, level entities.UnlockLevel) (bool, error) {
	c.mu.Lock()
	c.CanUpdateCalls = append(c.CanUpdateCalls, level)
	c.mu.Unlock()
	if c.CanUpdateErr != nil {
		return false, c.CanUpdateErr
	}
	return c.Feasible[level], nil
}

func (c *StubUpdateChecker) ConflictingDependencies(_ context.Context) ([]entities.ConflictingDependency, error) {
	return c.Conflicts, nil
}

func (c *StubUpdateChecker) UpdatedDependencies(
	_ context.Context, level entities.UnlockLevel,
) ([]entities.Dependency, error) {
	return c.Updated[level], c.UpdatedErr
}

func (c *StubUpdateChecker) RequirementsUpdateStrategy() string { return c.Strategy }

// Calls returns a copy of the levels CanUpdate was asked about.
func (c *StubUpdateChecker) Calls() []entities.UnlockLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entities.UnlockLevel(nil), c.CanUpdateCalls...)
}
