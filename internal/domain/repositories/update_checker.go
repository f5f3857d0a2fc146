package repositories

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// UpdateChecker answers version and unlock questions for a single dependency.
// Implementations may hit registries, so every blocking call takes a context.
type UpdateChecker interface {
	Dependency() entities.Dependency

	LatestVersion(ctx context.Context) (string, error)
	LatestResolvableVersion(ctx context.Context) (string, error)
	LowestSecurityFixVersion(ctx context.Context) (string, error)
	LowestResolvableSecurityFixVersion(ctx context.Context) (string, error)

	// Vulnerable reports whether the current version is affected by the
	// checker's advisories.
	Vulnerable() bool

	// UpToDate reports whether the dependency is already at its latest
	// allowed version.
	UpToDate(ctx context.Context) (bool, error)

	// RequirementsUnlockedOrCanBe is false when manifest requirements cannot
	// be rewritten at all, forcing lockfile-only updates.
	RequirementsUnlockedOrCanBe() bool

	CanUpdate(ctx context.Context, level entities.UnlockLevel) (bool, error)
	ConflictingDependencies(ctx context.Context) ([]entities.ConflictingDependency, error)
	UpdatedDependencies(ctx context.Context, level entities.UnlockLevel) ([]entities.Dependency, error)

	// RequirementsUpdateStrategy returns the strategy used to rewrite
	// requirements, for reporting.
	RequirementsUpdateStrategy() string
}
