package checker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

var errNoTarget = errors.New("no version to update to")

// Options are shared by every checker of one policy entry.
type Options struct {
	Scheme   entities.VersionScheme
	Registry PackageRegistry

	// Installed holds every parsed dependency of the entry.
	Installed []entities.Dependency

	// Dependents maps an installed package to the ranges it accepts for its
	// peers, as recorded in the lockfile.
	Dependents map[string]map[string]string

	// DefaultStrategy applies when the policy sets no versioning strategy.
	DefaultStrategy string

	// Rewritable is false for manifests whose requirements cannot be edited.
	Rewritable bool
}

// RegistryUpdateChecker answers UpdateChecker questions from a package
// registry listing. Only registry metadata is used, nothing is installed.
type RegistryUpdateChecker struct {
	input     repositories.CheckerInput
	options   Options
	installed map[string]entities.Dependency
	ignored   []entities.VersionRequirement

	once     sync.Once
	releases []Release
	loadErr  error
}

var _ repositories.UpdateChecker = (*RegistryUpdateChecker)(nil)

// NewRegistryUpdateChecker creates a checker for input.Dependency.
// Unparseable ignore requirements are skipped.
func NewRegistryUpdateChecker(input repositories.CheckerInput, options Options) *RegistryUpdateChecker {
	installed := make(map[string]entities.Dependency, len(options.Installed))
	for _, dependency := range options.Installed {
		installed[dependency.Name] = dependency
	}

	var ignored []entities.VersionRequirement
	for _, raw := range input.IgnoredVersions {
		if requirement, err := options.Scheme.ParseRequirement(raw); err == nil {
			ignored = append(ignored, requirement)
		}
	}

	return &RegistryUpdateChecker{
		input:     input,
		options:   options,
		installed: installed,
		ignored:   ignored,
	}
}

func (c *RegistryUpdateChecker) Dependency() entities.Dependency { return c.input.Dependency }

func (c *RegistryUpdateChecker) RequirementsUpdateStrategy() string {
	if c.input.RequirementsUpdateStrategy != "" {
		return c.input.RequirementsUpdateStrategy
	}
	return c.options.DefaultStrategy
}

func (c *RegistryUpdateChecker) RequirementsUnlockedOrCanBe() bool { return c.options.Rewritable }

func (c *RegistryUpdateChecker) Vulnerable() bool {
	return entities.IsVulnerable(c.input.Advisories, c.input.Dependency, c.options.Scheme)
}

func (c *RegistryUpdateChecker) LatestVersion(ctx context.Context) (string, error) {
	candidates, err := c.candidates(ctx)
	if err != nil || len(candidates) == 0 {
		return "", err
	}
	return candidates[len(candidates)-1].Version, nil
}

func (c *RegistryUpdateChecker) LatestResolvableVersion(ctx context.Context) (string, error) {
	candidates, err := c.candidates(ctx)
	if err != nil {
		return "", err
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if len(c.conflictsWith(candidates[i])) == 0 {
			return candidates[i].Version, nil
		}
	}
	return "", nil
}

func (c *RegistryUpdateChecker) LowestSecurityFixVersion(ctx context.Context) (string, error) {
	return c.lowestFix(ctx, func(Release) bool { return true })
}

func (c *RegistryUpdateChecker) LowestResolvableSecurityFixVersion(ctx context.Context) (string, error) {
	return c.lowestFix(ctx, func(release Release) bool { return len(c.conflictsWith(release)) == 0 })
}

// UpToDate is false for vulnerable dependencies: they always go through the
// resolver so a missing fix is reported as an impossible update.
func (c *RegistryUpdateChecker) UpToDate(ctx context.Context) (bool, error) {
	if c.Vulnerable() {
		return false, nil
	}
	latest, err := c.LatestVersion(ctx)
	if err != nil || latest == "" {
		return latest == "", err
	}

	dependency := c.input.Dependency
	if dependency.HasVersion() && c.options.Scheme.Correct(dependency.Version) {
		return c.options.Scheme.Compare(dependency.Version, latest) >= 0, nil
	}
	return c.requirementsAdmit(latest), nil
}

func (c *RegistryUpdateChecker) CanUpdate(ctx context.Context, level entities.UnlockLevel) (bool, error) {
	target, err := c.target(ctx, level)
	if err != nil || target == nil {
		return false, err
	}

	switch level {
	case entities.LevelNone:
		return true, nil
	case entities.LevelOwn:
		_, rewriteErr := c.rewriteRequirements(c.input.Dependency, target.Version)
		return rewriteErr == nil, nil
	default:
		if _, rewriteErr := c.rewriteRequirements(c.input.Dependency, target.Version); rewriteErr != nil {
			return false, nil //nolint:nilerr // an unwritable requirement only means infeasible
		}
		_, movable, moveErr := c.movePeers(ctx, *target)
		return movable, moveErr
	}
}

// ConflictingDependencies explains what blocks the newest allowed version.
func (c *RegistryUpdateChecker) ConflictingDependencies(ctx context.Context) ([]entities.ConflictingDependency, error) {
	target, err := c.target(ctx, entities.LevelAll)
	if err != nil || target == nil {
		return nil, err
	}
	return c.conflictsWith(*target), nil
}

func (c *RegistryUpdateChecker) UpdatedDependencies(
	ctx context.Context,
	level entities.UnlockLevel,
) ([]entities.Dependency, error) {
	target, err := c.target(ctx, level)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%s: %w", c.input.Dependency.Name, errNoTarget)
	}

	dependency := c.input.Dependency
	updated := updatedFrom(dependency, dependency.Version)
	if dependency.HasVersion() {
		updated.Version = target.Version
	}
	if level != entities.LevelNone {
		if updated.Requirements, err = c.rewriteRequirements(dependency, target.Version); err != nil {
			return nil, err
		}
	}
	if level != entities.LevelAll {
		return []entities.Dependency{updated}, nil
	}

	peers, movable, err := c.movePeers(ctx, *target)
	if err != nil {
		return nil, err
	}
	if !movable {
		return nil, fmt.Errorf("%s: %w at level %s", dependency.Name, errNoTarget, level)
	}
	return append([]entities.Dependency{updated}, peers...), nil
}

// target picks the version an update at level moves to: the lowest fix for a
// vulnerable dependency, the newest version otherwise.
func (c *RegistryUpdateChecker) target(ctx context.Context, level entities.UnlockLevel) (*Release, error) {
	candidates, err := c.candidates(ctx)
	if err != nil {
		return nil, err
	}

	accept := func(release Release) bool {
		if !c.newer(release.Version) {
			return false
		}
		switch level {
		case entities.LevelNone:
			return c.input.Dependency.HasVersion() &&
				c.requirementsAdmit(release.Version) &&
				len(c.conflictsWith(release)) == 0
		case entities.LevelOwn:
			return len(c.conflictsWith(release)) == 0
		default:
			return true
		}
	}

	if c.Vulnerable() {
		for i := range candidates {
			if accept(candidates[i]) && c.fixedBy(candidates[i].Version) {
				return &candidates[i], nil
			}
		}
		return nil, nil
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if accept(candidates[i]) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (c *RegistryUpdateChecker) lowestFix(ctx context.Context, accept func(Release) bool) (string, error) {
	candidates, err := c.candidates(ctx)
	if err != nil {
		return "", err
	}
	for _, release := range candidates {
		if c.newer(release.Version) && c.fixedBy(release.Version) && accept(release) {
			return release.Version, nil
		}
	}
	return "", nil
}

// candidates are the loaded releases minus ignored versions and, unless the
// dependency already runs one, pre-releases. Sorted ascending.
func (c *RegistryUpdateChecker) candidates(ctx context.Context) ([]Release, error) {
	c.once.Do(func() {
		c.releases, c.loadErr = c.load(ctx, c.input.Dependency.Name)
	})
	if c.loadErr != nil {
		return nil, c.loadErr
	}

	scheme := c.options.Scheme
	current := c.input.Dependency.Version
	allowPrerelease := scheme.Correct(current) && scheme.Prerelease(current)

	candidates := make([]Release, 0, len(c.releases))
	for _, release := range c.releases {
		if scheme.Prerelease(release.Version) && !allowPrerelease {
			continue
		}
		if c.isIgnored(release.Version) {
			continue
		}
		candidates = append(candidates, release)
	}
	return candidates, nil
}

func (c *RegistryUpdateChecker) load(ctx context.Context, name string) ([]Release, error) {
	releases, err := c.options.Registry.Releases(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases of %s: %w", name, err)
	}

	scheme := c.options.Scheme
	usable := make([]Release, 0, len(releases))
	for _, release := range releases {
		if release.Yanked || !scheme.Correct(release.Version) {
			continue
		}
		usable = append(usable, release)
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return scheme.Compare(usable[i].Version, usable[j].Version) < 0
	})
	return usable, nil
}

func (c *RegistryUpdateChecker) isIgnored(version string) bool {
	for _, requirement := range c.ignored {
		if requirement.SatisfiedBy(version) {
			return true
		}
	}
	return false
}

// newer reports whether version moves the dependency forward. Without a
// resolved version, any version the requirements do not admit yet counts.
func (c *RegistryUpdateChecker) newer(version string) bool {
	current := c.input.Dependency.Version
	if c.options.Scheme.Correct(current) {
		return c.options.Scheme.Compare(version, current) > 0
	}
	return !c.requirementsAdmit(version)
}

func (c *RegistryUpdateChecker) fixedBy(version string) bool {
	moved := c.input.Dependency
	moved.Version = version
	return !entities.IsVulnerable(c.input.Advisories, moved, c.options.Scheme)
}

func (c *RegistryUpdateChecker) requirementsAdmit(version string) bool {
	for _, requirement := range c.input.Dependency.Requirements {
		if !satisfies(c.options.Scheme, requirement.Requirement, version) {
			return false
		}
	}
	return true
}

// conflictsWith lists installed packages that rule out release, both the
// peers release constrains and the dependents that constrain it.
func (c *RegistryUpdateChecker) conflictsWith(release Release) []entities.ConflictingDependency {
	name := c.input.Dependency.Name
	var conflicts []entities.ConflictingDependency

	for _, peerName := range sortedNames(release.PeerRequirements) {
		requirement := release.PeerRequirements[peerName]
		peer, ok := c.installed[peerName]
		if !ok || !peer.HasVersion() || satisfies(c.options.Scheme, requirement, peer.Version) {
			continue
		}
		conflicts = append(conflicts, entities.ConflictingDependency{
			Name: peerName,
			Explanation: fmt.Sprintf("%s@%s requires %s@%s, but %s is installed",
				name, release.Version, peerName, requirement, peer.Version),
		})
	}

	for _, dependentName := range sortedNames(c.options.Dependents) {
		requirement, ok := c.options.Dependents[dependentName][name]
		if !ok || dependentName == name || satisfies(c.options.Scheme, requirement, release.Version) {
			continue
		}
		dependent := c.installed[dependentName]
		conflicts = append(conflicts, entities.ConflictingDependency{
			Name: dependentName,
			Explanation: fmt.Sprintf("%s@%s requires %s@%s",
				dependentName, dependent.Version, name, requirement),
		})
	}
	return conflicts
}

// movePeers finds, for every conflict of release, a version of the
// conflicting package that lifts it.
func (c *RegistryUpdateChecker) movePeers(ctx context.Context, release Release) ([]entities.Dependency, bool, error) {
	name := c.input.Dependency.Name
	var moved []entities.Dependency
	seen := make(map[string]bool)

	for _, conflict := range c.conflictsWith(release) {
		if seen[conflict.Name] {
			continue
		}
		seen[conflict.Name] = true

		peer, ok := c.installed[conflict.Name]
		if !ok {
			peer = entities.Dependency{Name: conflict.Name, PackageManager: c.input.Dependency.PackageManager}
		}
		accept := func(candidate Release) bool {
			if required, ok := release.PeerRequirements[peer.Name]; ok &&
				!satisfies(c.options.Scheme, required, candidate.Version) {
				return false
			}
			if required, ok := candidate.PeerRequirements[name]; ok &&
				!satisfies(c.options.Scheme, required, release.Version) {
				return false
			}
			return true
		}

		version, err := c.newestPeerVersion(ctx, peer.Name, accept)
		if err != nil {
			return nil, false, err
		}
		if version == "" {
			return nil, false, nil
		}

		updated := updatedFrom(peer, version)
		if updated.Requirements, err = c.rewriteRequirements(peer, version); err != nil {
			return nil, false, nil //nolint:nilerr // an unwritable peer requirement only means infeasible
		}
		moved = append(moved, updated)
	}
	return moved, true, nil
}

func (c *RegistryUpdateChecker) newestPeerVersion(
	ctx context.Context,
	name string,
	accept func(Release) bool,
) (string, error) {
	releases, err := c.load(ctx, name)
	if err != nil {
		return "", err
	}
	for i := len(releases) - 1; i >= 0; i-- {
		if c.options.Scheme.Prerelease(releases[i].Version) {
			continue
		}
		if accept(releases[i]) {
			return releases[i].Version, nil
		}
	}
	return "", nil
}

func (c *RegistryUpdateChecker) rewriteRequirements(
	dependency entities.Dependency,
	version string,
) ([]entities.Requirement, error) {
	rewritten := make([]entities.Requirement, len(dependency.Requirements))
	for i, requirement := range dependency.Requirements {
		updated, err := RewriteRequirement(
			c.options.Scheme, requirement.Requirement, version, c.RequirementsUpdateStrategy(),
		)
		if err != nil {
			return nil, fmt.Errorf("%s in %s: %w", dependency.Name, requirement.File, err)
		}
		rewritten[i] = requirement
		rewritten[i].Requirement = updated
	}
	return rewritten, nil
}

func updatedFrom(dependency entities.Dependency, version string) entities.Dependency {
	updated := dependency
	updated.Version = version
	updated.PreviousVersion = dependency.Version
	updated.PreviousRequirements = dependency.Requirements
	updated.Requirements = append([]entities.Requirement(nil), dependency.Requirements...)
	return updated
}

func sortedNames[V any](values map[string]V) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
