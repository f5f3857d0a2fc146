package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories"
)

// Update is the interface for the update command (the decision run).
type Update interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		options entities.UpdateOptions,
	) ([]entities.PolicyReport, error)
}

// UpdateCommand runs the decision pipeline for every entry of a repository's
// update policy: fetch -> parse -> filter -> schedule -> check -> resolve.
type UpdateCommand struct {
	providerRegistry  *infraRepos.ProviderRegistry
	ecosystemRegistry *infraRepos.EcosystemRegistry
	policy            repositories.PolicyRepository
	advisories        repositories.AdvisoryRepository
	metrics           repositories.MetricsRepository
	scheduler         *entities.UpdateScheduler
	resolver          *UnlockStrategyResolver
}

// NewUpdateCommand creates a new UpdateCommand.
func NewUpdateCommand(
	providerRegistry *infraRepos.ProviderRegistry,
	ecosystemRegistry *infraRepos.EcosystemRegistry,
	policy repositories.PolicyRepository,
	advisories repositories.AdvisoryRepository,
	metrics repositories.MetricsRepository,
	scheduler *entities.UpdateScheduler,
	resolver *UnlockStrategyResolver,
) *UpdateCommand {
	return &UpdateCommand{
		providerRegistry:  providerRegistry,
		ecosystemRegistry: ecosystemRegistry,
		policy:            policy,
		advisories:        advisories,
		metrics:           metrics,
		scheduler:         scheduler,
		resolver:          resolver,
	}
}

// policyRun is everything one policy entry needs while it is processed.
type policyRun struct {
	log        *logger.Entry
	policy     entities.PolicyConfig
	ecosystem  repositories.EcosystemRepository
	scheme     entities.VersionScheme
	files      []entities.DependencyFile
	advisories *entities.SecurityAdvisoryIndex
	options    entities.UpdateOptions
}

// Execute validates the repository's policy and returns one report per
// policy entry, in policy order. Configuration problems are fatal and return
// no reports. A failing entry keeps the decisions it already emitted, records
// its error on its report and the joined entry errors are returned alongside
// all reports. Failures of a single dependency are reported against that
// dependency only.
func (it *UpdateCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	options entities.UpdateOptions,
) ([]entities.PolicyReport, error) {
	if options.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	log := logger.WithField("run_id", uuid.NewString())
	repo := options.Repository

	provider, err := it.providerRegistry.Get(
		repo.Provider, settings.TokenFor(repo.Provider), settings.BaseURLFor(repo.Provider),
	)
	if err != nil {
		return nil, err
	}

	policyFile, err := provider.FetchPolicyFile(ctx, repo, "")
	if err != nil {
		return nil, err
	}
	log.Infof("Validating %s from %s", policyFile.Name, repo.FullName())

	document, err := it.policy.ValidateAndTransform([]byte(policyFile.Content))
	if err != nil {
		return nil, err
	}

	// every bundle is resolved before any dependency work starts
	ecosystems := make([]repositories.EcosystemRepository, len(document.Updates))
	for i, policy := range document.Updates {
		ecosystems[i], err = it.ecosystemRegistry.Get(policy.Ecosystem, settings)
		if err != nil {
			return nil, err
		}
	}

	// entries are independent: a failing entry keeps its own error and never
	// cancels the others
	reports := make([]entities.PolicyReport, len(document.Updates))
	var group errgroup.Group
	group.SetLimit(max(settings.Concurrency, 1))
	for i, policy := range document.Updates {
		group.Go(func() error {
			run := &policyRun{
				log:       log.WithField("ecosystem", policy.Ecosystem),
				policy:    policy,
				ecosystem: ecosystems[i],
				scheme:    ecosystems[i].VersionScheme(),
				options:   options,
			}
			report, runErr := it.processPolicy(ctx, provider, settings, run)
			if runErr != nil {
				report.Err = fmt.Errorf("[%s] %s: %w", policy.Ecosystem, policy.Directory, runErr)
				run.log.Error(report.Err)
			}
			reports[i] = report
			return nil
		})
	}
	_ = group.Wait()

	if flushErr := it.metrics.Flush(settings.MetricsTextfile); flushErr != nil {
		log.Warnf("Failed to write metrics to %q: %v", settings.MetricsTextfile, flushErr)
	}

	updated, failed := summarize(reports)
	log.Infof("Run complete: %d policy entries, %d updates, %d errors", len(reports), updated, failed)
	return reports, entryErrors(reports)
}

// entryErrors joins the errors of every failed policy entry, in policy order.
func entryErrors(reports []entities.PolicyReport) error {
	var errs []error
	for _, report := range reports {
		if report.Err != nil {
			errs = append(errs, report.Err)
		}
	}
	return errors.Join(errs...)
}

func (it *UpdateCommand) processPolicy(
	ctx context.Context,
	provider repositories.ProviderRepository,
	settings *entities.Settings,
	run *policyRun,
) (entities.PolicyReport, error) {
	policy := run.policy
	report := entities.PolicyReport{Policy: policy}
	run.log.Infof("[%s] Checking for updates in %s", policy.Ecosystem, policy.Directory)

	files, err := provider.FetchFiles(
		ctx, run.options.Repository, policy.Directory, policy.TargetBranch, run.ecosystem.FileNames(),
	)
	if err != nil {
		return report, fmt.Errorf("failed to fetch dependency files: %w", err)
	}
	run.files = files
	report.Files = files

	run.log.Infof("[%s] Parsing %d dependency files", policy.Ecosystem, len(files))
	dependencies, err := run.ecosystem.Parse(ctx, files, policy)
	if err != nil {
		return report, fmt.Errorf("failed to parse dependency files: %w", err)
	}

	advisories, err := it.advisories.Advisories(ctx, settings, policy.Ecosystem)
	if err != nil {
		return report, fmt.Errorf("failed to load security advisories: %w", err)
	}
	run.advisories = entities.NewSecurityAdvisoryIndex(advisories)

	scheduled := it.selectDependencies(run, dependencies)
	it.metrics.RecordScheduled(policy.Ecosystem, len(scheduled))

	for index, dependency := range scheduled {
		if ctx.Err() != nil {
			run.log.Warnf("[%s] Stopping after %d/%d dependencies: %v",
				policy.Ecosystem, index, len(scheduled), ctx.Err())
			break
		}

		run.log.Infof("[%s] Checking for updates %d/%d", policy.Ecosystem, index+1, len(scheduled))
		decision := it.decide(ctx, run, dependency)
		it.metrics.RecordDecision(policy.Ecosystem, decision)
		if decision.Outcome == entities.OutcomeUpdated {
			run.files = mergeUpdatedFiles(run.files, decision.UpdatedFiles, policy.Directory)
		}
		if decision.Emitted() {
			report.Decisions = append(report.Decisions, decision)
		}
	}
	return report, nil
}

// selectDependencies applies the `--dep` override, or filters top-level
// allowed dependencies and orders them with the scheduler.
func (it *UpdateCommand) selectDependencies(
	run *policyRun,
	dependencies []entities.Dependency,
) []entities.Dependency {
	if run.options.HasDependencyOverride() {
		var requested []entities.Dependency
		for _, dependency := range dependencies {
			if run.options.Requested(dependency.Name) {
				requested = append(requested, dependency)
			}
		}
		return requested
	}

	var topLevel, allowed []entities.Dependency
	for _, dependency := range dependencies {
		if !dependency.TopLevel() {
			continue
		}
		topLevel = append(topLevel, dependency)
		if entities.IsAllowedUpdate(
			run.policy.AllowedUpdates, run.advisories.AdvisoriesFor(dependency.Name), dependency, run.scheme,
		) {
			allowed = append(allowed, dependency)
		}
	}
	if len(topLevel) > 0 && len(allowed) == 0 {
		run.log.Infof("[%s] Found no dependencies to update after filtering allowed updates",
			run.policy.Ecosystem)
	}

	return it.scheduler.Order(allowed, func(dependency entities.Dependency) bool {
		return entities.IsVulnerable(run.advisories.AdvisoriesFor(dependency.Name), dependency, run.scheme)
	})
}

func (it *UpdateCommand) newChecker(run *policyRun, dependency entities.Dependency) repositories.UpdateChecker {
	return run.ecosystem.NewChecker(repositories.CheckerInput{
		Dependency:                 dependency,
		Files:                      run.files,
		IgnoredVersions:            run.policy.IgnoredVersionsFor(dependency.Name),
		Advisories:                 run.advisories.AdvisoriesFor(dependency.Name),
		RequirementsUpdateStrategy: run.policy.RequirementsUpdateStrategy,
	})
}

// decide produces the terminal decision for one scheduled dependency.
//
//nolint:funlen // linear pipeline, one step per stage
func (it *UpdateCommand) decide(
	ctx context.Context,
	run *policyRun,
	dependency entities.Dependency,
) entities.UpdateDecision {
	name := run.policy.Ecosystem
	checker := it.newChecker(run, dependency)
	decision := entities.UpdateDecision{
		Dependency:     dependency,
		UnlockStrategy: entities.UnlockNone,
		Vulnerable:     checker.Vulnerable(),
	}
	fail := func(err error) entities.UpdateDecision {
		run.log.Errorf("[%s] %s: %v", name, dependency.Name, err)
		decision.Outcome = entities.OutcomeError
		decision.Err = err
		return decision
	}

	label := fmt.Sprintf("%s (%s)", dependency.Name, dependency.Version)
	if decision.Vulnerable {
		label += " (vulnerable)"
	}
	run.log.Infof("[%s] === %s", name, label)

	latest, err := checker.LatestVersion(ctx)
	if err != nil {
		return fail(err)
	}
	decision.LatestVersion = latest
	run.log.Infof("[%s] Latest available version is %s", name, latest)

	if run.options.SecurityUpdatesOnly && !decision.Vulnerable {
		if run.scheme.Correct(dependency.Version) {
			run.log.Infof("[%s] No security update needed as %s is not vulnerable", name, dependency.Name)
			decision.Outcome = entities.OutcomeNotVulnerable
		} else {
			run.log.Warnf("[%s] Can't update vulnerable dependencies without a lockfile "+
				"as the installed version of %s isn't known", name, dependency.Name)
			decision.Outcome = entities.OutcomeVersionUnknown
		}
		return decision
	}

	latestAllowed, err := it.latestAllowedVersion(ctx, run, checker, decision.Vulnerable)
	if err != nil {
		return fail(err)
	}
	decision.LatestAllowedVersion = latestAllowed

	upToDate, err := checker.UpToDate(ctx)
	if err != nil {
		return fail(err)
	}
	if upToDate {
		run.log.Infof("[%s] No update needed as %s is already up-to-date", name, dependency.Name)
		decision.Outcome = entities.OutcomeUpToDate
		return decision
	}

	strategy, conflicts, err := it.resolver.Resolve(ctx, checker, run.policy.LockfileOnly)
	if err != nil {
		return fail(err)
	}
	decision.UnlockStrategy = strategy
	run.log.Infof("[%s] Requirements to unlock: %s", name, strategy)
	run.log.Infof("[%s] Requirements update strategy: %s", name, checker.RequirementsUpdateStrategy())

	if strategy == entities.UnlockImpossible {
		decision.ConflictingDependencies = conflicts
		decision.Outcome = entities.OutcomeUpdateNotPossible
		for _, conflict := range conflicts {
			run.log.Infof("[%s] Conflict: %s", name, conflict.Explanation)
		}
		if decision.Vulnerable || run.options.SecurityUpdatesOnly {
			run.log.Warnf("[%s] No security update possible for %s", name, dependency.Name)
		} else {
			run.log.Infof("[%s] No update possible for %s", name, dependency.Name)
		}
		return decision
	}

	updated, err := checker.UpdatedDependencies(ctx, strategy.Level())
	if err != nil {
		return fail(err)
	}

	vetoed, err := it.resolver.VetoedByPeer(ctx, dependency, updated, func(peer entities.Dependency) repositories.UpdateChecker {
		return it.newChecker(run, peer)
	})
	if err != nil {
		return fail(err)
	}
	if vetoed {
		run.log.Infof("[%s] No update possible for %s, peer dependency can be updated", name, dependency.Name)
		decision.Outcome = entities.OutcomePeerCanUpdate
		return decision
	}

	logUpdating(run, updated)
	updatedFiles, err := run.ecosystem.UpdatedDependencyFiles(updated, run.files)
	if err != nil {
		return fail(err)
	}
	decision.UpdatedFiles = updatedFiles
	decision.UpdatedDependencies = pruneUnchanged(dependency, updated)
	decision.IsSecurityFix = decision.Vulnerable && it.fixesVulnerability(run, decision.UpdatedDependencies)
	decision.Outcome = entities.OutcomeUpdated

	if run.options.SecurityUpdatesOnly && !decision.IsSecurityFix {
		run.log.Warnf("[%s] Updated version of %s is still vulnerable", name, dependency.Name)
	}
	return decision
}

func (it *UpdateCommand) latestAllowedVersion(
	ctx context.Context,
	run *policyRun,
	checker repositories.UpdateChecker,
	vulnerable bool,
) (string, error) {
	name := run.policy.Ecosystem
	if !vulnerable {
		return checker.LatestResolvableVersion(ctx)
	}

	lowestFix, err := checker.LowestSecurityFixVersion(ctx)
	if err != nil {
		return "", err
	}
	if lowestFix != "" {
		run.log.Infof("[%s] Earliest available non-vulnerable version is %s", name, lowestFix)
	} else {
		run.log.Warnf("[%s] There is no available non-vulnerable version", name)
	}
	return checker.LowestResolvableSecurityFixVersion(ctx)
}

// fixesVulnerability reports whether at least one updated dependency left
// every advisory range it was in.
func (it *UpdateCommand) fixesVulnerability(run *policyRun, updated []entities.Dependency) bool {
	for _, dependency := range updated {
		advisories := run.advisories.AdvisoriesFor(dependency.Name)
		if len(advisories) == 0 || !run.scheme.Correct(dependency.Version) {
			continue
		}
		if !entities.IsVulnerable(advisories, dependency, run.scheme) {
			return true
		}
	}
	return false
}

// mergeUpdatedFiles returns files with updated applied on top, so the next
// decision of the entry starts from the content earlier updates produced.
func mergeUpdatedFiles(
	files []entities.DependencyFile,
	updated []entities.UpdatedFile,
	directory string,
) []entities.DependencyFile {
	merged := make([]entities.DependencyFile, 0, len(files)+len(updated))
	changes := make(map[string]entities.UpdatedFile, len(updated))
	for _, file := range updated {
		changes[file.Name] = file
	}

	for _, file := range files {
		change, ok := changes[file.Name]
		if !ok {
			merged = append(merged, file)
			continue
		}
		delete(changes, file.Name)
		if change.Deleted {
			continue
		}
		file.Content = change.Content
		merged = append(merged, file)
	}
	for _, file := range updated {
		change, ok := changes[file.Name]
		if !ok || change.Deleted {
			continue
		}
		delete(changes, file.Name)
		merged = append(merged, entities.DependencyFile{Name: change.Name, Directory: directory, Content: change.Content})
	}
	return merged
}

// pruneUnchanged keeps the target dependency and every peer the update
// actually moved: top-level peers must have new requirements, the others a
// new version.
func pruneUnchanged(target entities.Dependency, updated []entities.Dependency) []entities.Dependency {
	kept := make([]entities.Dependency, 0, len(updated))
	for _, dependency := range updated {
		switch {
		case dependency.Name == target.Name:
		case dependency.TopLevel() && !dependency.RequirementsChanged():
			continue
		case dependency.Version == dependency.PreviousVersion:
			continue
		}
		kept = append(kept, dependency)
	}
	return kept
}

func logUpdating(run *policyRun, updated []entities.Dependency) {
	name := run.policy.Ecosystem
	if len(updated) == 1 {
		dependency := updated[0]
		from := ""
		if dependency.PreviousVersion != "" {
			from = "from " + dependency.PreviousVersion + " "
		}
		run.log.Infof("[%s] Updating %s %sto %s", name, dependency.Name, from, dependency.Version)
		return
	}

	names := make([]string, 0, len(updated))
	for _, dependency := range updated {
		names = append(names, dependency.Name)
	}
	run.log.Infof("[%s] Updating %s", name, strings.Join(names, ", "))
}

func summarize(reports []entities.PolicyReport) (int, int) {
	updated, failed := 0, 0
	for _, report := range reports {
		for _, decision := range report.Decisions {
			switch decision.Outcome {
			case entities.OutcomeUpdated:
				updated++
			case entities.OutcomeError:
				failed++
			default:
			}
		}
	}
	return updated, failed
}
