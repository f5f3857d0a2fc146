package policy

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const (
	versioningLockfileOnly = "lockfile-only"
	includeScope           = "scope"
	anyVersion             = ">= 0"
)

// teamPrefix matches the "org/" part of a team reviewer.
var teamPrefix = regexp.MustCompile(`\A.+/`)

type rawDocument struct {
	Updates    []rawUpdate            `yaml:"updates"`
	Registries map[string]rawRegistry `yaml:"registries"`
}

type rawUpdate struct {
	PackageEcosystem              string            `yaml:"package-ecosystem"`
	Directory                     string            `yaml:"directory"`
	Schedule                      entities.Schedule `yaml:"schedule"`
	TargetBranch                  string            `yaml:"target-branch"`
	Allow                         []rawAllow        `yaml:"allow"`
	Ignore                        []rawIgnore       `yaml:"ignore"`
	Reviewers                     []string          `yaml:"reviewers"`
	Assignees                     []string          `yaml:"assignees"`
	Labels                        []string          `yaml:"labels"`
	Milestone                     *int              `yaml:"milestone"`
	CommitMessage                 rawCommitMessage  `yaml:"commit-message"`
	OpenPullRequestsLimit         *int              `yaml:"open-pull-requests-limit"`
	RebaseStrategy                string            `yaml:"rebase-strategy"`
	PullRequestBranchName         rawBranchName     `yaml:"pull-request-branch-name"`
	VersioningStrategy            string            `yaml:"versioning-strategy"`
	Vendor                        bool              `yaml:"vendor"`
	Registries                    rawRegistryRefs   `yaml:"registries"`
	InsecureExternalCodeExecution string            `yaml:"insecure-external-code-execution"`
}

type rawAllow struct {
	DependencyName string `yaml:"dependency-name"`
	DependencyType string `yaml:"dependency-type"`
	UpdateType     string `yaml:"update-type"`
}

type rawIgnore struct {
	DependencyName string     `yaml:"dependency-name"`
	Versions       stringList `yaml:"versions"`
}

type rawCommitMessage struct {
	Prefix            string `yaml:"prefix"`
	PrefixDevelopment string `yaml:"prefix-development"`
	Include           string `yaml:"include"`
}

type rawBranchName struct {
	Separator string `yaml:"separator"`
}

type rawRegistry struct {
	Type         string `yaml:"type"`
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Key          string `yaml:"key"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	ReplacesBase bool   `yaml:"replaces-base"`
}

// stringList decodes either a scalar or a sequence of scalars.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = stringList{value.Value}
		return nil
	}
	var values []string
	if err := value.Decode(&values); err != nil {
		return err
	}
	*l = values
	return nil
}

// rawRegistryRefs decodes either "*" or a list of registry names.
type rawRegistryRefs entities.RegistryRefs

func (r *rawRegistryRefs) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Wildcard = value.Value == "*"
		return nil
	}
	return value.Decode(&r.Names)
}

func transform(root *yaml.Node) (*entities.PolicyDocument, error) {
	var raw rawDocument
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode validated policy: %w", err)
	}

	document := &entities.PolicyDocument{
		Updates:    make([]entities.PolicyConfig, 0, len(raw.Updates)),
		Registries: make(map[string]entities.Registry, len(raw.Registries)),
	}
	for _, update := range raw.Updates {
		document.Updates = append(document.Updates, transformUpdate(update))
	}
	for name, registry := range raw.Registries {
		document.Registries[name] = entities.Registry{
			Name:         name,
			Type:         registry.Type,
			URL:          registry.URL,
			Username:     registry.Username,
			Password:     registry.Password,
			Key:          registry.Key,
			Token:        registry.Token,
			Organization: registry.Organization,
			ReplacesBase: registry.ReplacesBase,
		}
	}
	return document, nil
}

func transformUpdate(update rawUpdate) entities.PolicyConfig {
	ecosystem, _ := entities.CanonicalEcosystem(update.PackageEcosystem)

	return entities.PolicyConfig{
		Ecosystem:    ecosystem,
		Directory:    update.Directory,
		TargetBranch: strings.TrimSpace(update.TargetBranch),
		Schedule:     update.Schedule,

		DefaultReviewers: transformReviewers(update.Reviewers),
		DefaultAssignees: update.Assignees,
		DefaultMilestone: update.Milestone,
		CustomLabels:     update.Labels,

		LockfileOnly:               update.VersioningStrategy == versioningLockfileOnly,
		RequirementsUpdateStrategy: entities.RequirementsUpdateStrategyFor(ecosystem, update.VersioningStrategy),

		AllowedUpdates:   transformAllowedUpdates(update.Allow),
		IgnoreConditions: transformIgnoreConditions(update.Ignore),
		Registries:       entities.RegistryRefs(update.Registries),

		CommitMessage: entities.CommitMessage{
			Prefix:            update.CommitMessage.Prefix,
			PrefixDevelopment: update.CommitMessage.PrefixDevelopment,
			IncludeScope:      transformIncludeScope(update.CommitMessage.Include),
		},
		OpenPullRequestsLimit: update.OpenPullRequestsLimit,
		RebaseStrategy:        update.RebaseStrategy,
		BranchNameSeparator:   update.PullRequestBranchName.Separator,
		Vendor:                update.Vendor,

		InsecureExternalCodeExecution: update.InsecureExternalCodeExecution,
	}
}

// transformReviewers splits "org/team" entries into team slugs. Only team
// reviewers that carry the account prefix are recognised.
func transformReviewers(reviewers []string) *entities.Reviewers {
	result := &entities.Reviewers{UserReviewers: []string{}, TeamReviewers: []string{}}
	for _, reviewer := range reviewers {
		if prefix := teamPrefix.FindString(reviewer); prefix != "" {
			result.TeamReviewers = append(result.TeamReviewers, strings.TrimPrefix(reviewer, prefix))
			continue
		}
		result.UserReviewers = append(result.UserReviewers, reviewer)
	}
	if len(result.UserReviewers) == 0 && len(result.TeamReviewers) == 0 {
		return nil
	}
	return result
}

func transformAllowedUpdates(rules []rawAllow) []entities.AllowedUpdate {
	if len(rules) == 0 {
		return []entities.AllowedUpdate{{
			DependencyType: entities.DependencyTypeDirect,
			UpdateType:     entities.UpdateTypeAll,
		}}
	}

	allowed := make([]entities.AllowedUpdate, 0, len(rules))
	for _, rule := range rules {
		allowed = append(allowed, entities.AllowedUpdate{
			UpdateType:     rule.UpdateType,
			DependencyName: rule.DependencyName,
			DependencyType: rule.DependencyType,
		})
	}
	return allowed
}

// transformIgnoreConditions flattens every condition to one requirement each.
func transformIgnoreConditions(conditions []rawIgnore) []entities.IgnoreCondition {
	var flattened []entities.IgnoreCondition
	for _, condition := range conditions {
		if condition.DependencyName == "" {
			continue
		}
		if len(condition.Versions) == 0 {
			flattened = append(flattened, entities.IgnoreCondition{
				DependencyName: condition.DependencyName, VersionRequirement: anyVersion,
			})
			continue
		}
		for _, version := range condition.Versions {
			flattened = append(flattened, entities.IgnoreCondition{
				DependencyName: condition.DependencyName, VersionRequirement: version,
			})
		}
	}
	return flattened
}

func transformIncludeScope(include string) *bool {
	if include == "" {
		return nil
	}
	scoped := include == includeScope
	return &scoped
}
