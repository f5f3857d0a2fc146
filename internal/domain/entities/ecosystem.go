package entities

import "sort"

// Canonical ecosystem tokens used everywhere past the policy boundary.
const (
	EcosystemBundler       = "bundler"
	EcosystemCargo         = "cargo"
	EcosystemComposer      = "composer"
	EcosystemDocker        = "docker"
	EcosystemElm           = "elm"
	EcosystemGitHubActions = "github_actions"
	EcosystemSubmodules    = "submodules"
	EcosystemGoModules     = "go_modules"
	EcosystemGradle        = "gradle"
	EcosystemMaven         = "maven"
	EcosystemHex           = "hex"
	EcosystemNuGet         = "nuget"
	EcosystemNpmAndYarn    = "npm_and_yarn"
	EcosystemPip           = "pip"
	EcosystemTerraform     = "terraform"
)

// Requirement update strategies accepted by RequirementsUpdateStrategy.
const (
	StrategyWidenRanges             = "widen_ranges"
	StrategyBumpVersions            = "bump_versions"
	StrategyBumpVersionsIfNecessary = "bump_versions_if_necessary"
)

//nolint:gochecknoglobals // static lookup tables
var (
	ecosystemAliases = map[string]string{
		"bundler":        EcosystemBundler,
		"cargo":          EcosystemCargo,
		"composer":       EcosystemComposer,
		"docker":         EcosystemDocker,
		"elm":            EcosystemElm,
		"github-actions": EcosystemGitHubActions,
		"gitsubmodule":   EcosystemSubmodules,
		"gomod":          EcosystemGoModules,
		"gradle":         EcosystemGradle,
		"maven":          EcosystemMaven,
		"mix":            EcosystemHex,
		"nuget":          EcosystemNuGet,
		"npm":            EcosystemNpmAndYarn,
		"pip":            EcosystemPip,
		"terraform":      EcosystemTerraform,
	}

	strategyAliases = map[string]string{
		"widen":                 StrategyWidenRanges,
		"increase":              StrategyBumpVersions,
		"increase-if-necessary": StrategyBumpVersionsIfNecessary,
	}

	allowedStrategies = map[string][]string{
		EcosystemNpmAndYarn: {StrategyWidenRanges, StrategyBumpVersions, StrategyBumpVersionsIfNecessary},
		EcosystemComposer:   {StrategyWidenRanges, StrategyBumpVersions, StrategyBumpVersionsIfNecessary},
		EcosystemBundler:    {StrategyBumpVersions, StrategyBumpVersionsIfNecessary},
	}
)

// CanonicalEcosystem maps a user-facing `package-ecosystem` alias (e.g. "npm")
// to its canonical token (e.g. "npm_and_yarn").
func CanonicalEcosystem(alias string) (string, bool) {
	token, ok := ecosystemAliases[alias]
	return token, ok
}

// EcosystemAlias is the reverse of CanonicalEcosystem.
func EcosystemAlias(token string) (string, bool) {
	for alias, canonical := range ecosystemAliases {
		if canonical == token {
			return alias, true
		}
	}
	return "", false
}

// EcosystemAliases returns every user-facing alias, sorted.
func EcosystemAliases() []string {
	aliases := make([]string, 0, len(ecosystemAliases))
	for alias := range ecosystemAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// RequirementsUpdateStrategyFor resolves a `versioning-strategy` value for the
// given ecosystem. Strategies outside the ecosystem's allow-list resolve to "".
func RequirementsUpdateStrategyFor(ecosystem, versioningStrategy string) string {
	strategy, ok := strategyAliases[versioningStrategy]
	if !ok {
		return ""
	}
	for _, allowed := range allowedStrategies[ecosystem] {
		if allowed == strategy {
			return strategy
		}
	}
	return ""
}
