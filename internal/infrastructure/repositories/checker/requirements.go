package checker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// simpleRequirement matches a single operator followed by one version, e.g.
// "^1.2.0", "~> 3.1", "==2.0.1" or "v1.4.0".
var simpleRequirement = regexp.MustCompile(`^(\^|~>|~=|~|>=|===|==|=)?\s*(v?)(\d+(?:\.\d+)*)([-+][0-9A-Za-z.+-]*)?$`)

var errUnsupportedRequirement = errors.New("requirement cannot be rewritten")

// unconstrained reports requirements that accept any version.
func unconstrained(requirement string) bool {
	switch strings.TrimSpace(requirement) {
	case "", "*", "latest", ">= 0", ">=0":
		return true
	default:
		return false
	}
}

func satisfies(scheme entities.VersionScheme, requirement, version string) bool {
	if unconstrained(requirement) {
		return true
	}
	parsed, err := scheme.ParseRequirement(requirement)
	if err != nil {
		return false
	}
	return parsed.SatisfiedBy(version)
}

// RewriteRequirement loosens or bumps requirement so that it admits version,
// following one of the requirement update strategies.
func RewriteRequirement(scheme entities.VersionScheme, requirement, version, strategy string) (string, error) {
	if unconstrained(requirement) {
		return requirement, nil
	}

	trimmed := strings.TrimSpace(requirement)
	satisfied := satisfies(scheme, trimmed, version)
	switch strategy {
	case entities.StrategyWidenRanges:
		if satisfied {
			return requirement, nil
		}
		return trimmed + " || " + bumpedOrCaret(trimmed, version), nil
	case entities.StrategyBumpVersionsIfNecessary:
		if satisfied {
			return requirement, nil
		}
	}

	bumped, ok := bump(trimmed, version)
	if !ok {
		if satisfied {
			return requirement, nil
		}
		return "", fmt.Errorf("%w: %q", errUnsupportedRequirement, requirement)
	}
	if !satisfies(scheme, bumped, version) {
		return "", fmt.Errorf("%w: %q does not admit %s", errUnsupportedRequirement, bumped, version)
	}
	return bumped, nil
}

func bumpedOrCaret(requirement, version string) string {
	alternatives := strings.Split(requirement, "||")
	if bumped, ok := bump(strings.TrimSpace(alternatives[len(alternatives)-1]), version); ok {
		return bumped
	}
	return "^" + strings.TrimPrefix(version, "v")
}

// bump keeps the operator, the "v" prefix and the precision of a simple
// requirement and swaps in version.
func bump(requirement, version string) (string, bool) {
	match := simpleRequirement.FindStringSubmatch(requirement)
	if match == nil {
		return "", false
	}
	operator, prefix, core := match[1], match[2], match[3]

	replacement := truncate(strings.TrimPrefix(version, "v"), strings.Count(core, ".")+1)
	separator := ""
	if operator == "~>" {
		separator = " "
	}
	return operator + separator + prefix + replacement, true
}

// truncate keeps the first segments numeric parts of version. Versions with
// at least that many parts are returned unchanged.
func truncate(version string, segments int) string {
	end := strings.IndexFunc(version, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	core := version
	if end >= 0 {
		core = version[:end]
	}
	parts := strings.Split(core, ".")
	if segments >= len(parts) {
		return version
	}
	return strings.Join(parts[:segments], ".")
}
