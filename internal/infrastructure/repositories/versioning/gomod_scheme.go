package versioning

import (
	"strings"

	"golang.org/x/mod/semver"
)

// GoModScheme follows the module system's canonical semver, where versions
// carry a "v" prefix. Ranges reuse the semver constraint grammar.
type GoModScheme struct {
	*SemverScheme
}

// NewGoModScheme returns the grammar of go_modules.
func NewGoModScheme(ecosystem string) *GoModScheme {
	return &GoModScheme{SemverScheme: NewSemverScheme(ecosystem)}
}

func (s *GoModScheme) Correct(version string) bool {
	return semver.IsValid(normalizeVersion(version))
}

func (s *GoModScheme) Compare(left, right string) int {
	return semver.Compare(normalizeVersion(left), normalizeVersion(right))
}

func (s *GoModScheme) Prerelease(version string) bool {
	normalized := normalizeVersion(version)
	// pseudo-versions are pre-releases of the next patch
	return semver.IsValid(normalized) && semver.Prerelease(normalized) != ""
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
