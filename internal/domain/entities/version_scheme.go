package entities

// VersionScheme is an ecosystem's version grammar.
type VersionScheme interface {
	// Correct reports whether version parses under the grammar.
	Correct(version string) bool

	// Compare returns -1, 0 or 1. Both versions must be Correct.
	Compare(left, right string) int

	// Prerelease reports whether a correct version is a pre-release.
	Prerelease(version string) bool

	// ParseRequirement parses a version-range string. A malformed range
	// returns a *RequirementParseError.
	ParseRequirement(requirement string) (VersionRequirement, error)
}

// VersionRequirement is a parsed version range.
type VersionRequirement interface {
	SatisfiedBy(version string) bool
	String() string
}

// VersionSchemeLookup resolves the version grammar for a canonical ecosystem.
type VersionSchemeLookup interface {
	SchemeFor(ecosystem string) (VersionScheme, error)
}
