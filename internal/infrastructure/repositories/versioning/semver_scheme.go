package versioning

import (
	"errors"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

var errEmptyRequirement = errors.New("requirement is empty")

// translateFunc rewrites an ecosystem-specific requirement into the
// Masterminds constraint syntax.
type translateFunc func(requirement string) (string, error)

// SemverScheme is the grammar shared by every semver-flavoured ecosystem.
// Ecosystems with their own range operators plug a translateFunc in front of
// the Masterminds constraint parser.
type SemverScheme struct {
	ecosystem string
	translate translateFunc
}

// NewSemverScheme returns a plain semver grammar for ecosystem.
func NewSemverScheme(ecosystem string) *SemverScheme {
	return &SemverScheme{ecosystem: ecosystem, translate: identity}
}

func (s *SemverScheme) Correct(version string) bool {
	_, err := masterminds.NewVersion(strings.TrimSpace(version))
	return err == nil
}

func (s *SemverScheme) Compare(left, right string) int {
	l, lErr := masterminds.NewVersion(strings.TrimSpace(left))
	r, rErr := masterminds.NewVersion(strings.TrimSpace(right))
	if lErr != nil || rErr != nil {
		return strings.Compare(left, right)
	}
	return l.Compare(r)
}

func (s *SemverScheme) Prerelease(version string) bool {
	parsed, err := masterminds.NewVersion(strings.TrimSpace(version))
	return err == nil && parsed.Prerelease() != ""
}

func (s *SemverScheme) ParseRequirement(requirement string) (entities.VersionRequirement, error) {
	trimmed := strings.TrimSpace(requirement)
	if trimmed == "" {
		return nil, &entities.RequirementParseError{
			Ecosystem: s.ecosystem, Requirement: requirement, Err: errEmptyRequirement,
		}
	}

	translated, err := s.translate(trimmed)
	if err != nil {
		return nil, &entities.RequirementParseError{Ecosystem: s.ecosystem, Requirement: requirement, Err: err}
	}

	constraints, err := masterminds.NewConstraint(translated)
	if err != nil {
		return nil, &entities.RequirementParseError{Ecosystem: s.ecosystem, Requirement: requirement, Err: err}
	}
	return &constraintRequirement{raw: trimmed, constraints: constraints}, nil
}

type constraintRequirement struct {
	raw         string
	constraints *masterminds.Constraints
}

func (r *constraintRequirement) SatisfiedBy(version string) bool {
	parsed, err := masterminds.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return false
	}
	return r.constraints.Check(parsed)
}

func (r *constraintRequirement) String() string { return r.raw }

func identity(requirement string) (string, error) { return requirement, nil }
