package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPolicyFileNotFound is returned by providers when no policy file exists.
	ErrPolicyFileNotFound = errors.New(
		"repo must contain either a .github/dependabot.yml or a .github/dependabot.yaml file",
	)

	// ErrMissingRepository is returned when no owner/repo argument is given.
	ErrMissingRepository = errors.New("a repository in the owner/repo form is required")

	// ErrUnknownProvider is returned for provider names without an implementation.
	ErrUnknownProvider = errors.New("unknown provider")
)

// ConfigUnparseableError reports a policy document that is not valid YAML.
type ConfigUnparseableError struct {
	Reason string
}

func (e *ConfigUnparseableError) Error() string {
	return "policy file is unparseable: " + e.Reason
}

// Violation is a single validation failure with a JSON pointer location.
type Violation struct {
	Pointer string // e.g. "#/updates/2/ignore/0/versions"
	Message string
}

// ConfigInvalidError carries every violation found in one validation stage.
type ConfigInvalidError struct {
	Violations []Violation
}

func (e *ConfigInvalidError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		messages = append(messages, violation.Message)
	}
	return strings.Join(messages, "\n")
}

// RequirementParseError is returned by VersionScheme.ParseRequirement.
type RequirementParseError struct {
	Ecosystem   string
	Requirement string
	Err         error
}

func (e *RequirementParseError) Error() string {
	return fmt.Sprintf("invalid %s version requirement %q: %v", e.Ecosystem, e.Requirement, e.Err)
}

func (e *RequirementParseError) Unwrap() error { return e.Err }

// UnknownEcosystemError is returned when no handler is registered for an
// ecosystem. It is fatal: skipping would hide a gap in the advisory feed or
// in the policy coverage.
type UnknownEcosystemError struct {
	Ecosystem string
}

func (e *UnknownEcosystemError) Error() string {
	return fmt.Sprintf("no handler registered for ecosystem %q", e.Ecosystem)
}

// ExternalCodeError is returned when the only manifests of a directory
// declare dependencies in code and the policy does not allow reading it.
type ExternalCodeError struct {
	Ecosystem string
	File      string
}

func (e *ExternalCodeError) Error() string {
	return fmt.Sprintf("[%s] dependencies in %s are declared by code; "+
		"set insecure-external-code-execution: allow to read them", e.Ecosystem, e.File)
}
