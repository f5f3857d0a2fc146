package repositories

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// DependencyParser turns fetched manifests into a normalised dependency list.
type DependencyParser interface {
	Parse(ctx context.Context, files []entities.DependencyFile, policy entities.PolicyConfig) ([]entities.Dependency, error)
}

// FileUpdater materialises updated dependencies into rewritten files.
type FileUpdater interface {
	UpdatedDependencyFiles(
		dependencies []entities.Dependency,
		files []entities.DependencyFile,
	) ([]entities.UpdatedFile, error)
}

// CheckerInput is everything a checker needs for one dependency.
type CheckerInput struct {
	Dependency                 entities.Dependency
	Files                      []entities.DependencyFile
	IgnoredVersions            []string
	Advisories                 []entities.SecurityAdvisory
	RequirementsUpdateStrategy string
}

// UpdateCheckerFactory builds a fresh checker per dependency.
type UpdateCheckerFactory interface {
	NewChecker(input CheckerInput) UpdateChecker
}

// EcosystemRepository is the capability bundle of one ecosystem, resolved once
// per policy entry from the ecosystem registry.
type EcosystemRepository interface {
	DependencyParser
	UpdateCheckerFactory
	FileUpdater

	// Name returns the canonical ecosystem token (e.g. "npm_and_yarn").
	Name() string

	// VersionScheme returns the ecosystem's version grammar.
	VersionScheme() entities.VersionScheme

	// FileNames lists the manifests and lockfiles to fetch.
	FileNames() []string
}
