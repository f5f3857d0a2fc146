package python

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

// PipEcosystemRepository is the pip bundle for requirements.txt,
// pyproject.toml (PEP 621 and Poetry tables) and, when the policy allows
// external code, setup.py.
type PipEcosystemRepository struct {
	scheme            entities.VersionScheme
	registry          *checker.CachingRegistry
	allowExternalCode bool
}

var _ repositories.EcosystemRepository = (*PipEcosystemRepository)(nil)

func NewPipEcosystemRepository(settings *entities.Settings) repositories.EcosystemRepository {
	return &PipEcosystemRepository{
		scheme: versioning.NewPipScheme(entities.EcosystemPip),
		registry: checker.NewCachingRegistry(&pypiRegistry{
			client:  httpclient.New(),
			baseURL: settings.RegistryURL(entities.EcosystemPip, defaultIndexURL),
		}),
	}
}

func (it *PipEcosystemRepository) Name() string { return entities.EcosystemPip }

func (it *PipEcosystemRepository) VersionScheme() entities.VersionScheme { return it.scheme }

func (it *PipEcosystemRepository) FileNames() []string {
	return []string{requirementsFile, pyprojectFile, setupFile}
}

func (it *PipEcosystemRepository) Parse(
	_ context.Context,
	files []entities.DependencyFile,
	policy entities.PolicyConfig,
) ([]entities.Dependency, error) {
	it.allowExternalCode = !policy.RejectsExternalCode()
	return parseManifests(files, it.allowExternalCode)
}

// NewChecker keeps ranges that already admit the target; only pins move.
func (it *PipEcosystemRepository) NewChecker(input repositories.CheckerInput) repositories.UpdateChecker {
	installed, _ := parseManifests(input.Files, it.allowExternalCode)
	return checker.NewRegistryUpdateChecker(input, checker.Options{
		Scheme:          it.scheme,
		Registry:        it.registry,
		Installed:       installed,
		DefaultStrategy: entities.StrategyBumpVersionsIfNecessary,
		Rewritable:      true,
	})
}

func (it *PipEcosystemRepository) UpdatedDependencyFiles(
	dependencies []entities.Dependency,
	files []entities.DependencyFile,
) ([]entities.UpdatedFile, error) {
	return updateFiles(dependencies, files), nil
}
