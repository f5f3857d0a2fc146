package javascript

import (
	"context"
	"sync"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

// NpmEcosystemRepository is the npm_and_yarn bundle: package.json with an
// optional package-lock.json, checked against an npm registry.
type NpmEcosystemRepository struct {
	scheme   entities.VersionScheme
	registry *checker.CachingRegistry

	mu      sync.Mutex
	project *project
}

var _ repositories.EcosystemRepository = (*NpmEcosystemRepository)(nil)

// NewNpmEcosystemRepository creates the bundle, honouring a registry override
// for npm_and_yarn in settings.
func NewNpmEcosystemRepository(settings *entities.Settings) repositories.EcosystemRepository {
	return newNpmEcosystemRepository(httpclient.New(), settings.RegistryURL(entities.EcosystemNpmAndYarn, defaultRegistryURL))
}

func newNpmEcosystemRepository(client *httpclient.Client, baseURL string) *NpmEcosystemRepository {
	return &NpmEcosystemRepository{
		scheme:   versioning.NewSemverScheme(entities.EcosystemNpmAndYarn),
		registry: checker.NewCachingRegistry(&npmRegistry{client: client, baseURL: baseURL}),
	}
}

func (it *NpmEcosystemRepository) Name() string { return entities.EcosystemNpmAndYarn }

func (it *NpmEcosystemRepository) VersionScheme() entities.VersionScheme { return it.scheme }

func (it *NpmEcosystemRepository) FileNames() []string {
	return []string{manifestFile, lockfileFile}
}

func (it *NpmEcosystemRepository) Parse(
	_ context.Context,
	files []entities.DependencyFile,
	_ entities.PolicyConfig,
) ([]entities.Dependency, error) {
	parsed, err := parseProject(files)
	if err != nil {
		return nil, err
	}
	it.mu.Lock()
	it.project = parsed
	it.mu.Unlock()
	return parsed.dependencies, nil
}

func (it *NpmEcosystemRepository) NewChecker(input repositories.CheckerInput) repositories.UpdateChecker {
	parsed := it.parsed(input.Files)
	return checker.NewRegistryUpdateChecker(input, checker.Options{
		Scheme:          it.scheme,
		Registry:        it.registry,
		Installed:       parsed.dependencies,
		Dependents:      parsed.dependents,
		DefaultStrategy: entities.StrategyBumpVersions,
		Rewritable:      true,
	})
}

func (it *NpmEcosystemRepository) UpdatedDependencyFiles(
	dependencies []entities.Dependency,
	files []entities.DependencyFile,
) ([]entities.UpdatedFile, error) {
	return updateFiles(dependencies, files, it.parsed(files).lockVersion)
}

// parsed returns the project of the last Parse, parsing files when the bundle
// was not used to parse them.
func (it *NpmEcosystemRepository) parsed(files []entities.DependencyFile) *project {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.project == nil {
		parsed, err := parseProject(files)
		if err != nil {
			return &project{}
		}
		it.project = parsed
	}
	return it.project
}
