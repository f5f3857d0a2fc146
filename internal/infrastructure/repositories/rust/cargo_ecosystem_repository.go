package rust

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

// CargoEcosystemRepository is the cargo bundle over Cargo.toml and Cargo.lock.
type CargoEcosystemRepository struct {
	scheme   entities.VersionScheme
	registry *checker.CachingRegistry
}

var _ repositories.EcosystemRepository = (*CargoEcosystemRepository)(nil)

func NewCargoEcosystemRepository(settings *entities.Settings) repositories.EcosystemRepository {
	return &CargoEcosystemRepository{
		scheme: versioning.NewCargoScheme(entities.EcosystemCargo),
		registry: checker.NewCachingRegistry(&cratesRegistry{
			client:  httpclient.New(),
			baseURL: settings.RegistryURL(entities.EcosystemCargo, defaultRegistryURL),
		}),
	}
}

func (it *CargoEcosystemRepository) Name() string { return entities.EcosystemCargo }

func (it *CargoEcosystemRepository) VersionScheme() entities.VersionScheme { return it.scheme }

func (it *CargoEcosystemRepository) FileNames() []string { return []string{manifestFile, lockfileFile} }

func (it *CargoEcosystemRepository) Parse(
	_ context.Context,
	files []entities.DependencyFile,
	_ entities.PolicyConfig,
) ([]entities.Dependency, error) {
	return parseCargo(files)
}

func (it *CargoEcosystemRepository) NewChecker(input repositories.CheckerInput) repositories.UpdateChecker {
	installed, _ := parseCargo(input.Files)
	return checker.NewRegistryUpdateChecker(input, checker.Options{
		Scheme:          it.scheme,
		Registry:        it.registry,
		Installed:       installed,
		DefaultStrategy: entities.StrategyBumpVersions,
		Rewritable:      true,
	})
}

func (it *CargoEcosystemRepository) UpdatedDependencyFiles(
	dependencies []entities.Dependency,
	files []entities.DependencyFile,
) ([]entities.UpdatedFile, error) {
	return updateFiles(dependencies, files)
}
