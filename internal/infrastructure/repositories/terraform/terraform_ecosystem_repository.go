package terraform

import (
	"context"
	"errors"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

var errNoConfiguration = errors.New("no Terraform configuration found")

// TerraformEcosystemRepository is the terraform bundle: provider
// requirements, registry modules and Git modules pinned with ?ref=.
type TerraformEcosystemRepository struct {
	scheme   entities.VersionScheme
	registry *checker.CachingRegistry
}

var _ repositories.EcosystemRepository = (*TerraformEcosystemRepository)(nil)

func NewTerraformEcosystemRepository(settings *entities.Settings) repositories.EcosystemRepository {
	return newTerraformEcosystemRepository(
		httpclient.New(),
		settings.RegistryURL(entities.EcosystemTerraform, defaultRegistryURL),
		remoteTagLister{},
	)
}

func newTerraformEcosystemRepository(
	client *httpclient.Client,
	baseURL string,
	tags tagLister,
) *TerraformEcosystemRepository {
	return &TerraformEcosystemRepository{
		scheme:   versioning.NewBundlerScheme(entities.EcosystemTerraform),
		registry: checker.NewCachingRegistry(&terraformRegistry{client: client, baseURL: baseURL, tags: tags}),
	}
}

func (it *TerraformEcosystemRepository) Name() string { return entities.EcosystemTerraform }

func (it *TerraformEcosystemRepository) VersionScheme() entities.VersionScheme { return it.scheme }

// FileNames lists the conventional file names; configuration split across
// other names is not fetched.
func (it *TerraformEcosystemRepository) FileNames() []string {
	return []string{"main.tf", "versions.tf", "providers.tf", "terraform.tf", "modules.tf", lockFile}
}

func (it *TerraformEcosystemRepository) Parse(
	_ context.Context,
	files []entities.DependencyFile,
	_ entities.PolicyConfig,
) ([]entities.Dependency, error) {
	for _, file := range files {
		if file.Name != lockFile {
			return scanFiles(files), nil
		}
	}
	return nil, errNoConfiguration
}

func (it *TerraformEcosystemRepository) NewChecker(input repositories.CheckerInput) repositories.UpdateChecker {
	return checker.NewRegistryUpdateChecker(input, checker.Options{
		Scheme:          it.scheme,
		Registry:        it.registry,
		Installed:       scanFiles(input.Files),
		DefaultStrategy: entities.StrategyBumpVersions,
		Rewritable:      true,
	})
}

func (it *TerraformEcosystemRepository) UpdatedDependencyFiles(
	dependencies []entities.Dependency,
	files []entities.DependencyFile,
) ([]entities.UpdatedFile, error) {
	return updateFiles(dependencies, files)
}
