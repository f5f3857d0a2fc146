package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	domainRepos "github.com/rios0rios0/updatewarden/internal/domain/repositories"
	advRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/advisories"
	ghRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/gitlab"
	goRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/golang"
	jsRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/javascript"
	localRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/local"
	metricsRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/metrics"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/policy"
	pyRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/python"
	rsRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/rust"
	tfRepo "github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/terraform"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with all provider factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.Register("github", ghRepo.NewGitHubProviderRepository)
		reg.Register("gitlab", glRepo.NewGitLabProviderRepository)
		reg.Register("local", localRepo.NewLocalProviderRepository)
		return reg
	}); err != nil {
		return err
	}

	// Register ecosystem registry with all bundle factories
	if err := container.Provide(func() *EcosystemRegistry {
		reg := NewEcosystemRegistry()
		reg.Register(entities.EcosystemNpmAndYarn, jsRepo.NewNpmEcosystemRepository)
		reg.Register(entities.EcosystemGoModules, goRepo.NewGoModulesEcosystemRepository)
		reg.Register(entities.EcosystemCargo, rsRepo.NewCargoEcosystemRepository)
		reg.Register(entities.EcosystemPip, pyRepo.NewPipEcosystemRepository)
		reg.Register(entities.EcosystemTerraform, tfRepo.NewTerraformEcosystemRepository)
		return reg
	}); err != nil {
		return err
	}

	constructors := []interface{}{
		func() entities.VersionSchemeLookup { return versioning.NewRegistry() },
		policy.NewValidatorRepository,
		advRepo.NewFileAdvisoryRepository,
		advRepo.NewGitHubAdvisoryFeedRepository,
		advRepo.NewCombinedAdvisoryRepository,
		metricsRepo.NewPrometheusMetricsRepository,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *advRepo.CombinedAdvisoryRepository) domainRepos.AdvisoryRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *advRepo.GitHubAdvisoryFeedRepository) domainRepos.AdvisoryFeedRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *advRepo.FileAdvisoryRepository) domainRepos.AdvisoryStoreRepository {
		return impl
	}); err != nil {
		return err
	}
	return container.Provide(func(impl *metricsRepo.PrometheusMetricsRepository) domainRepos.MetricsRepository {
		return impl
	})
}
