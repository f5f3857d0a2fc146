package golang

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/mod/modfile"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/versioning"
)

const (
	goModFile    = "go.mod"
	requireGroup = "require"
)

var errNoGoMod = errors.New("go.mod not found")

// GoModulesEcosystemRepository is the go_modules bundle. Only go.mod is read
// and written; go.sum is left for `go mod tidy` to regenerate.
type GoModulesEcosystemRepository struct {
	scheme   entities.VersionScheme
	registry *checker.CachingRegistry
}

var _ repositories.EcosystemRepository = (*GoModulesEcosystemRepository)(nil)

// NewGoModulesEcosystemRepository creates the bundle against the module proxy
// configured for go_modules, or proxy.golang.org.
func NewGoModulesEcosystemRepository(settings *entities.Settings) repositories.EcosystemRepository {
	return &GoModulesEcosystemRepository{
		scheme: versioning.NewGoModScheme(entities.EcosystemGoModules),
		registry: checker.NewCachingRegistry(&moduleProxy{
			client:  httpclient.New(),
			baseURL: settings.RegistryURL(entities.EcosystemGoModules, defaultProxyURL),
		}),
	}
}

func (it *GoModulesEcosystemRepository) Name() string { return entities.EcosystemGoModules }

func (it *GoModulesEcosystemRepository) VersionScheme() entities.VersionScheme { return it.scheme }

func (it *GoModulesEcosystemRepository) FileNames() []string { return []string{goModFile, "go.sum"} }

// Parse reads the require directives of go.mod. Requirements replaced by a
// local path are skipped; "// indirect" requirements are transitive.
func (it *GoModulesEcosystemRepository) Parse(
	_ context.Context,
	files []entities.DependencyFile,
	_ entities.PolicyConfig,
) ([]entities.Dependency, error) {
	parsed, err := parseGoMod(files)
	if err != nil {
		return nil, err
	}

	local := make(map[string]bool)
	for _, replace := range parsed.Replace {
		if replace.New.Version == "" {
			local[replace.Old.Path] = true
		}
	}

	dependencies := make([]entities.Dependency, 0, len(parsed.Require))
	for _, require := range parsed.Require {
		if local[require.Mod.Path] {
			continue
		}
		dependency := entities.Dependency{
			Name:           require.Mod.Path,
			Version:        require.Mod.Version,
			PackageManager: entities.EcosystemGoModules,
			Production:     true,
		}
		if !require.Indirect {
			dependency.Requirements = []entities.Requirement{{
				Requirement: require.Mod.Version,
				File:        goModFile,
				Groups:      []string{requireGroup},
			}}
		}
		dependencies = append(dependencies, dependency)
	}
	sort.Slice(dependencies, func(i, j int) bool { return dependencies[i].Name < dependencies[j].Name })
	return dependencies, nil
}

func (it *GoModulesEcosystemRepository) NewChecker(input repositories.CheckerInput) repositories.UpdateChecker {
	installed, _ := it.Parse(context.Background(), input.Files, entities.PolicyConfig{})
	return checker.NewRegistryUpdateChecker(input, checker.Options{
		Scheme:          it.scheme,
		Registry:        it.registry,
		Installed:       installed,
		DefaultStrategy: entities.StrategyBumpVersions,
		Rewritable:      true,
	})
}

func (it *GoModulesEcosystemRepository) UpdatedDependencyFiles(
	dependencies []entities.Dependency,
	files []entities.DependencyFile,
) ([]entities.UpdatedFile, error) {
	parsed, err := parseGoMod(files)
	if err != nil {
		return nil, err
	}

	changed := false
	for _, dependency := range dependencies {
		if dependency.Version == "" || dependency.Version == dependency.PreviousVersion {
			continue
		}
		if err = parsed.AddRequire(dependency.Name, dependency.Version); err != nil {
			return nil, fmt.Errorf("failed to require %s@%s: %w", dependency.Name, dependency.Version, err)
		}
		changed = true
	}
	if !changed {
		return nil, nil
	}

	parsed.Cleanup()
	content, err := parsed.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to format %s: %w", goModFile, err)
	}
	return []entities.UpdatedFile{{Name: goModFile, Content: string(content)}}, nil
}

func parseGoMod(files []entities.DependencyFile) (*modfile.File, error) {
	for _, file := range files {
		if file.Name != goModFile {
			continue
		}
		parsed, err := modfile.Parse(goModFile, []byte(file.Content), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", goModFile, err)
		}
		return parsed, nil
	}
	return nil, errNoGoMod
}
