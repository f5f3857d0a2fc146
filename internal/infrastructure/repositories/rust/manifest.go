package rust

import (
	"errors"
	"fmt"
	"sort"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const (
	manifestFile = "Cargo.toml"
	lockfileFile = "Cargo.lock"
)

var errNoManifest = errors.New("Cargo.toml not found")

//nolint:gochecknoglobals // static list
var dependencyTables = []string{"dependencies", "dev-dependencies", "build-dependencies"}

type cargoLock struct {
	Packages []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
		Source  string `toml:"source"`
	} `toml:"package"`
}

func parseCargo(files []entities.DependencyFile) ([]entities.Dependency, error) {
	manifest, ok := findFile(files, manifestFile)
	if !ok {
		return nil, errNoManifest
	}

	var tables map[string]any
	if err := toml.Unmarshal([]byte(manifest.Content), &tables); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestFile, err)
	}

	locked := make(map[string]string)
	if lock, found := findFile(files, lockfileFile); found {
		var parsed cargoLock
		if err := toml.Unmarshal([]byte(lock.Content), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", lockfileFile, err)
		}
		for _, pkg := range parsed.Packages {
			// path and git packages carry no registry source
			if _, seen := locked[pkg.Name]; !seen && pkg.Source != "" {
				locked[pkg.Name] = pkg.Version
			}
		}
	}

	byName := make(map[string]*entities.Dependency)
	for _, table := range dependencyTables {
		declared, _ := tables[table].(map[string]any)
		for name, spec := range declared {
			requirement, registry := cargoRequirement(spec)
			if !registry {
				continue
			}
			dependency, seen := byName[name]
			if !seen {
				dependency = &entities.Dependency{
					Name:           name,
					Version:        locked[name],
					PackageManager: entities.EcosystemCargo,
				}
				byName[name] = dependency
			}
			dependency.Production = dependency.Production || table != "dev-dependencies"
			dependency.Requirements = append(dependency.Requirements, entities.Requirement{
				Requirement: requirement,
				File:        manifestFile,
				Groups:      []string{table},
			})
		}
	}

	for name, version := range locked {
		if _, declared := byName[name]; !declared {
			byName[name] = &entities.Dependency{
				Name:           name,
				Version:        version,
				PackageManager: entities.EcosystemCargo,
				Production:     true,
			}
		}
	}

	dependencies := make([]entities.Dependency, 0, len(byName))
	for _, dependency := range byName {
		dependencies = append(dependencies, *dependency)
	}
	sort.Slice(dependencies, func(i, j int) bool { return dependencies[i].Name < dependencies[j].Name })
	return dependencies, nil
}

// cargoRequirement reads `name = "1.0"` and `name = { version = "1.0" }`.
// Path and git dependencies are not registry dependencies.
func cargoRequirement(spec any) (string, bool) {
	switch typed := spec.(type) {
	case string:
		return typed, true
	case map[string]any:
		if _, local := typed["path"]; local {
			return "", false
		}
		if _, git := typed["git"]; git {
			return "", false
		}
		version, ok := typed["version"].(string)
		return version, ok
	default:
		return "", false
	}
}

func findFile(files []entities.DependencyFile, name string) (entities.DependencyFile, bool) {
	for _, file := range files {
		if file.Name == name {
			return file, true
		}
	}
	return entities.DependencyFile{}, false
}
