package javascript

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const (
	manifestFile = "package.json"
	lockfileFile = "package-lock.json"
	nodeModules  = "node_modules/"
)

var errNoManifest = errors.New("package.json not found")

// dependencyGroups are read in this order; devDependencies are not production.
//
//nolint:gochecknoglobals // static list
var dependencyGroups = []string{"dependencies", "devDependencies", "optionalDependencies"}

type lockedPackage struct {
	Version          string            `json:"version"`
	Dev              bool              `json:"dev"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

type lockfile struct {
	LockfileVersion int                      `json:"lockfileVersion"`
	Packages        map[string]lockedPackage `json:"packages"`
	Dependencies    map[string]lockedPackage `json:"dependencies"`
}

// installed returns the hoisted packages of the lockfile by name. Version 1
// lockfiles only list "dependencies"; later ones list "packages".
func (l lockfile) installed() map[string]lockedPackage {
	result := make(map[string]lockedPackage)
	for path, locked := range l.Packages {
		name, ok := strings.CutPrefix(path, nodeModules)
		if !ok || strings.Contains(name, "/"+nodeModules) {
			continue
		}
		result[name] = locked
	}
	if len(result) == 0 {
		for name, locked := range l.Dependencies {
			result[name] = locked
		}
	}
	return result
}

// project is the parsed view of one package.json and its lockfile.
type project struct {
	dependencies []entities.Dependency
	dependents   map[string]map[string]string
	lockVersion  int
}

func parseProject(files []entities.DependencyFile) (*project, error) {
	manifest, ok := findFile(files, manifestFile)
	if !ok {
		return nil, errNoManifest
	}

	var groups map[string]json.RawMessage
	if err := json.Unmarshal([]byte(manifest.Content), &groups); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestFile, err)
	}

	var lock lockfile
	if locked, found := findFile(files, lockfileFile); found {
		if err := json.Unmarshal([]byte(locked.Content), &lock); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", lockfileFile, err)
		}
	}
	installed := lock.installed()

	byName := make(map[string]*entities.Dependency)
	for _, group := range dependencyGroups {
		var declared map[string]string
		if raw, exists := groups[group]; exists {
			if err := json.Unmarshal(raw, &declared); err != nil {
				return nil, fmt.Errorf("failed to parse %s.%s: %w", manifestFile, group, err)
			}
		}
		for name, requirement := range declared {
			if !registryRequirement(requirement) {
				continue
			}
			dependency, seen := byName[name]
			if !seen {
				dependency = &entities.Dependency{
					Name:           name,
					Version:        installed[name].Version,
					PackageManager: entities.EcosystemNpmAndYarn,
				}
				byName[name] = dependency
			}
			dependency.Production = dependency.Production || group != "devDependencies"
			dependency.Requirements = append(dependency.Requirements, entities.Requirement{
				Requirement: requirement,
				File:        manifestFile,
				Groups:      []string{group},
			})
		}
	}

	dependents := make(map[string]map[string]string)
	for name, locked := range installed {
		if len(locked.PeerDependencies) > 0 {
			dependents[name] = locked.PeerDependencies
		}
		if _, declared := byName[name]; declared || locked.Version == "" {
			continue
		}
		byName[name] = &entities.Dependency{
			Name:           name,
			Version:        locked.Version,
			PackageManager: entities.EcosystemNpmAndYarn,
			Production:     !locked.Dev,
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &project{dependents: dependents, lockVersion: lock.LockfileVersion}
	for _, name := range names {
		result.dependencies = append(result.dependencies, *byName[name])
	}
	return result, nil
}

// registryRequirement filters out git, path, URL, alias and workspace specs.
func registryRequirement(requirement string) bool {
	requirement = strings.TrimSpace(requirement)
	for _, prefix := range []string{"git", "http:", "https:", "file:", "link:", "workspace:", "npm:", "portal:"} {
		if strings.HasPrefix(requirement, prefix) {
			return false
		}
	}
	return !strings.Contains(requirement, "/")
}

func findFile(files []entities.DependencyFile, name string) (entities.DependencyFile, bool) {
	for _, file := range files {
		if file.Name == name {
			return file, true
		}
	}
	return entities.DependencyFile{}, false
}
