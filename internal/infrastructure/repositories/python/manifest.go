package python

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const (
	requirementsFile = "requirements.txt"
	pyprojectFile    = "pyproject.toml"
	setupFile        = "setup.py"

	groupInstall = "install"
)

var (
	errNoManifest = errors.New("no requirements.txt, pyproject.toml or setup.py found")

	// name, extras, specifier; environment markers and comments are cut first
	requirementLine = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)\s*(\[[^\]]*\])?\s*(.*)$`)
	exactPin        = regexp.MustCompile(`^===?\s*([0-9][0-9A-Za-z.+-]*)$`)

	// setup.py is read statically: string literals of install_requires only
	installRequires = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)
	stringLiteral   = regexp.MustCompile(`"([^"\n]*)"|'([^'\n]*)'`)
)

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// collector merges declarations of the same project across manifests.
type collector struct {
	byName map[string]*entities.Dependency
}

func (c *collector) add(name, specifier, file, group string, production bool) {
	key := normalizeName(name)
	dependency, seen := c.byName[key]
	if !seen {
		dependency = &entities.Dependency{Name: name, PackageManager: entities.EcosystemPip}
		c.byName[key] = dependency
	}
	if match := exactPin.FindStringSubmatch(specifier); match != nil && !strings.Contains(match[1], "*") {
		dependency.Version = match[1]
	}
	dependency.Production = dependency.Production || production
	dependency.Requirements = append(dependency.Requirements, entities.Requirement{
		Requirement: specifier,
		File:        file,
		Groups:      []string{group},
	})
}

func (c *collector) dependencies() []entities.Dependency {
	result := make([]entities.Dependency, 0, len(c.byName))
	for _, dependency := range c.byName {
		result = append(result, *dependency)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// parseManifests reads every known manifest. setup.py is code, so it is only
// read when allowExternalCode is set.
func parseManifests(files []entities.DependencyFile, allowExternalCode bool) ([]entities.Dependency, error) {
	found, codeOnly := false, false
	deps := &collector{byName: make(map[string]*entities.Dependency)}

	for _, file := range files {
		switch file.Name {
		case requirementsFile:
			found = true
			parseRequirements(deps, file.Content)
		case pyprojectFile:
			found = true
			if err := parsePyproject(deps, file.Content); err != nil {
				return nil, err
			}
		case setupFile:
			if !allowExternalCode {
				codeOnly = true
				continue
			}
			found = true
			parseSetup(deps, file.Content)
		}
	}
	if !found && codeOnly {
		return nil, &entities.ExternalCodeError{Ecosystem: entities.EcosystemPip, File: setupFile}
	}
	if !found {
		return nil, errNoManifest
	}
	return deps.dependencies(), nil
}

func parseSetup(deps *collector, content string) {
	for _, list := range installRequires.FindAllStringSubmatch(content, -1) {
		for _, literal := range stringLiteral.FindAllStringSubmatch(list[1], -1) {
			if name, specifier, ok := splitRequirement(literal[1] + literal[2]); ok {
				deps.add(name, specifier, setupFile, groupInstall, true)
			}
		}
	}
}

// parseRequirements skips options (-r, -e, --index-url), URLs and VCS lines.
func parseRequirements(deps *collector, content string) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		name, specifier, ok := splitRequirement(scanner.Text())
		if ok {
			deps.add(name, specifier, requirementsFile, groupInstall, true)
		}
	}
}

func parsePyproject(deps *collector, content string) error {
	var document pyproject
	if err := toml.Unmarshal([]byte(content), &document); err != nil {
		return fmt.Errorf("failed to parse %s: %w", pyprojectFile, err)
	}

	for _, line := range document.Project.Dependencies {
		if name, specifier, ok := splitRequirement(line); ok {
			deps.add(name, specifier, pyprojectFile, "dependencies", true)
		}
	}
	for extra, lines := range document.Project.OptionalDependencies {
		for _, line := range lines {
			if name, specifier, ok := splitRequirement(line); ok {
				deps.add(name, specifier, pyprojectFile, extra, true)
			}
		}
	}

	poetry := document.Tool.Poetry
	for _, group := range []struct {
		name       string
		entries    map[string]any
		production bool
	}{
		{"dependencies", poetry.Dependencies, true},
		{"dev-dependencies", poetry.DevDependencies, false},
	} {
		for name, spec := range group.entries {
			if strings.EqualFold(name, "python") {
				continue
			}
			if specifier, ok := poetryRequirement(spec); ok {
				deps.add(name, specifier, pyprojectFile, group.name, group.production)
			}
		}
	}
	return nil
}

func splitRequirement(line string) (string, string, bool) {
	if index := strings.Index(line, "#"); index >= 0 {
		line = line[:index]
	}
	if index := strings.Index(line, ";"); index >= 0 {
		line = line[:index]
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "-") || strings.Contains(line, "://") || strings.Contains(line, "@") {
		return "", "", false
	}

	match := requirementLine.FindStringSubmatch(line)
	if match == nil {
		return "", "", false
	}
	return match[1], strings.TrimSpace(match[3]), true
}

func poetryRequirement(spec any) (string, bool) {
	switch typed := spec.(type) {
	case string:
		return typed, true
	case map[string]any:
		for _, local := range []string{"path", "git", "url"} {
			if _, ok := typed[local]; ok {
				return "", false
			}
		}
		version, ok := typed["version"].(string)
		return version, ok
	default:
		return "", false
	}
}
