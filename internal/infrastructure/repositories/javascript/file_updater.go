package javascript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

var (
	integrityWithComma   = regexp.MustCompile(`"integrity"\s*:\s*"[^"]*",\s*`)
	integrityAfterComma  = regexp.MustCompile(`,\s*"integrity"\s*:\s*"[^"]*"`)
	errLockEntryNotFound = fmt.Errorf("%s entry not found", lockfileFile)
)

// updateFiles rewrites package.json requirements and the matching
// package-lock.json entries. Integrity hashes of moved packages are dropped so
// the next `npm install` recomputes them.
func updateFiles(
	dependencies []entities.Dependency,
	files []entities.DependencyFile,
	lockVersion int,
) ([]entities.UpdatedFile, error) {
	manifest, ok := findFile(files, manifestFile)
	if !ok {
		return nil, errNoManifest
	}
	lock, hasLock := findFile(files, lockfileFile)

	manifestContent := manifest.Content
	lockContent := lock.Content
	for _, dependency := range dependencies {
		if dependency.RequirementsChanged() {
			for i, requirement := range dependency.Requirements {
				if requirement.File != manifestFile || i >= len(dependency.PreviousRequirements) {
					continue
				}
				previous := dependency.PreviousRequirements[i].Requirement
				manifestContent = replaceRequirement(manifestContent, dependency.Name, previous, requirement.Requirement)
				if hasLock {
					lockContent = replaceRootRequirement(lockContent, dependency.Name, previous, requirement.Requirement)
				}
			}
		}

		if !hasLock || lockVersion < 2 || dependency.Version == dependency.PreviousVersion ||
			!dependency.HasVersion() {
			continue
		}
		var err error
		if lockContent, err = moveLockedPackage(lockContent, dependency); err != nil {
			return nil, err
		}
	}

	var updated []entities.UpdatedFile
	if manifestContent != manifest.Content {
		updated = append(updated, entities.UpdatedFile{Name: manifestFile, Content: manifestContent})
	}
	if hasLock && lockContent != lock.Content {
		updated = append(updated, entities.UpdatedFile{Name: lockfileFile, Content: lockContent})
	}
	return updated, nil
}

func replaceRequirement(content, name, previous, requirement string) string {
	pattern := regexp.MustCompile(`("` + regexp.QuoteMeta(name) + `"\s*:\s*")` + regexp.QuoteMeta(previous) + `"`)
	return pattern.ReplaceAllString(content, "${1}"+escapeReplacement(requirement)+`"`)
}

// replaceRootRequirement updates the copy of the manifest kept under the
// lockfile's root package.
func replaceRootRequirement(content, name, previous, requirement string) string {
	start, end, ok := objectSpan(content, "")
	if !ok {
		return content
	}
	return content[:start] + replaceRequirement(content[start:end], name, previous, requirement) + content[end:]
}

func moveLockedPackage(content string, dependency entities.Dependency) (string, error) {
	start, end, ok := objectSpan(content, nodeModules+dependency.Name)
	if !ok {
		return "", fmt.Errorf("%s: %w", dependency.Name, errLockEntryNotFound)
	}

	entry := content[start:end]
	entry = strings.Replace(entry,
		`"version": "`+dependency.PreviousVersion+`"`,
		`"version": "`+dependency.Version+`"`, 1)
	entry = strings.Replace(entry,
		"-"+dependency.PreviousVersion+".tgz",
		"-"+dependency.Version+".tgz", 1)
	if integrityWithComma.MatchString(entry) {
		entry = integrityWithComma.ReplaceAllString(entry, "")
	} else {
		entry = integrityAfterComma.ReplaceAllString(entry, "")
	}
	return content[:start] + entry + content[end:], nil
}

// objectSpan locates the object value of the first "key": { ... } member and
// returns its bounds, braces included.
func objectSpan(content, key string) (int, int, bool) {
	pattern := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*\{`)
	location := pattern.FindStringIndex(content)
	if location == nil {
		return 0, 0, false
	}

	start := location[1] - 1
	depth := 0
	inString := false
	for i := start; i < len(content); i++ {
		switch char := content[i]; {
		case inString && char == '\\':
			i++
		case char == '"':
			inString = !inString
		case inString:
		case char == '{':
			depth++
		case char == '}':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}

func escapeReplacement(value string) string {
	return strings.ReplaceAll(value, "$", "$$")
}
