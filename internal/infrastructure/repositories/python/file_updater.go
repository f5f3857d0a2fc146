package python

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

func updateFiles(dependencies []entities.Dependency, files []entities.DependencyFile) []entities.UpdatedFile {
	contents := make(map[string]string, len(files))
	for _, file := range files {
		contents[file.Name] = file.Content
	}

	for _, dependency := range dependencies {
		for i, requirement := range dependency.Requirements {
			if i >= len(dependency.PreviousRequirements) {
				break
			}
			previous := dependency.PreviousRequirements[i].Requirement
			if previous == requirement.Requirement || previous == "" {
				continue
			}
			content, ok := contents[requirement.File]
			if !ok {
				continue
			}
			contents[requirement.File] = replaceSpecifier(content, dependency.Name, previous, requirement.Requirement)
		}
	}

	var updated []entities.UpdatedFile
	for _, file := range files {
		if contents[file.Name] != file.Content {
			updated = append(updated, entities.UpdatedFile{Name: file.Name, Content: contents[file.Name]})
		}
	}
	return updated
}

// replaceSpecifier covers PEP 508 strings, whether a requirements.txt line or
// a quoted pyproject entry, and Poetry's `name = "spec"` tables.
func replaceSpecifier(content, name, previous, specifier string) string {
	quotedName := namePattern(name)
	quotedPrevious := regexp.QuoteMeta(previous)
	escaped := strings.ReplaceAll(specifier, "$", "$$")

	pep508 := regexp.MustCompile(`(?im)((?:^|["'])\s*` + quotedName + `\s*(?:\[[^\]]*\])?\s*)` + quotedPrevious)
	content = pep508.ReplaceAllString(content, "${1}"+escaped)

	poetry := regexp.MustCompile(`(?im)^(\s*"?` + quotedName + `"?\s*=\s*(?:\{[^}\n]*\bversion\s*=\s*)?")` +
		quotedPrevious + `"`)
	return poetry.ReplaceAllString(content, "${1}"+escaped+`"`)
}

// namePattern matches name under PEP 503 normalisation.
func namePattern(name string) string {
	parts := separatorRun.Split(name, -1)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return strings.Join(parts, `[-_.]+`)
}
