package rust

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

var checksumLine = regexp.MustCompile(`(?m)^checksum = "[^"]*"\n?`)

func updateFiles(dependencies []entities.Dependency, files []entities.DependencyFile) ([]entities.UpdatedFile, error) {
	manifest, ok := findFile(files, manifestFile)
	if !ok {
		return nil, errNoManifest
	}
	lock, hasLock := findFile(files, lockfileFile)

	manifestContent := manifest.Content
	lockContent := lock.Content
	for _, dependency := range dependencies {
		for i, requirement := range dependency.Requirements {
			if i >= len(dependency.PreviousRequirements) {
				break
			}
			previous := dependency.PreviousRequirements[i].Requirement
			if previous != requirement.Requirement {
				manifestContent = replaceRequirement(manifestContent, dependency.Name, previous, requirement.Requirement)
			}
		}
		if hasLock && dependency.HasVersion() && dependency.Version != dependency.PreviousVersion {
			lockContent = moveLockedPackage(lockContent, dependency)
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

// replaceRequirement handles the inline forms and the
// [dependencies.<name>] table form.
func replaceRequirement(content, name, previous, requirement string) string {
	quotedName := regexp.QuoteMeta(name)
	quotedPrevious := regexp.QuoteMeta(previous)
	replacement := "${1}" + strings.ReplaceAll(requirement, "$", "$$") + `"`

	inline := regexp.MustCompile(`(?m)^(\s*"?` + quotedName + `"?\s*=\s*")` + quotedPrevious + `"`)
	table := regexp.MustCompile(`(?m)^(\s*"?` + quotedName + `"?\s*=\s*\{[^}\n]*\bversion\s*=\s*")` + quotedPrevious + `"`)
	rewritten := table.ReplaceAllString(inline.ReplaceAllString(content, replacement), replacement)

	header := regexp.MustCompile(`(?m)^\[[a-z-]*dependencies\.` + quotedName + `\]\s*$`)
	for _, location := range header.FindAllStringIndex(rewritten, -1) {
		end := len(rewritten)
		if next := strings.Index(rewritten[location[1]:], "\n["); next >= 0 {
			end = location[1] + next
		}
		section := regexp.MustCompile(`(?m)^(\s*version\s*=\s*")` + quotedPrevious + `"`).
			ReplaceAllString(rewritten[location[1]:end], replacement)
		rewritten = rewritten[:location[1]] + section + rewritten[end:]
	}
	return rewritten
}

// moveLockedPackage bumps the [[package]] entry and drops its checksum;
// cargo refills it on the next build.
func moveLockedPackage(content string, dependency entities.Dependency) string {
	entry := regexp.MustCompile(`(?m)^name = "` + regexp.QuoteMeta(dependency.Name) + `"\nversion = "` +
		regexp.QuoteMeta(dependency.PreviousVersion) + `"\n`)
	location := entry.FindStringIndex(content)
	if location == nil {
		return content
	}

	end := len(content)
	if next := strings.Index(content[location[1]:], "\n[[package]]"); next >= 0 {
		end = location[1] + next
	}
	block := `name = "` + dependency.Name + `"` + "\n" + `version = "` + dependency.Version + `"` + "\n" +
		checksumLine.ReplaceAllString(content[location[1]:end], "")
	return content[:location[0]] + block + content[end:]
}
