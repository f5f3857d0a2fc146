package terraform

import (
	"fmt"
	"regexp"
	"strings"
)

const publicRegistryHost = "registry.terraform.io/"

var (
	refParameter     = regexp.MustCompile(`\?ref=([^&\s"]+)`)
	refParameterOnly = regexp.MustCompile(`\?ref=[^&\s"]+`)
)

// isGitModule reports module sources fetched from a Git host.
func isGitModule(source string) bool {
	return strings.HasPrefix(source, "git::") ||
		strings.HasPrefix(source, "git@") ||
		strings.Contains(source, "github.com") ||
		strings.Contains(source, "gitlab.com") ||
		strings.Contains(source, "bitbucket.org") ||
		strings.Contains(source, "dev.azure.com") ||
		strings.Contains(source, "_git/")
}

// gitRef extracts the tag a Git module source is pinned to.
func gitRef(source string) string {
	if matches := refParameter.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func withoutRef(source string) string {
	return refParameterOnly.ReplaceAllString(source, "")
}

// withRef pins source to ref, replacing any existing ref.
func withRef(source, ref string) string {
	clean := withoutRef(source)
	if strings.Contains(clean, "?") {
		return fmt.Sprintf("%s&ref=%s", clean, ref)
	}
	return fmt.Sprintf("%s?ref=%s", clean, ref)
}

// cloneURL turns a module source into something a Git remote accepts: no
// "git::" forcing prefix, no query and no "//subdir" suffix.
func cloneURL(source string) string {
	source = strings.TrimPrefix(source, "git::")
	if index := strings.Index(source, "?"); index != -1 {
		source = source[:index]
	}
	scheme := ""
	if index := strings.Index(source, "://"); index != -1 {
		scheme, source = source[:index+3], source[index+3:]
	}
	if index := strings.Index(source, "//"); index != -1 {
		source = source[:index]
	}
	if scheme == "" && !strings.HasPrefix(source, "git@") {
		scheme = "https://"
	}
	return scheme + source
}

// registryAddress drops the public registry hostname from provider and
// module addresses.
func registryAddress(source string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(source)), publicRegistryHost)
}
