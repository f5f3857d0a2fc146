package entities

import "strings"

// SecurityAdvisory describes the vulnerable and safe ranges of one package.
type SecurityAdvisory struct {
	DependencyName     string   `json:"dependency-name"`
	PackageManager     string   `json:"package-manager"`
	VulnerableVersions []string `json:"affected-versions"`
	SafeVersions       []string `json:"patched-versions"`
	UnaffectedVersions []string `json:"unaffected-versions,omitempty"`
}

// Vulnerable reports whether version lies in a vulnerable range and in no
// safe range, patched and unaffected ranges both counting as safe.
// Unparseable ranges are skipped.
func (a SecurityAdvisory) Vulnerable(version string, scheme VersionScheme) bool {
	if !scheme.Correct(version) {
		return false
	}
	if !anyRangeContains(a.VulnerableVersions, version, scheme) {
		return false
	}
	return !anyRangeContains(a.SafeVersions, version, scheme) &&
		!anyRangeContains(a.UnaffectedVersions, version, scheme)
}

// FixedBy reports whether version is outside every vulnerable range or inside
// a safe one.
func (a SecurityAdvisory) FixedBy(version string, scheme VersionScheme) bool {
	return scheme.Correct(version) && !a.Vulnerable(version, scheme)
}

func anyRangeContains(ranges []string, version string, scheme VersionScheme) bool {
	for _, raw := range ranges {
		requirement, err := scheme.ParseRequirement(raw)
		if err != nil {
			continue
		}
		if requirement.SatisfiedBy(version) {
			return true
		}
	}
	return false
}

// SecurityAdvisoryIndex groups advisories by lower-cased dependency name.
type SecurityAdvisoryIndex struct {
	byName map[string][]SecurityAdvisory
}

// NewSecurityAdvisoryIndex indexes the given advisories.
func NewSecurityAdvisoryIndex(advisories []SecurityAdvisory) *SecurityAdvisoryIndex {
	index := &SecurityAdvisoryIndex{byName: make(map[string][]SecurityAdvisory)}
	for _, advisory := range advisories {
		key := strings.ToLower(advisory.DependencyName)
		index.byName[key] = append(index.byName[key], advisory)
	}
	return index
}

// AdvisoriesFor returns the advisories whose name equals dependencyName,
// ignoring case. Names are never treated as globs.
func (i *SecurityAdvisoryIndex) AdvisoriesFor(dependencyName string) []SecurityAdvisory {
	if i == nil {
		return nil
	}
	return i.byName[strings.ToLower(dependencyName)]
}

// Len returns the number of indexed advisories.
func (i *SecurityAdvisoryIndex) Len() int {
	if i == nil {
		return 0
	}
	total := 0
	for _, advisories := range i.byName {
		total += len(advisories)
	}
	return total
}

// IsVulnerable reports whether the dependency's current version is affected by
// any of the advisories. Without advisories, without a version, or with a
// version the scheme cannot parse the answer is false.
func IsVulnerable(advisories []SecurityAdvisory, dependency Dependency, scheme VersionScheme) bool {
	if len(advisories) == 0 {
		return false
	}
	if !dependency.HasVersion() {
		return false
	}
	if scheme == nil || !scheme.Correct(dependency.Version) {
		return false
	}
	for _, advisory := range advisories {
		if advisory.Vulnerable(dependency.Version, scheme) {
			return true
		}
	}
	return false
}
