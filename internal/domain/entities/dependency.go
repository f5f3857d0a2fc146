package entities

import "strings"

// Dependency is a package found in a repository's manifests. Parsers build
// it; the decision engine only reads it.
type Dependency struct {
	Name           string        // Package name as written in the manifest
	Version        string        // Resolved version, empty when no lockfile pins it
	Requirements   []Requirement // One entry per manifest that declares it
	PackageManager string        // Canonical ecosystem token
	Production     bool          // False for dev/test-only dependencies

	// Set only on dependencies returned by UpdateChecker.UpdatedDependencies.
	PreviousVersion      string
	PreviousRequirements []Requirement
}

// Requirement is a single manifest declaration of a dependency.
type Requirement struct {
	Requirement string   // Version requirement, e.g. "^1.2.0"; empty when unconstrained
	File        string   // Manifest path relative to the policy directory
	Groups      []string // e.g. "dependencies", "devDependencies"
	Source      string   // Registry/source the requirement resolves against
}

// TopLevel reports whether the dependency is declared in at least one manifest.
func (d Dependency) TopLevel() bool {
	return len(d.Requirements) > 0
}

// HasVersion reports whether a concrete version is known.
func (d Dependency) HasVersion() bool {
	return strings.TrimSpace(d.Version) != ""
}

// PreUpdate rebuilds the dependency as it was before an update was computed.
func (d Dependency) PreUpdate() Dependency {
	return Dependency{
		Name:           d.Name,
		Version:        d.PreviousVersion,
		Requirements:   d.PreviousRequirements,
		PackageManager: d.PackageManager,
		Production:     d.Production,
	}
}

// RequirementsChanged reports whether an update rewrote any requirement.
func (d Dependency) RequirementsChanged() bool {
	if len(d.Requirements) != len(d.PreviousRequirements) {
		return true
	}
	for i := range d.Requirements {
		if d.Requirements[i].Requirement != d.PreviousRequirements[i].Requirement ||
			d.Requirements[i].File != d.PreviousRequirements[i].File {
			return true
		}
	}
	return false
}

// DependencyFile is a manifest or lockfile fetched from a repository.
type DependencyFile struct {
	Name      string // Path relative to the policy directory
	Directory string // Policy directory the file was fetched for
	Content   string
}

// UpdatedFile is a file rewritten by a FileUpdater.
type UpdatedFile struct {
	Name    string
	Content string
	Deleted bool
}
