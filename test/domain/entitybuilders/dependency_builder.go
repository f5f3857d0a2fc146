//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	*testkit.BaseBuilder
	name           string
	version        string
	packageManager string
	production     bool
	requirements   []entities.Requirement
}

// NewDependencyBuilder creates a top-level production npm dependency.
func NewDependencyBuilder() *DependencyBuilder {
	builder := &DependencyBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	builder.Reset()
	return builder
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithVersion sets the resolved version; pass "" for an unpinned dependency.
func (b *DependencyBuilder) WithVersion(version string) *DependencyBuilder {
	b.version = version
	return b
}

// WithPackageManager sets the canonical ecosystem token.
func (b *DependencyBuilder) WithPackageManager(packageManager string) *DependencyBuilder {
	b.packageManager = packageManager
	return b
}

// WithRequirement replaces the requirements with a single manifest entry.
func (b *DependencyBuilder) WithRequirement(requirement, file string) *DependencyBuilder {
	b.requirements = []entities.Requirement{{
		Requirement: requirement,
		File:        file,
		Groups:      []string{"dependencies"},
	}}
	return b
}

// AsIndirect removes every requirement, making the dependency transitive.
func (b *DependencyBuilder) AsIndirect() *DependencyBuilder {
	b.requirements = nil
	return b
}

// AsDevelopment flags the dependency as dev-only.
func (b *DependencyBuilder) AsDevelopment() *DependencyBuilder {
	b.production = false
	for i := range b.requirements {
		b.requirements[i].Groups = []string{"devDependencies"}
	}
	return b
}

// Build creates the dependency (satisfies testkit.Builder interface).
func (b *DependencyBuilder) Build() interface{} {
	return b.BuildDependency()
}

// BuildDependency creates the dependency with a concrete return type.
func (b *DependencyBuilder) BuildDependency() entities.Dependency {
	requirements := make([]entities.Requirement, len(b.requirements))
	copy(requirements, b.requirements)
	return entities.Dependency{
		Name:           b.name,
		Version:        b.version,
		Requirements:   requirements,
		PackageManager: b.packageManager,
		Production:     b.production,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-dependency"
	b.version = "1.0.0"
	b.packageManager = entities.EcosystemNpmAndYarn
	b.production = true
	b.requirements = []entities.Requirement{{
		Requirement: "^1.0.0",
		File:        "package.json",
		Groups:      []string{"dependencies"},
	}}
	return b
}

// Clone creates a deep copy of the DependencyBuilder.
func (b *DependencyBuilder) Clone() testkit.Builder {
	requirements := make([]entities.Requirement, len(b.requirements))
	copy(requirements, b.requirements)
	return &DependencyBuilder{
		BaseBuilder:    b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:           b.name,
		version:        b.version,
		packageManager: b.packageManager,
		production:     b.production,
		requirements:   requirements,
	}
}
