//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// PolicyConfigBuilder helps create validated policy entries.
type PolicyConfigBuilder struct {
	*testkit.BaseBuilder
	config entities.PolicyConfig
}

// NewPolicyConfigBuilder creates an npm entry for "/" with the default allow rule.
func NewPolicyConfigBuilder() *PolicyConfigBuilder {
	builder := &PolicyConfigBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	builder.Reset()
	return builder
}

// WithEcosystem sets the canonical ecosystem token.
func (b *PolicyConfigBuilder) WithEcosystem(ecosystem string) *PolicyConfigBuilder {
	b.config.Ecosystem = ecosystem
	return b
}

// WithDirectory sets the manifest directory.
func (b *PolicyConfigBuilder) WithDirectory(directory string) *PolicyConfigBuilder {
	b.config.Directory = directory
	return b
}

// WithAllowedUpdates replaces the allow rules.
func (b *PolicyConfigBuilder) WithAllowedUpdates(rules ...entities.AllowedUpdate) *PolicyConfigBuilder {
	b.config.AllowedUpdates = rules
	return b
}

// WithIgnoreCondition appends an ignore condition.
func (b *PolicyConfigBuilder) WithIgnoreCondition(name, requirement string) *PolicyConfigBuilder {
	b.config.IgnoreConditions = append(b.config.IgnoreConditions, entities.IgnoreCondition{
		DependencyName: name, VersionRequirement: requirement,
	})
	return b
}

// WithLockfileOnly sets the lockfile-only versioning strategy.
func (b *PolicyConfigBuilder) WithLockfileOnly() *PolicyConfigBuilder {
	b.config.LockfileOnly = true
	return b
}

// WithRequirementsUpdateStrategy sets the requirement rewrite strategy.
func (b *PolicyConfigBuilder) WithRequirementsUpdateStrategy(strategy string) *PolicyConfigBuilder {
	b.config.RequirementsUpdateStrategy = strategy
	return b
}

// Build creates the policy entry (satisfies testkit.Builder interface).
func (b *PolicyConfigBuilder) Build() interface{} {
	return b.BuildPolicyConfig()
}

// BuildPolicyConfig creates the policy entry with a concrete return type.
func (b *PolicyConfigBuilder) BuildPolicyConfig() entities.PolicyConfig {
	config := b.config
	config.AllowedUpdates = append([]entities.AllowedUpdate{}, b.config.AllowedUpdates...)
	config.IgnoreConditions = append([]entities.IgnoreCondition{}, b.config.IgnoreConditions...)
	return config
}

// Reset clears the builder state, allowing it to be reused.
func (b *PolicyConfigBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.config = entities.PolicyConfig{
		Ecosystem: entities.EcosystemNpmAndYarn,
		Directory: "/",
		Schedule:  entities.Schedule{Interval: "daily"},
		AllowedUpdates: []entities.AllowedUpdate{{
			DependencyType: entities.DependencyTypeDirect,
			UpdateType:     entities.UpdateTypeAll,
		}},
	}
	return b
}

// Clone creates a deep copy of the PolicyConfigBuilder.
func (b *PolicyConfigBuilder) Clone() testkit.Builder {
	return &PolicyConfigBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		config:      b.BuildPolicyConfig(),
	}
}
