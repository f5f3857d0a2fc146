package repositories

import (
	"sort"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	domainRepos "github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// EcosystemFactory creates the capability bundle of an ecosystem for a run.
// Settings carry the registry base URL overrides.
type EcosystemFactory func(settings *entities.Settings) domainRepos.EcosystemRepository

// EcosystemRegistry maps canonical ecosystem tokens to their bundle factory.
type EcosystemRegistry struct {
	ecosystems map[string]EcosystemFactory
}

// NewEcosystemRegistry creates an empty ecosystem registry.
func NewEcosystemRegistry() *EcosystemRegistry {
	return &EcosystemRegistry{
		ecosystems: make(map[string]EcosystemFactory),
	}
}

// Register adds a bundle factory under a canonical token (e.g. "npm_and_yarn").
func (r *EcosystemRegistry) Register(name string, factory EcosystemFactory) {
	r.ecosystems[name] = factory
}

// Get returns the bundle of an ecosystem or *entities.UnknownEcosystemError.
func (r *EcosystemRegistry) Get(name string, settings *entities.Settings) (domainRepos.EcosystemRepository, error) {
	factory, ok := r.ecosystems[name]
	if !ok {
		return nil, &entities.UnknownEcosystemError{Ecosystem: name}
	}
	return factory(settings), nil
}

// Names returns the registered ecosystem tokens, sorted.
func (r *EcosystemRegistry) Names() []string {
	names := make([]string, 0, len(r.ecosystems))
	for name := range r.ecosystems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
