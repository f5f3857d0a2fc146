package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	domainRepos "github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// ProviderFactory creates a ProviderRepository from its credentials. baseURL
// is empty for the public SaaS instance.
type ProviderFactory func(token, baseURL string) domainRepos.ProviderRepository

// ProviderRegistry manages all registered source-control providers.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register adds a provider factory under the given name (e.g. "github").
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// Get returns a configured provider instance for the given name.
func (r *ProviderRegistry) Get(name, token, baseURL string) (domainRepos.ProviderRepository, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownProvider, name)
	}
	return factory(token, baseURL), nil
}

// Names returns the registered provider names, sorted.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
