package versioning

import (
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// Registry maps every canonical ecosystem to its version grammar.
type Registry struct {
	schemes map[string]entities.VersionScheme
}

// NewRegistry builds the registry with a grammar for every known ecosystem.
// Ecosystems without a range syntax of their own fall back to plain semver.
func NewRegistry() *Registry {
	return &Registry{schemes: map[string]entities.VersionScheme{
		entities.EcosystemBundler:       NewBundlerScheme(entities.EcosystemBundler),
		entities.EcosystemCargo:         NewCargoScheme(entities.EcosystemCargo),
		entities.EcosystemComposer:      NewSemverScheme(entities.EcosystemComposer),
		entities.EcosystemDocker:        NewSemverScheme(entities.EcosystemDocker),
		entities.EcosystemElm:           NewSemverScheme(entities.EcosystemElm),
		entities.EcosystemGitHubActions: NewSemverScheme(entities.EcosystemGitHubActions),
		entities.EcosystemSubmodules:    NewSemverScheme(entities.EcosystemSubmodules),
		entities.EcosystemGoModules:     NewGoModScheme(entities.EcosystemGoModules),
		entities.EcosystemGradle:        NewMavenScheme(entities.EcosystemGradle),
		entities.EcosystemMaven:         NewMavenScheme(entities.EcosystemMaven),
		entities.EcosystemHex:           NewBundlerScheme(entities.EcosystemHex),
		entities.EcosystemNuGet:         NewMavenScheme(entities.EcosystemNuGet),
		entities.EcosystemNpmAndYarn:    NewSemverScheme(entities.EcosystemNpmAndYarn),
		entities.EcosystemPip:           NewPipScheme(entities.EcosystemPip),
		entities.EcosystemTerraform:     NewBundlerScheme(entities.EcosystemTerraform),
	}}
}

// SchemeFor returns the grammar of a canonical ecosystem token.
func (r *Registry) SchemeFor(ecosystem string) (entities.VersionScheme, error) {
	scheme, ok := r.schemes[ecosystem]
	if !ok {
		return nil, &entities.UnknownEcosystemError{Ecosystem: ecosystem}
	}
	return scheme, nil
}
