package entities

import (
	"fmt"
	"strings"
)

// Repository identifies a repository on a source-control provider.
type Repository struct {
	Provider string // "github", "gitlab", "local"
	Owner    string
	Name     string
	Path     string // Local checkout path, only for the "local" provider
}

// ParseRepository parses the `owner/repo` CLI argument. For the local
// provider the argument is a filesystem path.
func ParseRepository(provider, raw string) (Repository, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Repository{}, ErrMissingRepository
	}

	if provider == "local" {
		return Repository{Provider: provider, Name: raw, Path: raw}, nil
	}

	idx := strings.LastIndex(raw, "/")
	if idx <= 0 || idx == len(raw)-1 {
		return Repository{}, fmt.Errorf("%w: got %q", ErrMissingRepository, raw)
	}
	return Repository{
		Provider: provider,
		Owner:    raw[:idx],
		Name:     raw[idx+1:],
	}, nil
}

// FullName returns "owner/name".
func (r Repository) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}
