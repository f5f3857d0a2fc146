package terraform

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
)

type staticTags map[string][]string

func (s staticTags) Tags(_ context.Context, url string) ([]string, error) {
	return s[url], nil
}

// NewTerraformEcosystemRepositoryWithTags serves Git tags from memory, keyed by clone URL.
func NewTerraformEcosystemRepositoryWithTags(baseURL string, tags map[string][]string) repositories.EcosystemRepository {
	return newTerraformEcosystemRepository(httpclient.New(), baseURL, staticTags(tags))
}

var CloneURL = cloneURL
