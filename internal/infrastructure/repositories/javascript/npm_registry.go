package javascript

import (
	"context"
	"net/url"

	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
)

const (
	defaultRegistryURL = "https://registry.npmjs.org"

	// abbreviated packuments still carry peerDependencies and deprecation
	abbreviatedMetadata = "application/vnd.npm.install-v1+json"
)

type packument struct {
	Versions map[string]struct {
		PeerDependencies map[string]string `json:"peerDependencies"`
		Deprecated       interface{}       `json:"deprecated"`
	} `json:"versions"`
}

// npmRegistry lists releases from an npm-compatible registry.
type npmRegistry struct {
	client  *httpclient.Client
	baseURL string
}

func (r *npmRegistry) Releases(ctx context.Context, name string) ([]checker.Release, error) {
	var document packument
	err := r.client.GetJSON(ctx, r.baseURL+"/"+url.PathEscape(name), map[string]string{
		"Accept": abbreviatedMetadata,
	}, &document)
	if err != nil {
		return nil, err
	}

	releases := make([]checker.Release, 0, len(document.Versions))
	for version, metadata := range document.Versions {
		releases = append(releases, checker.Release{
			Version:          version,
			Yanked:           deprecated(metadata.Deprecated),
			PeerRequirements: metadata.PeerDependencies,
		})
	}
	return releases, nil
}

// deprecated accepts both the string and the boolean form of the field.
func deprecated(value interface{}) bool {
	switch typed := value.(type) {
	case string:
		return typed != ""
	case bool:
		return typed
	default:
		return false
	}
}
