package rust

import (
	"context"
	"net/url"

	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
)

const defaultRegistryURL = "https://crates.io"

type cratesVersions struct {
	Versions []struct {
		Num    string `json:"num"`
		Yanked bool   `json:"yanked"`
	} `json:"versions"`
}

// cratesRegistry lists crate versions from the crates.io API.
type cratesRegistry struct {
	client  *httpclient.Client
	baseURL string
}

func (r *cratesRegistry) Releases(ctx context.Context, name string) ([]checker.Release, error) {
	var response cratesVersions
	if err := r.client.GetJSON(ctx, r.baseURL+"/api/v1/crates/"+url.PathEscape(name)+"/versions", nil, &response); err != nil {
		return nil, err
	}

	releases := make([]checker.Release, 0, len(response.Versions))
	for _, version := range response.Versions {
		releases = append(releases, checker.Release{Version: version.Num, Yanked: version.Yanked})
	}
	return releases, nil
}
