package terraform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
)

const defaultRegistryURL = "https://registry.terraform.io"

var errUnsupportedAddress = errors.New("unsupported registry address")

type providerVersions struct {
	Versions []struct {
		Version string `json:"version"`
	} `json:"versions"`
}

type moduleVersions struct {
	Modules []struct {
		Versions []struct {
			Version string `json:"version"`
		} `json:"versions"`
	} `json:"modules"`
}

// tagLister lists the tags of a Git remote.
type tagLister interface {
	Tags(ctx context.Context, url string) ([]string, error)
}

// remoteTagLister asks the remote for its references without cloning.
type remoteTagLister struct{}

func (remoteTagLister) Tags(ctx context.Context, url string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{url},
	})
	references, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags of %s: %w", url, err)
	}

	var tags []string
	for _, reference := range references {
		if reference.Name().IsTag() {
			tags = append(tags, reference.Name().Short())
		}
	}
	return tags, nil
}

// terraformRegistry serves providers and modules from the registry protocol
// and Git modules from their remote's tags.
type terraformRegistry struct {
	client  *httpclient.Client
	baseURL string
	tags    tagLister
}

func (r *terraformRegistry) Releases(ctx context.Context, name string) ([]checker.Release, error) {
	if isGitModule(name) {
		tags, err := r.tags.Tags(ctx, cloneURL(name))
		if err != nil {
			return nil, err
		}
		releases := make([]checker.Release, 0, len(tags))
		for _, tag := range tags {
			releases = append(releases, checker.Release{Version: tag})
		}
		return releases, nil
	}

	var versions []string
	switch parts := strings.Split(name, "/"); len(parts) {
	case 2:
		var response providerVersions
		if err := r.client.GetJSON(ctx, r.baseURL+"/v1/providers/"+name+"/versions", nil, &response); err != nil {
			return nil, err
		}
		for _, version := range response.Versions {
			versions = append(versions, version.Version)
		}
	case 3:
		var response moduleVersions
		if err := r.client.GetJSON(ctx, r.baseURL+"/v1/modules/"+name+"/versions", nil, &response); err != nil {
			return nil, err
		}
		for _, module := range response.Modules {
			for _, version := range module.Versions {
				versions = append(versions, version.Version)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedAddress, name)
	}

	releases := make([]checker.Release, 0, len(versions))
	for _, version := range versions {
		releases = append(releases, checker.Release{Version: version})
	}
	return releases, nil
}
