package python

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
)

const defaultIndexURL = "https://pypi.org"

var separatorRun = regexp.MustCompile(`[-_.]+`)

type pypiProject struct {
	Releases map[string][]struct {
		Yanked bool `json:"yanked"`
	} `json:"releases"`
}

// pypiRegistry reads release listings from the PyPI JSON API.
type pypiRegistry struct {
	client  *httpclient.Client
	baseURL string
}

func (r *pypiRegistry) Releases(ctx context.Context, name string) ([]checker.Release, error) {
	var project pypiProject
	if err := r.client.GetJSON(ctx, r.baseURL+"/pypi/"+url.PathEscape(normalizeName(name))+"/json", nil, &project); err != nil {
		return nil, err
	}

	releases := make([]checker.Release, 0, len(project.Releases))
	for version, files := range project.Releases {
		// a release is yanked when every one of its files is; one without files cannot be installed
		yanked := true
		for _, file := range files {
			yanked = yanked && file.Yanked
		}
		releases = append(releases, checker.Release{Version: version, Yanked: yanked})
	}
	return releases, nil
}

// normalizeName applies the PEP 503 project name normalisation.
func normalizeName(name string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(name), "-")
}
