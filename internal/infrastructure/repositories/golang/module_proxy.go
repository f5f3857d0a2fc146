package golang

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/mod/module"

	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/checker"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/repositories/httpclient"
)

const defaultProxyURL = "https://proxy.golang.org"

// moduleProxy lists tagged versions from a GOPROXY endpoint.
type moduleProxy struct {
	client  *httpclient.Client
	baseURL string
}

func (p *moduleProxy) Releases(ctx context.Context, name string) ([]checker.Release, error) {
	escaped, err := module.EscapePath(name)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", name, err)
	}

	body, err := p.client.Get(ctx, p.baseURL+"/"+escaped+"/@v/list", map[string]string{"Accept": "text/plain"})
	if err != nil {
		return nil, err
	}

	var releases []checker.Release
	for _, line := range strings.Split(string(body), "\n") {
		if version := strings.TrimSpace(line); version != "" {
			releases = append(releases, checker.Release{Version: version})
		}
	}
	return releases, nil
}
