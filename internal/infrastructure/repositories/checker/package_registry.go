package checker

import (
	"context"
	"sync"
)

// Release is one published version of a package.
type Release struct {
	Version string
	Yanked  bool

	// PeerRequirements maps the packages this release constrains to the
	// range it accepts for them.
	PeerRequirements map[string]string
}

// PackageRegistry lists every published release of a package.
type PackageRegistry interface {
	Releases(ctx context.Context, name string) ([]Release, error)
}

// CachingRegistry memoises successful listings for the lifetime of a policy
// entry, so peer lookups do not refetch packages already seen.
type CachingRegistry struct {
	inner PackageRegistry

	mu    sync.Mutex
	cache map[string][]Release
}

// NewCachingRegistry wraps inner with a per-name cache.
func NewCachingRegistry(inner PackageRegistry) *CachingRegistry {
	return &CachingRegistry{inner: inner, cache: make(map[string][]Release)}
}

func (r *CachingRegistry) Releases(ctx context.Context, name string) ([]Release, error) {
	r.mu.Lock()
	cached, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	releases, err := r.inner.Releases(ctx, name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[name] = releases
	r.mu.Unlock()
	return releases, nil
}
