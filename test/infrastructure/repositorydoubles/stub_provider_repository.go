//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// SpyProviderRepository implements repositories.ProviderRepository as a configurable spy.
type SpyProviderRepository struct {
	// --- identity ---
	ProviderName string

	// --- FetchPolicyFile ---
	PolicyFile entities.DependencyFile
	PolicyErr  error

	// --- FetchFiles ---
	Files    map[string][]entities.DependencyFile // directory -> files
	FilesErr error
	DirErrs  map[string]error // directory -> error, checked after FilesErr

	// spy
	mu                 sync.Mutex
	FetchedDirectories []string
	FetchedBranches    []string
	LastCandidates     []string
}

var _ repositories.ProviderRepository = (*SpyProviderRepository)(nil)

func (p *SpyProviderRepository) Name() string { return p.ProviderName }

func (p *SpyProviderRepository) FetchPolicyFile(
	_ context.Context, _ entities.Repository, _ string,
) (entities.DependencyFile, error) {
	if p.PolicyErr != nil {
		return entities.DependencyFile{}, p.PolicyErr
	}
	return p.PolicyFile, nil
}

func (p *SpyProviderRepository) FetchFiles(
	_ context.Context, _ entities.Repository, directory, branch string, candidates []string,
) ([]entities.DependencyFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.FetchedDirectories = append(p.FetchedDirectories, directory)
	p.FetchedBranches = append(p.FetchedBranches, branch)
	p.LastCandidates = candidates
	if p.FilesErr != nil {
		return nil, p.FilesErr
	}
	if err := p.DirErrs[directory]; err != nil {
		return nil, err
	}
	return p.Files[directory], nil
}
