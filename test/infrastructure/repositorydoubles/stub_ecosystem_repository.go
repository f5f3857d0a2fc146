//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// StubEcosystemRepository implements repositories.EcosystemRepository.
// Checkers are looked up by dependency name; unknown names get an
// up-to-date checker.
type StubEcosystemRepository struct {
	EcosystemName string
	Scheme        entities.VersionScheme
	Manifests     []string

	Dependencies []entities.Dependency
	ParseErr     error

	Checkers map[string]*StubUpdateChecker

	UpdatedFiles []entities.UpdatedFile
	UpdateErr    error
	// UpdateFunc, when set, replaces UpdatedFiles and receives the files the
	// update starts from.
	UpdateFunc func([]entities.Dependency, []entities.DependencyFile) []entities.UpdatedFile

	// spy
	mu            sync.Mutex
	CheckerInputs []repositories.CheckerInput
	UpdateInputs  [][]entities.Dependency
	FileInputs    [][]entities.DependencyFile
}

var _ repositories.EcosystemRepository = (*StubEcosystemRepository)(nil)

func (e *StubEcosystemRepository) Name() string                          { return e.EcosystemName }
func (e *StubEcosystemRepository) VersionScheme() entities.VersionScheme { return e.Scheme }
func (e *StubEcosystemRepository) FileNames() []string                   { return e.Manifests }

func (e *StubEcosystemRepository) Parse(
	_ context.Context, _ []entities.DependencyFile, _ entities.PolicyConfig,
) ([]entities.Dependency, error) {
	return e.Dependencies, e.ParseErr
}

func (e *StubEcosystemRepository) NewChecker(input repositories.CheckerInput) repositories.UpdateChecker {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.CheckerInputs = append(e.CheckerInputs, input)

	if checker, ok := e.Checkers[input.Dependency.Name]; ok {
		if checker.Dep.Name == "" {
			checker.Dep = input.Dependency
		}
		return checker
	}
	return &StubUpdateChecker{
		Dep:        input.Dependency,
		Latest:     input.Dependency.Version,
		IsUpToDate: true,
	}
}

func (e *StubEcosystemRepository) UpdatedDependencyFiles(
	dependencies []entities.Dependency, files []entities.DependencyFile,
) ([]entities.UpdatedFile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.UpdateInputs = append(e.UpdateInputs, dependencies)
	e.FileInputs = append(e.FileInputs, files)
	if e.UpdateFunc != nil {
		return e.UpdateFunc(dependencies, files), e.UpdateErr
	}
	return e.UpdatedFiles, e.UpdateErr
}

// InputFor returns the last checker input built for name.
func (e *StubEcosystemRepository) InputFor(name string) (repositories.CheckerInput, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.CheckerInputs) - 1; i >= 0; i-- {
		if e.CheckerInputs[i].Dependency.Name == name {
			return e.CheckerInputs[i], true
		}
	}
	return repositories.CheckerInput{}, false
}
