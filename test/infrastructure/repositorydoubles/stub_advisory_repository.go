//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// StubAdvisoryRepository implements repositories.AdvisoryRepository.
type StubAdvisoryRepository struct {
	ByEcosystem map[string][]entities.SecurityAdvisory
	Err         error
}

var _ repositories.AdvisoryRepository = (*StubAdvisoryRepository)(nil)

func (a *StubAdvisoryRepository) Advisories(
	_ context.Context, _ *entities.Settings, ecosystem string,
) ([]entities.SecurityAdvisory, error) {
	return a.ByEcosystem[ecosystem], a.Err
}

// StubAdvisoryFeedRepository implements repositories.AdvisoryFeedRepository.
type StubAdvisoryFeedRepository struct {
	Advisories []entities.SecurityAdvisory
	Err        error
}

var _ repositories.AdvisoryFeedRepository = (*StubAdvisoryFeedRepository)(nil)

func (f *StubAdvisoryFeedRepository) FetchAll(
	_ context.Context, _ *entities.Settings,
) ([]entities.SecurityAdvisory, error) {
	return f.Advisories, f.Err
}

// SpyAdvisoryStoreRepository implements repositories.AdvisoryStoreRepository.
type SpyAdvisoryStoreRepository struct {
	SaveErr   error
	SaveCalls int
	Saved     []entities.SecurityAdvisory
}

var _ repositories.AdvisoryStoreRepository = (*SpyAdvisoryStoreRepository)(nil)

func (s *SpyAdvisoryStoreRepository) Save(_ *entities.Settings, advisories []entities.SecurityAdvisory) error {
	s.SaveCalls++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = advisories
	return nil
}
