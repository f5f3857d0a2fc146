package repositories

import (
	"context"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// AdvisoryRepository returns the known security advisories of an ecosystem
// from the sources enabled in settings.
type AdvisoryRepository interface {
	Advisories(ctx context.Context, settings *entities.Settings, ecosystem string) ([]entities.SecurityAdvisory, error)
}

// AdvisoryFeedRepository reads a complete upstream advisory feed. Records for
// ecosystems without a canonical token fail with *entities.UnknownEcosystemError.
type AdvisoryFeedRepository interface {
	FetchAll(ctx context.Context, settings *entities.Settings) ([]entities.SecurityAdvisory, error)
}

// AdvisoryStoreRepository persists imported advisories where
// AdvisoryRepository reads them back.
type AdvisoryStoreRepository interface {
	Save(settings *entities.Settings, advisories []entities.SecurityAdvisory) error
}
