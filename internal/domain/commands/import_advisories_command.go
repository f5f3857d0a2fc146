package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// ImportAdvisories is the interface for the advisory import command.
type ImportAdvisories interface {
	Execute(ctx context.Context, settings *entities.Settings) (int, error)
}

// ImportAdvisoriesCommand copies an upstream advisory feed into the local
// store read by the update run.
type ImportAdvisoriesCommand struct {
	feed  repositories.AdvisoryFeedRepository
	store repositories.AdvisoryStoreRepository
}

// NewImportAdvisoriesCommand creates a new ImportAdvisoriesCommand.
func NewImportAdvisoriesCommand(
	feed repositories.AdvisoryFeedRepository,
	store repositories.AdvisoryStoreRepository,
) *ImportAdvisoriesCommand {
	return &ImportAdvisoriesCommand{feed: feed, store: store}
}

// Execute fetches the whole feed and saves it, returning the number of
// advisories written. Nothing is saved when the feed fails part-way.
func (it *ImportAdvisoriesCommand) Execute(ctx context.Context, settings *entities.Settings) (int, error) {
	advisories, err := it.feed.FetchAll(ctx, settings)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch security advisories: %w", err)
	}

	if err = it.store.Save(settings, advisories); err != nil {
		return 0, fmt.Errorf("failed to save security advisories: %w", err)
	}
	logger.Infof("Imported %d security advisories into %s", len(advisories), settings.Advisories.File)
	return len(advisories), nil
}
