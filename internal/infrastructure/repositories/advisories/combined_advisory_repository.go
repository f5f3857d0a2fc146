package advisories

import (
	"context"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

// CombinedAdvisoryRepository merges the JSON cache with live GHSA results
// when settings.Advisories.GitHub is enabled. Live results are fetched once
// per ecosystem and run.
type CombinedAdvisoryRepository struct {
	file *FileAdvisoryRepository
	feed *GitHubAdvisoryFeedRepository

	mu   sync.Mutex
	live map[string][]entities.SecurityAdvisory
}

// NewCombinedAdvisoryRepository creates the advisory source used by updates.
func NewCombinedAdvisoryRepository(
	file *FileAdvisoryRepository,
	feed *GitHubAdvisoryFeedRepository,
) *CombinedAdvisoryRepository {
	return &CombinedAdvisoryRepository{
		file: file,
		feed: feed,
		live: make(map[string][]entities.SecurityAdvisory),
	}
}

func (r *CombinedAdvisoryRepository) Advisories(
	ctx context.Context,
	settings *entities.Settings,
	ecosystem string,
) ([]entities.SecurityAdvisory, error) {
	cached, err := r.file.Advisories(ctx, settings, ecosystem)
	if err != nil {
		return nil, err
	}
	if !settings.Advisories.GitHub {
		return cached, nil
	}

	live, err := r.liveAdvisories(ctx, settings, ecosystem)
	if err != nil {
		return nil, err
	}
	logger.Debugf("[%s] %d cached and %d live advisories", ecosystem, len(cached), len(live))
	return append(cached, live...), nil
}

func (r *CombinedAdvisoryRepository) liveAdvisories(
	ctx context.Context,
	settings *entities.Settings,
	ecosystem string,
) ([]entities.SecurityAdvisory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.live[ecosystem]; ok {
		return cached, nil
	}

	ghsaEcosystem, ok := ghsaEcosystemOf(ecosystem)
	if !ok {
		r.live[ecosystem] = nil
		return nil, nil
	}

	fetched, err := r.feed.fetch(ctx, r.feed.newClient(settings), &ghsaEcosystem)
	if err != nil {
		return nil, err
	}
	r.live[ecosystem] = fetched
	return fetched, nil
}

func ghsaEcosystemOf(packageManager string) (string, bool) {
	for ghsa, token := range ghsaEcosystems {
		if token == packageManager {
			return ghsa, true
		}
	}
	return "", false
}

var _ repositories.AdvisoryRepository = (*CombinedAdvisoryRepository)(nil)
