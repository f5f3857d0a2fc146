package advisories

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

const pageSize = 100

// ghsaEcosystems maps GHSA ecosystem names to package-manager tokens. GHSA
// ecosystems missing here (pub, swift, other) have no token and are fatal.
//
//nolint:gochecknoglobals // static lookup table
var ghsaEcosystems = map[string]string{
	"actions":  entities.EcosystemGitHubActions,
	"composer": entities.EcosystemComposer,
	"erlang":   entities.EcosystemHex,
	"go":       entities.EcosystemGoModules,
	"maven":    entities.EcosystemMaven,
	"npm":      entities.EcosystemNpmAndYarn,
	"nuget":    entities.EcosystemNuGet,
	"pip":      entities.EcosystemPip,
	"rubygems": entities.EcosystemBundler,
	"rust":     entities.EcosystemCargo,
}

// GitHubAdvisoryFeedRepository pages through the GitHub global security
// advisory database.
type GitHubAdvisoryFeedRepository struct {
	newClient func(settings *entities.Settings) *gh.Client
}

// NewGitHubAdvisoryFeedRepository creates a feed authenticated with the
// github provider token of the settings passed to FetchAll.
func NewGitHubAdvisoryFeedRepository() *GitHubAdvisoryFeedRepository {
	return &GitHubAdvisoryFeedRepository{newClient: newClient}
}

func newClient(settings *entities.Settings) *gh.Client {
	client := gh.NewClient(nil)
	if token := settings.TokenFor("github"); token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL := settings.BaseURLFor("github"); baseURL != "" {
		enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			logger.Warnf("[github] Ignoring invalid base URL %q: %v", baseURL, err)
			return client
		}
		return enterprise
	}
	return client
}

// FetchAll returns one advisory per affected package of every non-withdrawn
// GHSA record.
func (r *GitHubAdvisoryFeedRepository) FetchAll(
	ctx context.Context,
	settings *entities.Settings,
) ([]entities.SecurityAdvisory, error) {
	return r.fetch(ctx, r.newClient(settings), nil)
}

func (r *GitHubAdvisoryFeedRepository) fetch(
	ctx context.Context,
	client *gh.Client,
	ecosystem *string,
) ([]entities.SecurityAdvisory, error) {
	opts := &gh.ListGlobalSecurityAdvisoriesOptions{
		Ecosystem:         ecosystem,
		ListCursorOptions: gh.ListCursorOptions{PerPage: pageSize},
	}

	var result []entities.SecurityAdvisory
	for page := 1; ; page++ {
		records, resp, err := client.SecurityAdvisories.ListGlobalSecurityAdvisories(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list security advisories: %w", err)
		}
		logger.Debugf("[github] Advisory page %d: %d records", page, len(records))

		for _, record := range records {
			converted, convertErr := convert(record)
			if convertErr != nil {
				return nil, convertErr
			}
			result = append(result, converted...)
		}

		if resp == nil || resp.After == "" {
			break
		}
		opts.After = resp.After
	}
	return result, nil
}

func convert(record *gh.GlobalSecurityAdvisory) ([]entities.SecurityAdvisory, error) {
	if record.WithdrawnAt != nil {
		logger.Debugf("[github] Skipping withdrawn advisory %s", record.GetGHSAID())
		return nil, nil
	}

	var result []entities.SecurityAdvisory
	for _, vulnerability := range record.Vulnerabilities {
		if vulnerability == nil || vulnerability.Package == nil {
			continue
		}
		ghsaEcosystem := vulnerability.Package.GetEcosystem()
		packageManager, ok := ghsaEcosystems[ghsaEcosystem]
		if !ok {
			return nil, fmt.Errorf(
				"advisory %s: %w", record.GetGHSAID(), &entities.UnknownEcosystemError{Ecosystem: ghsaEcosystem},
			)
		}

		advisory := entities.SecurityAdvisory{
			DependencyName: vulnerability.Package.GetName(),
			PackageManager: packageManager,
		}
		if affected := vulnerability.GetVulnerableVersionRange(); affected != "" {
			advisory.VulnerableVersions = []string{affected}
		}
		if patched := vulnerability.GetFirstPatchedVersion(); patched != "" {
			advisory.SafeVersions = []string{">= " + patched}
		}
		result = append(result, advisory)
	}
	return result, nil
}

var _ repositories.AdvisoryFeedRepository = (*GitHubAdvisoryFeedRepository)(nil)
