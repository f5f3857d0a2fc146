package repositories

import (
	"context"
	"path"
	"strings"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// PolicyFilePaths are tried in order when fetching the update policy.
//
//nolint:gochecknoglobals // static list
var PolicyFilePaths = []string{".github/dependabot.yml", ".github/dependabot.yaml"}

// ProviderRepository abstracts a source-control provider (GitHub, GitLab, a
// local checkout). It only reads: pull-request creation lives elsewhere.
type ProviderRepository interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	// FetchPolicyFile returns the first policy file found in PolicyFilePaths
	// or entities.ErrPolicyFileNotFound.
	FetchPolicyFile(ctx context.Context, repo entities.Repository, branch string) (entities.DependencyFile, error)

	// FetchFiles returns the candidate files that exist under directory on
	// branch. Missing candidates are skipped, not reported as errors.
	FetchFiles(
		ctx context.Context,
		repo entities.Repository,
		directory, branch string,
		candidates []string,
	) ([]entities.DependencyFile, error)
}

// FilePath joins a policy directory and a file name into a repository path
// without a leading slash.
func FilePath(directory, name string) string {
	return strings.TrimPrefix(path.Join("/", directory, name), "/")
}

// PresentCandidates returns, in candidate order, the candidates that appear as
// files in a directory listing.
func PresentCandidates(listing []entities.RemoteFile, candidates []string) []string {
	listed := make(map[string]bool, len(listing))
	for _, file := range listing {
		if !file.IsDir {
			listed[path.Base(file.Path)] = true
		}
	}

	present := make([]string, 0, len(candidates))
	for _, name := range candidates {
		if listed[name] {
			present = append(present, name)
		}
	}
	return present
}
