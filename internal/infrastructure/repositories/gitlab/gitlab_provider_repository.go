package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

const providerName = "gitlab"

var (
	errClientNotInitialized = errors.New("gitlab client not initialized")
	errFileNotFound         = errors.New("file not found")
)

// GitLabProviderRepository reads raw repository files through the GitLab API.
type GitLabProviderRepository struct {
	client *gl.Client
}

// NewGitLabProviderRepository creates a provider for gitlab.com or a
// self-managed instance at baseURL.
func NewGitLabProviderRepository(token, baseURL string) repositories.ProviderRepository {
	var options []gl.ClientOptionFunc
	if baseURL != "" {
		options = append(options, gl.WithBaseURL(baseURL))
	}
	client, err := gl.NewClient(token, options...)
	if err != nil {
		// fail on use rather than at construction
		logger.Warnf("[gitlab] Failed to create client: %v", err)
		return &GitLabProviderRepository{client: nil}
	}
	return &GitLabProviderRepository{client: client}
}

func (p *GitLabProviderRepository) Name() string { return providerName }

func (p *GitLabProviderRepository) FetchPolicyFile(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.DependencyFile, error) {
	for _, path := range repositories.PolicyFilePaths {
		content, err := p.getFileContent(ctx, repo, path, branch)
		if errors.Is(err, errFileNotFound) {
			continue
		}
		if err != nil {
			return entities.DependencyFile{}, err
		}
		return entities.DependencyFile{Name: path, Directory: "/", Content: content}, nil
	}
	return entities.DependencyFile{}, entities.ErrPolicyFileNotFound
}

func (p *GitLabProviderRepository) FetchFiles(
	ctx context.Context,
	repo entities.Repository,
	directory, branch string,
	candidates []string,
) ([]entities.DependencyFile, error) {
	var files []entities.DependencyFile
	for _, name := range candidates {
		content, err := p.getFileContent(ctx, repo, repositories.FilePath(directory, name), branch)
		if errors.Is(err, errFileNotFound) {
			logger.Debugf("[gitlab] %s not found in %s%s", name, repo.FullName(), directory)
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, entities.DependencyFile{Name: name, Directory: directory, Content: content})
	}
	return files, nil
}

// getFileContent reads path at branch, or at the default branch when branch
// is empty.
func (p *GitLabProviderRepository) getFileContent(
	ctx context.Context,
	repo entities.Repository,
	path, branch string,
) (string, error) {
	if p.client == nil {
		return "", errClientNotInitialized
	}

	options := &gl.GetRawFileOptions{}
	if branch != "" {
		options.Ref = gl.Ptr(branch)
	}
	raw, response, err := p.client.RepositoryFiles.GetRawFile(
		repo.FullName(), path, options,
		gl.WithContext(ctx),
	)
	if response != nil && response.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%q: %w", path, errFileNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get file %q: %w", path, err)
	}
	return string(raw), nil
}
