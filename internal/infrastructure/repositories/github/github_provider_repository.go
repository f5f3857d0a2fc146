package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

const (
	providerName = "github"
	maxAttempts  = 3
	initialDelay = 200 * time.Millisecond
)

var errDirectory = errors.New("path is a directory, not a file")

// GitHubProviderRepository reads policy and manifest files through the
// GitHub contents API.
type GitHubProviderRepository struct {
	client      *gh.Client
	retryConfig retry.Config
}

// NewGitHubProviderRepository creates a provider for github.com or, with a
// base URL, a GitHub Enterprise Server instance.
func NewGitHubProviderRepository(token, baseURL string) repositories.ProviderRepository {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		enterprise, err := client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			logger.Warnf("[github] Ignoring invalid base URL %q: %v", baseURL, err)
		} else {
			client = enterprise
		}
	}
	return &GitHubProviderRepository{
		client: client,
		retryConfig: retry.Config{
			MaxAttempts:   maxAttempts,
			InitialDelay:  initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

func (p *GitHubProviderRepository) Name() string { return providerName }

func (p *GitHubProviderRepository) FetchPolicyFile(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.DependencyFile, error) {
	for _, path := range repositories.PolicyFilePaths {
		content, err := p.getFileContent(ctx, repo, path, branch)
		if isNotFound(err) {
			continue
		}
		if err != nil {
			return entities.DependencyFile{}, err
		}
		return entities.DependencyFile{Name: path, Directory: "/", Content: content}, nil
	}
	return entities.DependencyFile{}, entities.ErrPolicyFileNotFound
}

func (p *GitHubProviderRepository) FetchFiles(
	ctx context.Context,
	repo entities.Repository,
	directory, branch string,
	candidates []string,
) ([]entities.DependencyFile, error) {
	var files []entities.DependencyFile
	for _, name := range candidates {
		content, err := p.getFileContent(ctx, repo, repositories.FilePath(directory, name), branch)
		if isNotFound(err) {
			logger.Debugf("[github] %s not found in %s%s", name, repo.FullName(), directory)
			continue
		}
		if err != nil {
			return nil, err
		}
		files = append(files, entities.DependencyFile{Name: name, Directory: directory, Content: content})
	}
	return files, nil
}

func (p *GitHubProviderRepository) getFileContent(
	ctx context.Context,
	repo entities.Repository,
	path, branch string,
) (string, error) {
	var permanent error
	retryer := retry.New[*gh.RepositoryContent](p.retryConfig)
	fileContent, err := retryer.Do(ctx, func(ctx context.Context) (*gh.RepositoryContent, error) {
		content, _, _, getErr := p.client.Repositories.GetContents(
			ctx, repo.Owner, repo.Name, path,
			&gh.RepositoryContentGetOptions{Ref: branch},
		)
		if getErr != nil && !retryable(getErr) {
			permanent = getErr
			return nil, nil
		}
		if getErr != nil {
			logger.Debugf("[github] GET %s failed, retrying: %v", path, getErr)
		}
		return content, getErr
	})
	if permanent != nil {
		err = permanent
	}
	if err != nil {
		return "", fmt.Errorf("failed to get file %q: %w", path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("%q: %w", path, errDirectory)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode file content: %w", err)
	}
	return content, nil
}

// retryable reports transport failures, rate limits and 5xx responses.
func retryable(err error) bool {
	var response *gh.ErrorResponse
	if !errors.As(err, &response) || response.Response == nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	status := response.Response.StatusCode
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func isNotFound(err error) bool {
	var response *gh.ErrorResponse
	return errors.As(err, &response) && response.Response != nil &&
		response.Response.StatusCode == http.StatusNotFound
}
