package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

const providerName = "local"

var errFileNotFound = errors.New("file not found")

// LocalProviderRepository reads files from a checkout on disk. Without a
// branch the working tree is read; with one, the branch's last commit.
type LocalProviderRepository struct{}

// NewLocalProviderRepository ignores credentials.
func NewLocalProviderRepository(_, _ string) repositories.ProviderRepository {
	return &LocalProviderRepository{}
}

func (p *LocalProviderRepository) Name() string { return providerName }

func (p *LocalProviderRepository) FetchPolicyFile(
	_ context.Context,
	repo entities.Repository,
	branch string,
) (entities.DependencyFile, error) {
	source, err := open(repo, branch)
	if err != nil {
		return entities.DependencyFile{}, err
	}
	for _, policyPath := range repositories.PolicyFilePaths {
		content, readErr := source.read(policyPath)
		if errors.Is(readErr, errFileNotFound) {
			continue
		}
		if readErr != nil {
			return entities.DependencyFile{}, readErr
		}
		return entities.DependencyFile{Name: policyPath, Directory: "/", Content: content}, nil
	}
	return entities.DependencyFile{}, entities.ErrPolicyFileNotFound
}

// FetchFiles lists directory once and only reads the candidates it holds.
func (p *LocalProviderRepository) FetchFiles(
	_ context.Context,
	repo entities.Repository,
	directory, branch string,
	candidates []string,
) ([]entities.DependencyFile, error) {
	source, err := open(repo, branch)
	if err != nil {
		return nil, err
	}

	listing, err := source.list(repositories.FilePath(directory, ""))
	if err != nil {
		return nil, err
	}

	var files []entities.DependencyFile
	for _, name := range repositories.PresentCandidates(listing, candidates) {
		content, readErr := source.read(repositories.FilePath(directory, name))
		if readErr != nil {
			return nil, readErr
		}
		files = append(files, entities.DependencyFile{Name: name, Directory: directory, Content: content})
	}
	return files, nil
}

// checkout is either the working tree or the tree of a branch's last commit.
type checkout interface {
	read(name string) (string, error)
	// list returns the entries of dir, or nothing when dir does not exist
	list(dir string) ([]entities.RemoteFile, error)
}

func open(repo entities.Repository, branch string) (checkout, error) {
	if branch == "" {
		return workingTree{root: repo.Path}, nil
	}
	tree, err := branchTree(repo.Path, branch)
	if err != nil {
		return nil, err
	}
	return commitTree{tree: tree, branch: branch}, nil
}

type workingTree struct {
	root string
}

func (w workingTree) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(name)))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%q: %w", name, errFileNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", name, err)
	}
	return string(data), nil
}

func (w workingTree) list(dir string) ([]entities.RemoteFile, error) {
	entries, err := os.ReadDir(filepath.Join(w.root, filepath.FromSlash(dir)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", dir, err)
	}

	listing := make([]entities.RemoteFile, 0, len(entries))
	for _, entry := range entries {
		listing = append(listing, entities.RemoteFile{
			Path:  path.Join(dir, entry.Name()),
			IsDir: entry.IsDir(),
		})
	}
	return listing, nil
}

type commitTree struct {
	tree   *object.Tree
	branch string
}

func (c commitTree) read(name string) (string, error) {
	file, err := c.tree.File(name)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", fmt.Errorf("%q: %w", name, errFileNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q on %s: %w", name, c.branch, err)
	}
	return file.Contents()
}

func (c commitTree) list(dir string) ([]entities.RemoteFile, error) {
	tree := c.tree
	if dir != "" {
		var err error
		tree, err = c.tree.Tree(dir)
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %q on %s: %w", dir, c.branch, err)
		}
	}

	listing := make([]entities.RemoteFile, 0, len(tree.Entries))
	for _, entry := range tree.Entries {
		listing = append(listing, entities.RemoteFile{
			Path:     path.Join(dir, entry.Name),
			ObjectID: entry.Hash.String(),
			IsDir:    entry.Mode == filemode.Dir,
		})
	}
	return listing, nil
}

func branchTree(root, branch string) (*object.Tree, error) {
	repository, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", root, err)
	}

	reference, err := repository.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		// fall back to the remote-tracking branch
		reference, err = repository.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch), true)
		if err != nil {
			return nil, fmt.Errorf("branch %q not found in %q: %w", branch, root, err)
		}
	}

	commit, err := repository.CommitObject(reference.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to read the commit of %q: %w", branch, err)
	}
	return commit.Tree()
}
