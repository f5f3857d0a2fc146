package advisories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/domain/repositories"
)

const storeFileMode = 0o644

// FileAdvisoryRepository reads and writes the JSON advisory cache at
// settings.Advisories.File.
type FileAdvisoryRepository struct{}

// NewFileAdvisoryRepository creates the JSON cache repository.
func NewFileAdvisoryRepository() *FileAdvisoryRepository {
	return &FileAdvisoryRepository{}
}

// Advisories returns the cached advisories of ecosystem. A missing cache file
// yields no advisories.
func (r *FileAdvisoryRepository) Advisories(
	_ context.Context,
	settings *entities.Settings,
	ecosystem string,
) ([]entities.SecurityAdvisory, error) {
	all, err := r.load(settings.Advisories.File)
	if err != nil {
		return nil, err
	}

	var result []entities.SecurityAdvisory
	for _, advisory := range all {
		if advisory.PackageManager == ecosystem {
			result = append(result, advisory)
		}
	}
	return result, nil
}

// Save replaces the cache file with advisories, sorted by ecosystem and name.
func (r *FileAdvisoryRepository) Save(settings *entities.Settings, advisories []entities.SecurityAdvisory) error {
	sorted := append([]entities.SecurityAdvisory(nil), advisories...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PackageManager != sorted[j].PackageManager {
			return sorted[i].PackageManager < sorted[j].PackageManager
		}
		return sorted[i].DependencyName < sorted[j].DependencyName
	})

	data, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode advisories: %w", err)
	}

	path := settings.Advisories.File
	if dir := filepath.Dir(path); dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o755); mkdirErr != nil {
			return fmt.Errorf("failed to create %q: %w", dir, mkdirErr)
		}
	}
	if writeErr := os.WriteFile(path, append(data, '\n'), storeFileMode); writeErr != nil {
		return fmt.Errorf("failed to write advisories to %q: %w", path, writeErr)
	}
	logger.Infof("Wrote %d advisories to %s", len(sorted), path)
	return nil
}

func (r *FileAdvisoryRepository) load(path string) ([]entities.SecurityAdvisory, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("No advisory cache at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read advisories from %q: %w", path, err)
	}

	var advisories []entities.SecurityAdvisory
	if unmarshalErr := json.Unmarshal(data, &advisories); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse advisories from %q: %w", path, unmarshalErr)
	}
	return advisories, nil
}

var (
	_ repositories.AdvisoryRepository      = (*FileAdvisoryRepository)(nil)
	_ repositories.AdvisoryStoreRepository = (*FileAdvisoryRepository)(nil)
)
