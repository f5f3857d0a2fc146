package controllers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const updatedFileMode = 0o644

// applyUpdates writes the updated files of every update decision into the
// local checkout at root. Decisions of one entry build on each other, so each
// file is written once with the content of the last decision touching it.
func applyUpdates(root string, reports []entities.PolicyReport) error {
	var order []string
	final := make(map[string]entities.UpdatedFile)
	for _, report := range reports {
		directory := filepath.Join(root, filepath.FromSlash(report.Policy.Directory))
		for _, decision := range report.Decisions {
			if decision.Outcome != entities.OutcomeUpdated {
				continue
			}
			for _, file := range decision.UpdatedFiles {
				target := filepath.Join(directory, filepath.FromSlash(file.Name))
				if _, seen := final[target]; !seen {
					order = append(order, target)
				}
				final[target] = file
			}
		}
	}

	for _, target := range order {
		if err := applyFile(target, final[target]); err != nil {
			return err
		}
	}
	return nil
}

func applyFile(target string, file entities.UpdatedFile) error {
	if file.Deleted {
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete %q: %w", target, err)
		}
		logger.Infof("Deleted %s", target)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %q: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, []byte(file.Content), updatedFileMode); err != nil {
		return fmt.Errorf("failed to write %q: %w", target, err)
	}
	logger.Infof("Updated %s", target)
	return nil
}
