package controllers

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/updatewarden/internal/domain/commands"
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

const localProvider = "local"

// UpdateController handles the root command: one decision run against a
// repository.
type UpdateController struct {
	command commands.Update
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Update) *UpdateController {
	return &UpdateController{command: command}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "updatewarden <owner/repo>",
		Short: "Decide which dependencies of a repository should be updated",
		Long: `Read the repository's .github/dependabot.yml, validate it, and decide for
every configured ecosystem which dependencies to update and how far their
requirements must be unlocked.

Security updates for vulnerable dependencies are scheduled first.

Usage:
  updatewarden acme/shop                      Report decisions for a GitHub repository
  updatewarden acme/shop --dry-run            Also print the diff of every updated file
  updatewarden . --provider local             Apply updates to a local checkout
  updatewarden acme/shop --dep lodash,react   Only consider the named dependencies`,
	}
}

// Execute runs the update command for the repository given as argument.
func (it *UpdateController) Execute(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		return entities.ErrMissingRepository
	}

	provider, _ := cmd.Flags().GetString("provider")
	depCSV, _ := cmd.Flags().GetString("dep")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	securityOnly, _ := cmd.Flags().GetBool("security-updates-only")
	verbose, _ := cmd.Flags().GetBool("verbose")

	repo, err := entities.ParseRepository(provider, args[0])
	if err != nil {
		return err
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	reports, err := it.command.Execute(context.Background(), settings, entities.UpdateOptions{
		Repository:          repo,
		DependencyNames:     entities.ParseDependencyNames(depCSV),
		DryRun:              dryRun,
		SecurityUpdatesOnly: securityOnly,
		Verbose:             verbose,
	})
	if reports == nil && err != nil {
		logger.Errorf("Update run failed: %v", err)
		return err
	}

	// entries that finished still get printed and applied when a sibling failed
	printReports(cmd.OutOrStdout(), reports, dryRun)
	if !dryRun && repo.Provider == localProvider {
		if applyErr := applyUpdates(repo.Path, reports); applyErr != nil {
			return errors.Join(err, applyErr)
		}
	}
	if err != nil {
		logger.Errorf("Update run finished with failed policy entries: %v", err)
	}
	return err
}

// AddFlags adds the update flags to the given Cobra command.
func (it *UpdateController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("dep", "", "Comma-separated dependency names to consider instead of the schedule")
	cmd.Flags().Bool("security-updates-only", false, "Only update dependencies with a known vulnerability")
	cmd.Flags().String("provider", "github", "Source-control provider (github, gitlab, local)")
}
