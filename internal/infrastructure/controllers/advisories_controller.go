package controllers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/updatewarden/internal/domain/commands"
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// AdvisoriesController handles the "advisories import" subcommand.
type AdvisoriesController struct {
	command commands.ImportAdvisories
}

// NewAdvisoriesController creates a new AdvisoriesController.
func NewAdvisoriesController(command commands.ImportAdvisories) *AdvisoriesController {
	return &AdvisoriesController{command: command}
}

// GetBind returns the Cobra command metadata for the advisories controller.
func (it *AdvisoriesController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:    "import",
		Short:  "Import the GitHub security advisory database",
		Parent: "advisories",
		Long: `Download every reviewed GitHub security advisory and store it in the
advisory cache file (advisories.file in the settings), where update runs read it.

The import fails without writing anything when an advisory names an ecosystem
that has no package-manager mapping.`,
	}
}

// Execute imports the advisory feed into the configured cache file.
func (it *AdvisoriesController) Execute(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		settings.Advisories.File = output
	}

	imported, err := it.command.Execute(context.Background(), settings)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d advisories into %s\n", imported, settings.Advisories.File)
	return nil
}

// AddFlags adds the import-specific flags to the given Cobra command.
func (it *AdvisoriesController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Advisory cache file (default: advisories.file from the settings)")
}
