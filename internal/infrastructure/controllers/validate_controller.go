package controllers

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/updatewarden/internal/domain/commands"
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

var errMissingPolicyFile = errors.New("a policy file path is required")

// ValidateController handles the "validate" subcommand.
type ValidateController struct {
	command commands.Validate
}

// NewValidateController creates a new ValidateController.
func NewValidateController(command commands.Validate) *ValidateController {
	return &ValidateController{command: command}
}

// GetBind returns the Cobra command metadata for the validate controller.
func (it *ValidateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "validate <policy-file>",
		Short: "Validate an update policy file",
		Long: `Validate a dependabot.yml update policy against the schema and the
cross-entry rules without contacting any provider.`,
	}
}

// Execute validates the policy file given as argument.
func (it *ValidateController) Execute(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Help()
		return errMissingPolicyFile
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read policy file %q: %w", args[0], err)
	}

	document, err := it.command.Execute(content)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d update entries\n", args[0], len(document.Updates))
	return nil
}

// AddFlags adds no flags; validate only takes the policy file.
func (it *ValidateController) AddFlags(_ *cobra.Command) {}
