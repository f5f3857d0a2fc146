package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	constructors := []interface{}{
		NewUpdateController,
		NewValidateController,
		NewAdvisoriesController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// NewControllers aggregates the subcommand controllers for the AppInternal.
// The update controller is the root command and is not part of the list.
func NewControllers(
	validateController *ValidateController,
	advisoriesController *AdvisoriesController,
) *[]entities.Controller {
	return &[]entities.Controller{
		validateController,
		advisoriesController,
	}
}
