package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []interface{}{
		NewUnlockStrategyResolver,
		NewUpdateCommand,
		NewValidateCommand,
		NewImportAdvisoriesCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	if err := container.Provide(func(impl *UpdateCommand) Update {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *ValidateCommand) Validate {
		return impl
	}); err != nil {
		return err
	}
	return container.Provide(func(impl *ImportAdvisoriesCommand) ImportAdvisories {
		return impl
	})
}
