package internal

import (
	"github.com/rios0rios0/updatewarden/internal/domain/entities"
	"github.com/rios0rios0/updatewarden/internal/infrastructure/controllers"
)

// AppInternal holds the root controller and the subcommand controllers
// resolved by the DIG container.
type AppInternal struct {
	root        *controllers.UpdateController
	controllers []entities.Controller
}

// NewAppInternal creates the application context.
func NewAppInternal(
	root *controllers.UpdateController,
	subcommands *[]entities.Controller,
) *AppInternal {
	return &AppInternal{root: root, controllers: *subcommands}
}

// GetRootController returns the controller bound to the root command.
func (it *AppInternal) GetRootController() *controllers.UpdateController {
	return it.root
}

// GetControllers returns the subcommand controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return it.controllers
}
