package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/updatewarden/internal"
)

func injectAppContext() (*internal.AppInternal, error) {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		return nil, err
	}

	// Invoke to get AppInternal
	var appInternal *internal.AppInternal
	if err := container.Invoke(func(ai *internal.AppInternal) {
		appInternal = ai
	}); err != nil {
		return nil, err
	}

	return appInternal, nil
}
