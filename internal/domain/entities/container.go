package entities

import (
	"math/rand/v2"
	"time"

	"go.uber.org/dig"
)

// RegisterProviders registers all entity providers with the DIG container.
// Settings requires a file path and is loaded by the controllers layer.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(func() *UpdateScheduler {
		seed := uint64(time.Now().UnixNano()) //nolint:gosec // non-negative wall clock
		return NewUpdateScheduler(rand.NewPCG(seed, seed>>1))
	})
}
