package entities

import "github.com/spf13/cobra"

// ControllerBind is the cobra metadata a controller exposes.
type ControllerBind struct {
	Use   string
	Short string
	Long  string

	// Parent nests the command under a grouping command (e.g. "advisories").
	Parent string
}

// Controller is a cobra-bound entry point.
type Controller interface {
	GetBind() ControllerBind
	Execute(command *cobra.Command, arguments []string) error
	AddFlags(command *cobra.Command)
}
