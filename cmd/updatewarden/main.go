package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/updatewarden/internal/domain/entities"
)

func buildRootCommand(root entities.Controller) *cobra.Command {
	bind := root.GetBind()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:           bind.Use,
		Short:         bind.Short,
		Long:          bind.Long,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(command *cobra.Command, _ []string) {
			if verbose, _ := command.Flags().GetBool("verbose"); verbose {
				logger.SetLevel(logger.DebugLevel)
			}
		},
		RunE: root.Execute,
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to settings file (default: auto-detect)")
	cmd.PersistentFlags().Bool("dry-run", false,
		"Print the diff of every updated file without applying anything")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	root.AddFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, controllers []entities.Controller) {
	parents := make(map[string]*cobra.Command)
	for _, controller := range controllers {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			RunE:  controller.Execute,
		}
		controller.AddFlags(subCmd)

		if bind.Parent == "" {
			rootCmd.AddCommand(subCmd)
			continue
		}
		parent, ok := parents[bind.Parent]
		if !ok {
			//nolint:exhaustruct // Grouping command without a run function
			parent = &cobra.Command{Use: bind.Parent, Short: "Manage " + bind.Parent}
			parents[bind.Parent] = parent
			rootCmd.AddCommand(parent)
		}
		parent.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	appContext, err := injectAppContext()
	if err != nil {
		logger.Fatalf("Error wiring 'updatewarden': %s", err)
	}

	cobraRoot := buildRootCommand(appContext.GetRootController())
	addSubcommands(cobraRoot, appContext.GetControllers())

	if err = cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'updatewarden': %s", err)
	}
}
