package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func Execute(version string) error {
	rootCmd = &cobra.Command{
		Use:   "appstack",
		Short: "Appstack - framework-agnostic HTTP application toolkit",
		Long: `Appstack is an HTTP application toolkit built around declarative
routes, composable middleware pipelines, and an installable plugin system.

This CLI runs an appstack server from a configuration file.`,
		Version: version,
	}

	rootCmd.AddCommand(newServerCmd())

	return rootCmd.Execute()
}
