package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aphonin/fonoteka/internal/version"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of fonoteka.",
	Args:  cobra.NoArgs,
	// Printing the version must work without a configuration file.
	PersistentPreRun: func(_ *cobra.Command, _ []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(version.Full())
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(versionCmd)
}
