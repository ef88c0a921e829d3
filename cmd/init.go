package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file.",
	Long: `Write a commented configuration file with every setting at its default.
The file goes to the path given with --config, or to '` + config.DefaultConfigFilename + `'
in the current directory. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	// The command writes a fresh configuration, so the inherited
	// configuration loading must not run.
	PersistentPreRun: func(_ *cobra.Command, _ []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		filename := configFilenameFromFlag
		if filename == "" {
			filename = config.DefaultConfigFilename
		}

		if err := config.WriteDefaultConfig(filename); err != nil {
			logger.Fatalf(cmd.Context(), "Failed to write configuration: %v", err)
		}

		logger.Infof(cmd.Context(), "Wrote starter configuration to '%s'", filename)
		logger.Infof(cmd.Context(), "Fill in catalog_base_url and output_path, then run 'fonoteka <album id>'")
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(initCmd)
}
