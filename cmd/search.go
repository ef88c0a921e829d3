package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aphonin/fonoteka/internal/app"
	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
)

var (
	//nolint:gochecknoglobals // Cobra flags are bound to package-level variables.
	searchAlbumsFromFlag bool

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	searchCmd = &cobra.Command{
		Use:   "search [flags] {query}",
		Short: "Search the catalog for tracks or albums.",
		Long: `Search the catalog and print the matches with their IDs.
By default tracks are searched; pass --albums to search albums instead.
Album IDs from the output can be fed straight back into 'fonoteka'.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, args []string) {
			if err := config.ValidateConfig(appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
			}

			app.ExecuteSearchCommand(cmd.Context(), appConfig, strings.Join(args, " "), searchAlbumsFromFlag)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	searchCmd.Flags().BoolVarP(
		&searchAlbumsFromFlag,
		"albums",
		"a",
		false,
		"search albums instead of tracks.")

	rootCmd.AddCommand(searchCmd)
}
