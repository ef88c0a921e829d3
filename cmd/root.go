package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aphonin/fonoteka/internal/app"
	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "fonoteka [flags] {album ids}",
		Short: "Mirror albums from the music catalog into a local library of tagged .opus files.",
		Long: `Fonoteka downloads albums from the music catalog, re-encodes every track
into a tagged .opus file and lays the result out as

  <output>/<artist>/[<year>] <album>/NN. <title>.opus

ready for a Subsonic-compatible media server. Pass one or more album IDs;
tracks and covers that already exist on disk are skipped, so an interrupted
run can simply be repeated.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, albumIDs []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, albumIDs)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"directory the library is assembled in (the path will be created if it doesn't exist).")

	rootCmdFlags.StringP(
		"quality",
		"q",
		"",
		"stream quality requested from the catalog: low, high or lossless.")

	rootCmdFlags.Int64P(
		"concurrency",
		"n",
		0,
		"how many tracks are downloaded and encoded at the same time.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("quality"); flag != nil && flag.Changed {
		cfg.Quality, _ = flags.GetString("quality")
	}

	if flag := flags.Lookup("concurrency"); flag != nil && flag.Changed {
		cfg.TrackConcurrency, _ = flags.GetInt64("concurrency")
	}

	return config.ValidateConfig(cfg)
}
