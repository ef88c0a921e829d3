package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/constants"
)

const testBaseConfigContent = `
catalog_base_url: "https://catalog.example.com"
output_path: "/config/output"
quality: "lossless"
track_concurrency: 2
chunk_concurrency: 4
retry_attempts_count: 5
retry_base_pause: "1s"
log_level: "info"
`

// newTestFlagSet builds a command carrying the same flags as the root command.
func newTestFlagSet() *cobra.Command {
	testCmd := &cobra.Command{Use: "test"}

	testCmd.Flags().StringP("output", "o", "", "output directory")
	testCmd.Flags().StringP("quality", "q", "", "stream quality")
	testCmd.Flags().Int64P("concurrency", "n", 0, "track concurrency")

	return testCmd
}

// loadTestConfig writes the base configuration to a temporary file and loads it.
func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "test-config.yaml")

	err := os.WriteFile(configPath, []byte(testBaseConfigContent), constants.DefaultFilePermissions)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)

	return cfg
}

// TestFlagOverrides tests that command-line flags correctly override configuration file values.
//
//nolint:tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides(t *testing.T) {
	tests := []struct {
		name           string
		flags          map[string]string
		expectedConfig func(*testing.T, *config.Config)
	}{
		{
			name:  "no flags - use config values",
			flags: map[string]string{},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.Equal(t, "lossless", cfg.Quality)
				assert.Equal(t, int64(2), cfg.TrackConcurrency)
			},
		},
		{
			name: "output flag only - override output path",
			flags: map[string]string{
				"output": "/flag/output",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/flag/output", cfg.OutputPath)
				assert.Equal(t, "lossless", cfg.Quality)
				assert.Equal(t, int64(2), cfg.TrackConcurrency)
			},
		},
		{
			name: "quality flag only - override quality",
			flags: map[string]string{
				"quality": "high",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/config/output", cfg.OutputPath)
				assert.Equal(t, "high", cfg.Quality)
			},
		},
		{
			name: "concurrency flag only - override track concurrency",
			flags: map[string]string{
				"concurrency": "8",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, int64(8), cfg.TrackConcurrency)
				assert.Equal(t, int64(4), cfg.ChunkConcurrency)
			},
		},
		{
			name: "all flags - full override",
			flags: map[string]string{
				"output":      "/triple/output",
				"quality":     "low",
				"concurrency": "1",
			},
			expectedConfig: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "/triple/output", cfg.OutputPath)
				assert.Equal(t, "low", cfg.Quality)
				assert.Equal(t, int64(1), cfg.TrackConcurrency)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t)

			testCmd := newTestFlagSet()

			for flagName, flagValue := range tt.flags {
				require.NoError(t, testCmd.Flags().Set(flagName, flagValue),
					"failed to set flag %s", flagName)
			}

			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.NoError(t, err)

			// Binding always runs validation, so derived fields are set too.
			assert.Equal(t, time.Second, cfg.ParsedRetryBasePause)

			tt.expectedConfig(t, cfg)
		})
	}
}

// TestFlagOverrides_InvalidValues tests that validation rejects bad flag values.
//
//nolint:tparallel // Cannot run in parallel due to Viper global state.
func TestFlagOverrides_InvalidValues(t *testing.T) {
	tests := []struct {
		name        string
		flags       map[string]string
		expectedErr error
	}{
		{
			name:        "unknown quality",
			flags:       map[string]string{"quality": "shiny"},
			expectedErr: config.ErrInvalidQuality,
		},
		{
			name:        "zero concurrency",
			flags:       map[string]string{"concurrency": "0"},
			expectedErr: config.ErrInvalidTrackConcurrency,
		},
		{
			name:        "blank output path",
			flags:       map[string]string{"output": "   "},
			expectedErr: config.ErrEmptyOutputPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadTestConfig(t)

			testCmd := newTestFlagSet()

			for flagName, flagValue := range tt.flags {
				require.NoError(t, testCmd.Flags().Set(flagName, flagValue))
			}

			err := bindFlagsToConfig(testCmd.Flags(), cfg)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}
