package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/aphonin/fonoteka/internal/constants"
	"github.com/aphonin/fonoteka/internal/logger"
)

// Config holds all configuration settings.
type Config struct {
	// CatalogBaseURL is the base URL of the music catalog service.
	CatalogBaseURL string `mapstructure:"catalog_base_url"`
	// OutputPath is the directory path where the library is assembled.
	OutputPath string `mapstructure:"output_path"`
	// Quality is the stream quality requested from the catalog (low, high, lossless).
	Quality string `mapstructure:"quality"`
	// TrackConcurrency is the maximum number of tracks processed simultaneously.
	TrackConcurrency int64 `mapstructure:"track_concurrency"`
	// ChunkConcurrency is the maximum number of stream segments fetched simultaneously,
	// shared across all tracks.
	ChunkConcurrency int64 `mapstructure:"chunk_concurrency"`
	// RetryAttemptsCount is the total number of attempts per track before giving up.
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count"`
	// RetryBasePause is the pause before the first retry; it doubles on each further retry.
	RetryBasePause string `mapstructure:"retry_base_pause"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// MaxLogLength is the maximum size of a dumped HTTP request/response in debug logs (e.g., "1MB").
	MaxLogLength string `mapstructure:"max_log_length"`
	// SubsonicURL is the base URL of a Subsonic-compatible server to notify after downloads.
	// Empty disables the notification.
	SubsonicURL string `mapstructure:"subsonic_url"`
	// SubsonicUsername is the user the scan request authenticates as.
	SubsonicUsername string `mapstructure:"subsonic_username"`
	// SubsonicPassword is the password used to derive the scan request token.
	SubsonicPassword string `mapstructure:"subsonic_password"`
	// ParsedRetryBasePause is the parsed retry base pause duration.
	ParsedRetryBasePause time.Duration
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedMaxLogLength is the parsed maximum log dump size in bytes.
	ParsedMaxLogLength uint64
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".fonoteka.yaml"

	// DefaultQuality is the stream quality requested when none is configured.
	DefaultQuality = "lossless"

	// DefaultTrackConcurrency is the default number of simultaneously processed tracks.
	DefaultTrackConcurrency = 2

	// DefaultChunkConcurrency is the default number of simultaneously fetched stream segments.
	DefaultChunkConcurrency = 4

	// DefaultRetryAttemptsCount is the default total number of attempts per track.
	DefaultRetryAttemptsCount = 5

	// DefaultRetryBasePause is the default pause before the first retry.
	DefaultRetryBasePause = "1s"

	// DefaultLogLevel is the default logging verbosity.
	DefaultLogLevel = "info"

	// DefaultMaxLogLength is the default maximum size (in bytes) for HTTP dumps in debug logs.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB
)

// validQualities lists the stream qualities the catalog understands.
//
//nolint:gochecknoglobals // This is an immutable set used as a constant for validation purposes.
var validQualities = map[string]struct{}{
	"low":      {},
	"high":     {},
	"lossless": {},
}

// Static error definitions for better error handling.
var (
	// ErrEmptyCatalogBaseURL indicates that the catalog base URL is missing.
	ErrEmptyCatalogBaseURL = errors.New("catalog_base_url cannot be empty")
	// ErrEmptyOutputPath indicates that the output path is missing.
	ErrEmptyOutputPath = errors.New("output_path cannot be empty")
	// ErrInvalidQuality indicates that the quality setting is invalid.
	ErrInvalidQuality = errors.New("invalid quality")
	// ErrInvalidTrackConcurrency indicates that the track concurrency is invalid.
	ErrInvalidTrackConcurrency = errors.New("track_concurrency must be a positive integer")
	// ErrInvalidChunkConcurrency indicates that the chunk concurrency is invalid.
	ErrInvalidChunkConcurrency = errors.New("chunk_concurrency must be a positive integer")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry_attempts_count must be a positive integer")
	// ErrInvalidRetryBasePause indicates that the retry base pause duration is invalid.
	ErrInvalidRetryBasePause = errors.New("retry_base_pause must be positive")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrIncompleteSubsonicConfig indicates that the Subsonic server is configured without credentials.
	ErrIncompleteSubsonicConfig = errors.New("subsonic_url requires subsonic_username and subsonic_password")
	// ErrConfigAlreadyExists indicates that the configuration file is already present.
	ErrConfigAlreadyExists = errors.New("configuration file already exists")
)

// LoadConfig loads configuration settings from a YAML file.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:cyclop // Validation functions naturally have high complexity due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	if strings.TrimSpace(cfg.CatalogBaseURL) == "" {
		return ErrEmptyCatalogBaseURL
	}

	if strings.TrimSpace(cfg.OutputPath) == "" {
		return ErrEmptyOutputPath
	}

	quality := strings.ToLower(strings.TrimSpace(cfg.Quality))
	if _, ok := validQualities[quality]; !ok {
		return fmt.Errorf("%w: '%s'", ErrInvalidQuality, cfg.Quality)
	}

	cfg.Quality = quality

	if cfg.TrackConcurrency <= 0 {
		return ErrInvalidTrackConcurrency
	}

	if cfg.ChunkConcurrency <= 0 {
		return ErrInvalidChunkConcurrency
	}

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	cfg.ParsedRetryBasePause, err = time.ParseDuration(cfg.RetryBasePause)
	if err != nil {
		return fmt.Errorf("failed to parse retry base pause: %w", err)
	}

	if cfg.ParsedRetryBasePause <= 0 {
		return ErrInvalidRetryBasePause
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	// Parse max_log_length if set (empty string means the built-in default).
	maxLogLength := strings.TrimSpace(cfg.MaxLogLength)
	if maxLogLength != "" && maxLogLength != "0" {
		cfg.ParsedMaxLogLength, err = humanize.ParseBytes(maxLogLength)
		if err != nil {
			return fmt.Errorf("failed to parse max log length: %w", err)
		}
	}

	if strings.TrimSpace(cfg.SubsonicURL) != "" &&
		(strings.TrimSpace(cfg.SubsonicUsername) == "" || strings.TrimSpace(cfg.SubsonicPassword) == "") {
		return ErrIncompleteSubsonicConfig
	}

	return nil
}

// WriteDefaultConfig creates a commented starter configuration file.
// It refuses to overwrite an existing file.
func WriteDefaultConfig(configFilename string) error {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	if _, err := os.Stat(configFilename); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigAlreadyExists, configFilename)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	content, err := yaml.Marshal(defaultConfigNode())
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFilename, content, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// defaultConfigNode builds the starter configuration as a YAML node tree,
// so key order and per-key comments survive marshalling.
func defaultConfigNode() *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}

	appendScalarEntry(root, "catalog_base_url", "", yaml.DoubleQuotedStyle,
		"Base URL of the music catalog service.")
	appendScalarEntry(root, "output_path", "", yaml.DoubleQuotedStyle,
		"Directory the library is assembled in.")
	appendScalarEntry(root, "quality", DefaultQuality, yaml.DoubleQuotedStyle,
		"Stream quality requested from the catalog: low, high or lossless.")
	appendScalarEntry(root, "track_concurrency", fmt.Sprint(DefaultTrackConcurrency), 0,
		"How many tracks are processed at the same time.")
	appendScalarEntry(root, "chunk_concurrency", fmt.Sprint(DefaultChunkConcurrency), 0,
		"How many stream segments are fetched at the same time, shared across all tracks.")
	appendScalarEntry(root, "retry_attempts_count", fmt.Sprint(DefaultRetryAttemptsCount), 0,
		"Total attempts per track before it is reported as failed.")
	appendScalarEntry(root, "retry_base_pause", DefaultRetryBasePause, yaml.DoubleQuotedStyle,
		"Pause before the first retry; doubles on each further retry.")
	appendScalarEntry(root, "log_level", DefaultLogLevel, yaml.DoubleQuotedStyle,
		"Logging verbosity: debug, info, warn or error.")
	appendScalarEntry(root, "max_log_length", "1MB", yaml.DoubleQuotedStyle,
		"Maximum size of HTTP dumps in debug logs.")
	appendScalarEntry(root, "subsonic_url", "", yaml.DoubleQuotedStyle,
		"Optional Subsonic-compatible server to ping for a rescan after downloads.")
	appendScalarEntry(root, "subsonic_username", "", yaml.DoubleQuotedStyle, "")
	appendScalarEntry(root, "subsonic_password", "", yaml.DoubleQuotedStyle, "")

	return root
}

// appendScalarEntry appends a key-value pair to a mapping node,
// attaching an optional comment above the key.
func appendScalarEntry(mapNode *yaml.Node, key, value string, style yaml.Style, comment string) {
	keyNode := &yaml.Node{
		Kind:        yaml.ScalarNode,
		Value:       key,
		HeadComment: comment,
	}
	valueNode := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Value: value,
		Style: style,
	}

	mapNode.Content = append(mapNode.Content, keyNode, valueNode)
}
