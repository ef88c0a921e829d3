package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
)

//go:generate $MOCKGEN -source=transcoder.go -destination=mocks/transcoder_mock.go

const (
	encoderBinary = "ffmpeg"
	taggerBinary  = "opustags"

	encoderBitrate          = "192k"
	encoderCompressionLevel = "10"

	// encoderCopyChunkSize is the read buffer size used while feeding the encoder.
	encoderCopyChunkSize = 64 * 1024
)

// commandContext creates the encoder and tagger processes.
//
//nolint:gochecknoglobals // Seam for swapping the process launcher in tests.
var commandContext = exec.CommandContext

// Transcoder turns a raw audio stream into a tagged .opus file on disk.
type Transcoder interface {
	// Transcode encodes the request's input into an .opus file at OutputPath.
	// The file appears atomically: bytes go to a temporary sibling which is
	// renamed into place only after encoding and tagging succeed.
	Transcode(ctx context.Context, request *TranscodeRequest) error
}

// TranscoderImpl implements the Transcoder interface on top of external
// ffmpeg and opustags binaries.
type TranscoderImpl struct {
	// cfg holds the application configuration.
	cfg *config.Config
}

// NewTranscoder creates a new Transcoder instance.
func NewTranscoder(cfg *config.Config) Transcoder {
	return &TranscoderImpl{
		cfg: cfg,
	}
}

// Transcode encodes the request's input into an .opus file at OutputPath.
func (t *TranscoderImpl) Transcode(ctx context.Context, request *TranscodeRequest) error {
	progress := request.Progress
	if progress == nil {
		progress = func(ProgressState, int64) {}
	}

	tempPath := trackTempPath(request.OutputPath)

	isSuccessful := false

	defer func() {
		if isSuccessful {
			return
		}

		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove partial file %s: %v", tempPath, removeErr)
		}
	}()

	bytesWritten, err := t.runEncoder(ctx, request, tempPath, progress)
	if err != nil {
		return err
	}

	// The encoder can only write a single artist tag; albums with several
	// artists get their ARTISTS tags from the tagger.
	if len(request.Metadata.Artists) > 1 {
		if err = t.runTagger(ctx, request.Metadata.Artists, tempPath); err != nil {
			return err
		}
	}

	if err = os.Rename(tempPath, request.OutputPath); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", tempPath, request.OutputPath, err)
	}

	isSuccessful = true

	progress(StateFinished, bytesWritten)

	return nil
}

// runEncoder feeds the input stream to the encoder's stdin and waits for it
// to finish writing the temporary file.
func (t *TranscoderImpl) runEncoder(
	ctx context.Context,
	request *TranscodeRequest,
	tempPath string,
	progress func(ProgressState, int64),
) (int64, error) {
	command := commandContext(ctx, encoderBinary, buildEncoderArgs(&request.Metadata, tempPath)...)

	stdin, err := command.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncoderStdin, err)
	}

	if err = command.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", encoderBinary, err)
	}

	progress(StateDownloading, 0)

	bytesWritten, feedErr := t.feedEncoder(ctx, request.Input, stdin, progress)

	closeErr := stdin.Close()

	if feedErr != nil || closeErr != nil {
		// Reap the process before reporting the original failure.
		_ = command.Wait() //nolint:errcheck // The feed error is the one worth reporting.

		if feedErr != nil {
			return bytesWritten, feedErr
		}

		return bytesWritten, fmt.Errorf("%w: %w", ErrEncoderStdin, closeErr)
	}

	progress(StateTranscoding, bytesWritten)

	if err = command.Wait(); err != nil {
		return bytesWritten, fmt.Errorf("%w: %w", ErrEncoderExit, err)
	}

	return bytesWritten, nil
}

// feedEncoder copies the input stream to the encoder's stdin chunk by chunk,
// reporting downloaded bytes after every chunk.
func (t *TranscoderImpl) feedEncoder(
	ctx context.Context,
	input io.Reader,
	stdin io.Writer,
	progress func(ProgressState, int64),
) (int64, error) {
	var destination io.Writer = stdin

	shouldShowProgress := logger.Level() <= zap.InfoLevel && t.cfg.TrackConcurrency == 1
	if shouldShowProgress {
		bar := progressbar.DefaultBytes(-1, "Downloading")
		destination = io.MultiWriter(stdin, bar)
	}

	var bytesWritten int64

	chunk := make([]byte, encoderCopyChunkSize)

	for {
		if ctx.Err() != nil {
			return bytesWritten, ctx.Err()
		}

		bytesRead, readErr := input.Read(chunk)

		if bytesRead > 0 {
			written, writeErr := destination.Write(chunk[:bytesRead])

			bytesWritten += int64(written)

			if writeErr != nil {
				return bytesWritten, fmt.Errorf("%w: %w", ErrEncoderStdin, writeErr)
			}

			progress(StateDownloading, bytesWritten)
		}

		if readErr == io.EOF {
			return bytesWritten, nil
		}

		if readErr != nil {
			return bytesWritten, fmt.Errorf("failed to read audio stream: %w", readErr)
		}
	}
}

// runTagger rewrites the artist tags of the encoded file with one ARTISTS
// entry per artist.
func (t *TranscoderImpl) runTagger(ctx context.Context, artists []string, outputPath string) error {
	args := []string{"-i"}

	for _, artist := range artists {
		args = append(args, "-a", "ARTISTS="+artist)
	}

	args = append(args, outputPath)

	if err := commandContext(ctx, taggerBinary, args...).Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrTaggerExit, err)
	}

	return nil
}

// buildEncoderArgs assembles the encoder invocation: fixed encoding settings,
// then the metadata tags, then the output path.
func buildEncoderArgs(metadata *TrackMetadata, outputPath string) []string {
	args := []string{
		"-i", "pipe:0",
		"-vn",
		"-c:a", "libopus",
		"-b:a", encoderBitrate,
		"-vbr", "on",
		"-compression_level", encoderCompressionLevel,
		"-nostdin",
		"-y",
	}

	appendTag := func(key, value string) {
		args = append(args, "-metadata", key+"="+value)
	}

	if metadata.Album != "" {
		appendTag("album", metadata.Album)
	}

	if metadata.AlbumArtist != "" {
		appendTag("album_artist", metadata.AlbumArtist)
	}

	if len(metadata.Artists) == 1 {
		appendTag("artist", metadata.Artists[0])
	}

	if metadata.Title != "" {
		appendTag("title", metadata.Title)
	}

	if metadata.TrackNumber > 0 {
		appendTag("track", strconv.FormatInt(metadata.TrackNumber, 10))
	}

	if metadata.DiscNumber > 0 {
		appendTag("disc", strconv.FormatInt(metadata.DiscNumber, 10))
	}

	if metadata.Year > 0 {
		appendTag("year", strconv.Itoa(metadata.Year))
	}

	return append(args, outputPath)
}
