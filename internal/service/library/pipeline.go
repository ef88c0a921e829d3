package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aphonin/fonoteka/internal/client/catalog"
	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/constants"
	"github.com/aphonin/fonoteka/internal/logger"
	"github.com/aphonin/fonoteka/internal/utils"
)

// ManifestResolver turns a track manifest into a resolved stream source.
type ManifestResolver func(manifest *catalog.TrackManifest) (*StreamSource, error)

// Pipeline spawns the download tasks of an album.
type Pipeline interface {
	// Begin creates the album folder, spawns one background task per
	// missing track plus one for a missing cover, and returns the task
	// handles without waiting for any of them. An empty slice means
	// everything was already in place.
	Begin(ctx context.Context, album *catalog.Album) ([]*Task, error)
}

// PipelineImpl implements the Pipeline interface.
type PipelineImpl struct {
	// cfg holds the application configuration.
	cfg *config.Config
	// client talks to the music catalog.
	client catalog.Client
	// resolver decodes track manifests into stream sources.
	resolver ManifestResolver
	// streamer reassembles segmented tracks.
	streamer SegmentStreamer
	// transcoder encodes raw audio into tagged .opus files.
	transcoder Transcoder
	// trackPool bounds the number of tracks processed at the same time.
	trackPool *Pool
	// events carries progress updates to the aggregator.
	events *Queue[Event]
	// stats accumulates counters for the end-of-run summary.
	stats *DownloadStatistics
	// retry drives repeated track and cover attempts.
	retry retryPolicy
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(
	cfg *config.Config,
	client catalog.Client,
	streamer SegmentStreamer,
	transcoder Transcoder,
	trackPool *Pool,
	events *Queue[Event],
	stats *DownloadStatistics,
) Pipeline {
	return &PipelineImpl{
		cfg:        cfg,
		client:     client,
		resolver:   ResolveManifest,
		streamer:   streamer,
		transcoder: transcoder,
		trackPool:  trackPool,
		events:     events,
		stats:      stats,
		retry: retryPolicy{
			attempts:  cfg.RetryAttemptsCount,
			basePause: cfg.ParsedRetryBasePause,
		},
	}
}

// Begin creates the album folder and spawns the album's download tasks.
func (p *PipelineImpl) Begin(ctx context.Context, album *catalog.Album) ([]*Task, error) {
	albumFolder := albumFolderPath(p.cfg.OutputPath, album)

	if err := os.MkdirAll(albumFolder, constants.DefaultFolderPermissions); err != nil {
		return nil, fmt.Errorf("failed to create album folder '%s': %w", albumFolder, err)
	}

	multiDisc := isMultiDisc(album)

	tasks := make([]*Task, 0, len(album.Tracks)+1)

	for _, track := range album.Tracks {
		trackPath := filepath.Join(albumFolder, trackFilename(&track, multiDisc))

		exists, err := utils.IsFileExist(trackPath)
		if err != nil {
			logger.Warnf(ctx, "Failed to check track file '%s': %v", trackPath, err)
		}

		if exists {
			logger.Infof(ctx, "Track '%s' already exists, skipping download", trackPath)
			p.stats.trackSkipped()

			continue
		}

		task := newTask(fmt.Sprintf("track '%s'", track.Title))
		tasks = append(tasks, task)

		go p.runTrackTask(ctx, task, album, track, trackPath)
	}

	coverPath := filepath.Join(albumFolder, coverFilename)

	exists, err := utils.IsFileExist(coverPath)
	if err != nil {
		logger.Warnf(ctx, "Failed to check cover file '%s': %v", coverPath, err)
	}

	if exists {
		logger.Debugf(ctx, "Cover '%s' already exists, skipping download", coverPath)
		p.stats.coverSkipped()
	} else {
		task := newTask(fmt.Sprintf("cover of '%s'", album.Title))
		tasks = append(tasks, task)

		go p.runCoverTask(ctx, task, album, coverPath)
	}

	return tasks, nil
}

// runTrackTask drives one track through its retry budget while holding a
// track permit. The permit is acquired here, not in Begin, so spawning an
// album never blocks on a saturated pool.
func (p *PipelineImpl) runTrackTask(
	ctx context.Context,
	task *Task,
	album *catalog.Album,
	track catalog.TrackSummary,
	trackPath string,
) {
	if err := p.trackPool.Acquire(ctx); err != nil {
		p.events.Push(TrackFailed{AlbumID: album.ID, TrackID: track.ID, Err: err})
		task.complete(err)

		return
	}
	defer p.trackPool.Release()

	var bytesDownloaded int64

	err := p.retry.run(ctx, func(ctx context.Context) error {
		var attemptErr error

		bytesDownloaded, attemptErr = p.downloadTrack(ctx, album, track, trackPath)
		if attemptErr != nil {
			logger.Warnf(ctx, "Attempt to download track '%s' failed: %v", track.Title, attemptErr)
		}

		return attemptErr
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to download track '%s': %v", track.Title, err)

		p.events.Push(TrackFailed{AlbumID: album.ID, TrackID: track.ID, Err: err})
		p.stats.trackFailed()
		p.stats.recordError(album.Title, track.Title, "track download", err)

		task.complete(err)

		return
	}

	logger.Debugf(ctx, "Track '%s' is ready", trackPath)
	p.stats.trackDownloaded(bytesDownloaded)
	task.complete(nil)
}

// downloadTrack performs one full attempt: manifest, stream, transcode.
func (p *PipelineImpl) downloadTrack(
	ctx context.Context,
	album *catalog.Album,
	track catalog.TrackSummary,
	trackPath string,
) (int64, error) {
	p.events.Push(TrackProgress{AlbumID: album.ID, TrackID: track.ID, State: StateWaiting})

	manifest, err := p.client.GetTrackManifest(ctx, track.ID, p.cfg.Quality)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch track manifest: %w", err)
	}

	source, err := p.resolver(manifest)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve track manifest: %w", err)
	}

	stream, err := p.openStream(ctx, source)
	if err != nil {
		return 0, err
	}

	defer stream.Close() //nolint:errcheck // Closing the stream, error is not critical.

	var bytesDownloaded int64

	request := &TranscodeRequest{
		Input:      stream,
		Metadata:   newTrackMetadata(album, &track),
		OutputPath: trackPath,
		Progress: func(state ProgressState, bytes int64) {
			bytesDownloaded = bytes

			p.events.Push(TrackProgress{AlbumID: album.ID, TrackID: track.ID, State: state, Bytes: bytes})
		},
	}

	if err = p.transcoder.Transcode(ctx, request); err != nil {
		return 0, err
	}

	return bytesDownloaded, nil
}

// openStream turns a resolved source into a readable audio stream.
func (p *PipelineImpl) openStream(ctx context.Context, source *StreamSource) (io.ReadCloser, error) {
	switch source.Kind {
	case StreamSourceDirect:
		stream, err := p.client.FetchURL(ctx, source.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open direct stream: %w", err)
		}

		return stream, nil

	case StreamSourceSegmented:
		stream, err := p.streamer.Stream(ctx, source.Plan)
		if err != nil {
			return nil, fmt.Errorf("failed to open segmented stream: %w", err)
		}

		return stream, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSourceKind, source.Kind)
	}
}

// runCoverTask drives the album cover through its retry budget. Covers do
// not hold track permits and do not appear on the progress board.
func (p *PipelineImpl) runCoverTask(ctx context.Context, task *Task, album *catalog.Album, coverPath string) {
	err := p.retry.run(ctx, func(ctx context.Context) error {
		attemptErr := p.downloadCover(ctx, album, coverPath)
		if attemptErr != nil {
			logger.Warnf(ctx, "Attempt to download cover for album '%s' failed: %v", album.Title, attemptErr)
		}

		return attemptErr
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to download cover for album '%s': %v", album.Title, err)

		p.stats.coverFailed()
		p.stats.recordError(album.Title, coverFilename, "cover download", err)

		task.complete(err)

		return
	}

	logger.Debugf(ctx, "Cover '%s' is ready", coverPath)
	p.stats.coverDownloaded()
	task.complete(nil)
}

// downloadCover fetches the album cover into a temporary file and renames it
// into place.
func (p *PipelineImpl) downloadCover(ctx context.Context, album *catalog.Album, coverPath string) error {
	image, err := p.client.FetchImage(ctx, album.Cover)
	if err != nil {
		return fmt.Errorf("failed to fetch cover image: %w", err)
	}

	defer image.Close() //nolint:errcheck // Closing the response body, error is not critical.

	tempPath := coverPath + constants.ExtensionPart

	isSuccessful := false

	defer func() {
		if isSuccessful {
			return
		}

		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to remove partial file %s: %v", tempPath, removeErr)
		}
	}()

	file, err := os.OpenFile(filepath.Clean(tempPath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create cover file: %w", err)
	}

	if _, err = io.Copy(file, image); err != nil {
		file.Close() //nolint:errcheck,gosec // The copy error is the one worth reporting.

		return fmt.Errorf("failed to save cover image: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close cover file: %w", err)
	}

	if err = os.Rename(tempPath, coverPath); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", tempPath, coverPath, err)
	}

	isSuccessful = true

	return nil
}

// newTrackMetadata assembles the tag values for one track of an album.
func newTrackMetadata(album *catalog.Album, track *catalog.TrackSummary) TrackMetadata {
	return TrackMetadata{
		Album:       album.Title,
		AlbumArtist: album.Artist.Name,
		Artists: utils.Map(track.Artists, func(artist catalog.Artist) string {
			return artist.Name
		}),
		Title:       track.Title,
		TrackNumber: track.TrackNumber,
		DiscNumber:  track.VolumeNumber,
		Year:        album.ReleaseDate.Year(),
	}
}
