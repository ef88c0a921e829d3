package library

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aphonin/fonoteka/internal/client/catalog"
	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/constants"
	"github.com/aphonin/fonoteka/internal/logger"
)

// Service is the entry point of the download workflow.
type Service interface {
	// DownloadAlbums mirrors the given albums into the local library and
	// blocks until every album settles or the context is canceled. A
	// failing album, track or cover never aborts the rest of the run.
	DownloadAlbums(ctx context.Context, albumIDs []int64) error
	// PrintDownloadSummary logs a formatted summary of the finished run.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the Service interface.
type ServiceImpl struct {
	// cfg holds the application configuration.
	cfg *config.Config
	// client talks to the music catalog.
	client catalog.Client
	// pipeline spawns per-album download tasks.
	pipeline Pipeline
	// aggregator renders download progress from the event queue.
	aggregator *Aggregator
	// events carries progress updates from tasks to the aggregator.
	events *Queue[Event]
	// stats accumulates counters for the end-of-run summary.
	stats *DownloadStatistics
}

// NewService creates a new Service instance.
func NewService(
	cfg *config.Config,
	client catalog.Client,
	pipeline Pipeline,
	aggregator *Aggregator,
	events *Queue[Event],
	stats *DownloadStatistics,
) Service {
	return &ServiceImpl{
		cfg:        cfg,
		client:     client,
		pipeline:   pipeline,
		aggregator: aggregator,
		events:     events,
		stats:      stats,
	}
}

// DownloadAlbums mirrors the given albums into the local library.
func (s *ServiceImpl) DownloadAlbums(ctx context.Context, albumIDs []int64) error {
	s.stats.start()

	if err := os.MkdirAll(s.cfg.OutputPath, constants.DefaultFolderPermissions); err != nil {
		return fmt.Errorf("failed to create output folder '%s': %w", s.cfg.OutputPath, err)
	}

	aggregatorDone := make(chan struct{})

	go func() {
		defer close(aggregatorDone)

		s.aggregator.Run(ctx)
	}()

	var waitGroup sync.WaitGroup

	for _, albumID := range albumIDs {
		if ctx.Err() != nil {
			logger.Warnf(ctx, "Interrupted, skipping the remaining albums")

			break
		}

		album, err := s.client.GetAlbum(ctx, albumID)
		if err != nil {
			logger.Errorf(ctx, "Failed to fetch album %d: %v", albumID, err)
			s.stats.recordError(fmt.Sprintf("album %d", albumID), "album metadata", "metadata fetch", err)

			continue
		}

		logger.Infof(ctx, "Downloading album '%s - %s'", album.Artist.Name, album.Title)
		s.events.Push(AlbumDiscovered{AlbumID: albumID, Album: album})

		tasks, err := s.pipeline.Begin(ctx, album)
		if err != nil {
			logger.Errorf(ctx, "Failed to start album '%s': %v", album.Title, err)
			s.stats.recordError(album.Title, "album folder", "album setup", err)
			s.events.Push(AlbumDone{AlbumID: albumID})

			continue
		}

		waitGroup.Add(1)

		go s.awaitAlbum(ctx, &waitGroup, album, tasks)
	}

	waitGroup.Wait()

	// No further events can arrive; closing the queue lets the aggregator
	// flush its final render and stop.
	s.events.Close()
	<-aggregatorDone

	s.stats.finish()

	return nil
}

// awaitAlbum waits for every task of an album to settle and then announces
// the album as done. Task errors were already counted where they happened.
func (s *ServiceImpl) awaitAlbum(ctx context.Context, waitGroup *sync.WaitGroup, album *catalog.Album, tasks []*Task) {
	defer waitGroup.Done()

	for _, task := range tasks {
		if err := task.Wait(ctx); err != nil {
			logger.Debugf(ctx, "Task for %s settled with an error: %v", task.Name(), err)
		}
	}

	s.events.Push(AlbumDone{AlbumID: album.ID})
	logger.Infof(ctx, "Album '%s' is done", album.Title)
}
