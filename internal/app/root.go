package app

import (
	"context"
	"strconv"

	"github.com/aphonin/fonoteka/internal/client/catalog"
	"github.com/aphonin/fonoteka/internal/client/subsonic"
	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
	"github.com/aphonin/fonoteka/internal/service/library"
)

// ExecuteRootCommand is the entry point for the download workflow.
// It assembles the catalog client, the concurrency pools, the pipeline and
// the progress aggregator, and downloads the requested albums.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, rawAlbumIDs []string) {
	albumIDs, err := parseAlbumIDs(rawAlbumIDs)
	if err != nil {
		logger.Fatalf(ctx, "Failed to parse album IDs: %v", err)
	}

	catalogClient, err := catalog.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	var refresher library.Refresher

	if cfg.SubsonicURL != "" {
		subsonicClient, subsonicErr := subsonic.NewClient(cfg)
		if subsonicErr != nil {
			logger.Fatalf(ctx, "Failed to initialize subsonic client: %v", subsonicErr)
		}

		refresher = subsonicClient
	}

	// Both concurrency limits live here, with the rest of the wiring:
	// the pipeline and the streamer only ever see the pool they use.
	trackPool := library.NewPool(cfg.TrackConcurrency)
	chunkPool := library.NewPool(cfg.ChunkConcurrency)

	events := library.NewQueue[library.Event]()
	stats := library.NewDownloadStatistics()

	streamer := library.NewSegmentStreamer(catalogClient.FetchURL, chunkPool)
	transcoder := library.NewTranscoder(cfg)
	pipeline := library.NewPipeline(cfg, catalogClient, streamer, transcoder, trackPool, events, stats)
	aggregator := library.NewAggregator(events, library.LogRenderer{}, refresher, library.DefaultRenderInterval)

	s := library.NewService(cfg, catalogClient, pipeline, aggregator, events, stats)

	// Ensure statistics are ALWAYS printed, even on panic or os.Exit bypass.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	if err = s.DownloadAlbums(ctx, albumIDs); err != nil {
		logger.Errorf(ctx, "Download run failed: %v", err)
	}
}

// parseAlbumIDs turns the command-line arguments into numeric album IDs.
func parseAlbumIDs(rawAlbumIDs []string) ([]int64, error) {
	albumIDs := make([]int64, 0, len(rawAlbumIDs))

	for _, rawAlbumID := range rawAlbumIDs {
		albumID, err := strconv.ParseInt(rawAlbumID, 10, 64)
		if err != nil {
			return nil, err
		}

		albumIDs = append(albumIDs, albumID)
	}

	return albumIDs, nil
}
