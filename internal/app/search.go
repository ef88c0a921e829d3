package app

import (
	"context"
	"strings"
	"time"

	"github.com/aphonin/fonoteka/internal/client/catalog"
	"github.com/aphonin/fonoteka/internal/config"
	"github.com/aphonin/fonoteka/internal/logger"
	"github.com/aphonin/fonoteka/internal/utils"
)

// ExecuteSearchCommand searches the catalog and prints the matches.
func ExecuteSearchCommand(ctx context.Context, cfg *config.Config, query string, searchAlbums bool) {
	catalogClient, err := catalog.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize catalog client: %v", err)
	}

	if searchAlbums {
		printAlbumMatches(ctx, catalogClient, query)

		return
	}

	printTrackMatches(ctx, catalogClient, query)
}

func printAlbumMatches(ctx context.Context, catalogClient catalog.Client, query string) {
	albums, err := catalogClient.SearchAlbums(ctx, query)
	if err != nil {
		logger.Fatalf(ctx, "Failed to search albums: %v", err)
	}

	if len(albums) == 0 {
		logger.Infof(ctx, "No albums matched '%s'", query)

		return
	}

	for _, album := range albums {
		logger.Infof(ctx, "%d: %s - %s [%d]",
			album.ID, artistNames(album.Artists), album.Title, album.ReleaseDate.Year())
	}
}

func printTrackMatches(ctx context.Context, catalogClient catalog.Client, query string) {
	tracks, err := catalogClient.SearchTracks(ctx, query)
	if err != nil {
		logger.Fatalf(ctx, "Failed to search tracks: %v", err)
	}

	if len(tracks) == 0 {
		logger.Infof(ctx, "No tracks matched '%s'", query)

		return
	}

	for _, track := range tracks {
		duration := time.Duration(track.Duration) * time.Second

		logger.Infof(ctx, "%d: %s - %s (%s)",
			track.ID, artistNames(track.Artists), track.Title, duration)
	}
}

// artistNames joins the display names of the given artists.
func artistNames(artists []catalog.Artist) string {
	return strings.Join(utils.Map(artists, func(artist catalog.Artist) string {
		return artist.Name
	}), ", ")
}
