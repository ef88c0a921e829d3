package library

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/aphonin/fonoteka/internal/logger"
)

// DefaultRenderInterval is the minimum pause between two progress renders.
const DefaultRenderInterval = time.Second

// maxRenderLength is the longest report, in characters, handed to a renderer.
const maxRenderLength = 1994

const (
	renderHeader       = "---- downloads ----\n"
	renderEmptyMessage = "\n(no active downloads... check back later!)"
)

// Renderer publishes rendered progress reports.
type Renderer interface {
	// Render publishes one report.
	Render(ctx context.Context, text string) error
}

// Refresher triggers a collection rescan on an external media server.
type Refresher interface {
	// StartScan asks the server to rescan its collection.
	StartScan(ctx context.Context) error
}

// LogRenderer writes progress reports to the application log.
type LogRenderer struct{}

// Render logs the report at info level.
func (LogRenderer) Render(ctx context.Context, text string) error {
	logger.Infof(ctx, "%s", text)

	return nil
}

// albumProgress is the aggregator's view of one album in flight.
type albumProgress struct {
	// order preserves discovery order for rendering.
	order  int
	artist string
	title  string
	year   int
	tracks map[int64]*trackProgress
}

type trackProgress struct {
	state ProgressState
	// lastKnownBytes is the most recent input byte count; it keeps
	// contributing to the album total after the track stops downloading.
	lastKnownBytes int64
	failed         bool
}

// Aggregator consumes download events and keeps a per-album progress board.
// It renders at most once per render interval no matter how fast events
// arrive, and requests a library rescan whenever the board drains.
type Aggregator struct {
	events         *Queue[Event]
	renderer       Renderer
	refresher      Refresher
	renderInterval time.Duration

	albums       map[int64]*albumProgress
	orderCounter int
}

// NewAggregator creates an aggregator reading from the given queue. A nil
// refresher disables rescans. A non-positive renderInterval falls back to
// DefaultRenderInterval.
func NewAggregator(
	events *Queue[Event],
	renderer Renderer,
	refresher Refresher,
	renderInterval time.Duration,
) *Aggregator {
	if renderInterval <= 0 {
		renderInterval = DefaultRenderInterval
	}

	return &Aggregator{
		events:         events,
		renderer:       renderer,
		refresher:      refresher,
		renderInterval: renderInterval,
		albums:         make(map[int64]*albumProgress),
	}
}

// Run processes events until the queue closes or the context is canceled.
// An event only marks the board dirty; the actual render happens no earlier
// than one interval after the previous one, so event bursts collapse into a
// single render. A dirty board left over when the queue closes is rendered
// one last time.
func (a *Aggregator) Run(ctx context.Context) {
	var (
		isDirty     bool
		renderTimer *time.Timer
		renderC     <-chan time.Time
	)

	lastRender := time.Now().Add(-a.renderInterval)

	defer func() {
		if renderTimer != nil {
			renderTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-a.events.Receive():
			if !ok {
				if isDirty {
					a.render(ctx)
				}

				return
			}

			if a.apply(ctx, event) {
				isDirty = true
			}

		case <-renderC:
			a.render(ctx)

			lastRender = time.Now()
			isDirty = false
			renderC = nil

		case <-ctx.Done():
			return
		}

		if isDirty && renderC == nil {
			delay := a.renderInterval - time.Since(lastRender)
			if delay < 0 {
				delay = 0
			}

			renderTimer = time.NewTimer(delay)
			renderC = renderTimer.C
		}
	}
}

// apply folds one event into the board and reports whether the board
// changed in a way worth rendering. Events referring to unknown albums or
// tracks are ignored: a task may still flush its last events after its
// album was torn down.
func (a *Aggregator) apply(ctx context.Context, event Event) bool {
	switch event := event.(type) {
	case AlbumDiscovered:
		tracks := make(map[int64]*trackProgress, len(event.Album.Tracks))
		for _, track := range event.Album.Tracks {
			tracks[track.ID] = &trackProgress{state: StateWaiting}
		}

		a.albums[event.AlbumID] = &albumProgress{
			order:  a.orderCounter,
			artist: event.Album.Artist.Name,
			title:  event.Album.Title,
			year:   event.Album.ReleaseDate.Year(),
			tracks: tracks,
		}
		a.orderCounter++

		// The board gains a row but nothing has happened yet.
		return false

	case TrackProgress:
		track := a.findTrack(event.AlbumID, event.TrackID)
		if track == nil {
			return false
		}

		if event.State == StateDownloading {
			track.lastKnownBytes = event.Bytes
		}

		track.state = event.State

		return true

	case TrackFailed:
		track := a.findTrack(event.AlbumID, event.TrackID)
		if track == nil {
			return false
		}

		track.failed = true

		return true

	case AlbumDone:
		if _, ok := a.albums[event.AlbumID]; !ok {
			return false
		}

		delete(a.albums, event.AlbumID)

		if len(a.albums) == 0 {
			a.refreshLibrary(ctx)
		}

		return true

	default:
		return false
	}
}

func (a *Aggregator) findTrack(albumID, trackID int64) *trackProgress {
	album, ok := a.albums[albumID]
	if !ok {
		return nil
	}

	return album.tracks[trackID]
}

func (a *Aggregator) render(ctx context.Context) {
	if err := a.renderer.Render(ctx, a.renderText()); err != nil {
		logger.Warnf(ctx, "Failed to render download progress: %v", err)
	}
}

// renderText builds the progress report: one block per album in discovery
// order, with a completion percentage and the running byte total.
func (a *Aggregator) renderText() string {
	var report strings.Builder

	report.WriteString(renderHeader)

	if len(a.albums) == 0 {
		report.WriteString(renderEmptyMessage)

		return report.String()
	}

	albums := make([]*albumProgress, 0, len(a.albums))
	for _, album := range a.albums {
		albums = append(albums, album)
	}

	slices.SortFunc(albums, func(left, right *albumProgress) int {
		return cmp.Compare(left.order, right.order)
	})

	for _, album := range albums {
		var (
			completed, failed int
			totalBytes        uint64
		)

		for _, track := range album.tracks {
			if track.state == StateFinished {
				completed++
			}

			if track.failed {
				failed++
			}

			totalBytes += uint64(track.lastKnownBytes) //nolint:gosec // Byte counts are never negative.
		}

		total := len(album.tracks)

		percent := 0
		if total > 0 {
			percent = completed * 100 / total
		}

		fmt.Fprintf(&report, "\n%s - %s [%d]\n", album.artist, album.title, album.year)
		fmt.Fprintf(&report, "progress: %d%% (%d / %d) (%s)", percent, completed, total, humanize.Bytes(totalBytes))

		if failed > 0 {
			fmt.Fprintf(&report, ", %d failed", failed)
		}

		report.WriteString("\n\n")
	}

	return truncateRunes(report.String(), maxRenderLength)
}

func (a *Aggregator) refreshLibrary(ctx context.Context) {
	if a.refresher == nil {
		logger.Debugf(ctx, "No library refresher is configured, skipping the rescan")

		return
	}

	if err := a.refresher.StartScan(ctx); err != nil {
		logger.Errorf(ctx, "Failed to start a library rescan: %v", err)

		return
	}

	logger.Infof(ctx, "Requested a library rescan")
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}

	return string([]rune(text)[:limit])
}
